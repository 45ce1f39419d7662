// Command tester drives a live relay with N concurrent websocket
// clients in one room, has each of them chat, and prints a delivery
// summary. Useful for eyeballing fan-out behavior under load.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"relay-lab/auth"
)

type clientReport struct {
	ID       string
	Sent     int
	Received int
	Err      error
}

type frame struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
	Text string `json:"text,omitempty"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "relay base URL")
	secret := flag.String("secret", "", "signing secret shared with the relay")
	room := flag.String("room", "load-test", "room every client joins")
	clients := flag.Int("clients", 3, "number of concurrent clients")
	messages := flag.Int("messages", 5, "chat messages sent per client")
	settle := flag.Duration("settle", 2*time.Second, "drain time after the last send")
	flag.Parse()

	if *secret == "" {
		color.Red.Println("missing -secret")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reports := make([]clientReport, *clients)
	var wg sync.WaitGroup
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("tester-%d", i)
			reports[i] = runClient(ctx, *baseURL, *secret, *room, id, *messages, *settle)
		}(i)
	}
	wg.Wait()

	render(reports, *clients, *messages)
}

func runClient(ctx context.Context, baseURL, secret, room, id string, messages int, settle time.Duration) clientReport {
	report := clientReport{ID: id}

	token, err := auth.GenerateToken(secret, id, id, "", time.Hour)
	if err != nil {
		report.Err = err
		return report
	}

	conn, _, err := websocket.Dial(ctx,
		fmt.Sprintf("%s/ws?token=%s&rooms=%s", baseURL, token, room), nil)
	if err != nil {
		report.Err = err
		return report
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	received := make(chan int, 1)
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	go func() {
		count := 0
		for {
			_, data, err := conn.Read(readCtx)
			if err != nil {
				received <- count
				return
			}
			var f frame
			if json.Unmarshal(data, &f) == nil && f.Type == "message:new" {
				count++
			}
		}
	}()

	for n := 0; n < messages; n++ {
		payload, _ := json.Marshal(frame{
			Type: "message",
			Room: room,
			Text: fmt.Sprintf("hello %d from %s", n, id),
		})
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			report.Err = err
			break
		}
		report.Sent++
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(settle)
	stopReading()
	report.Received = <-received
	return report
}

func render(reports []clientReport, clients, messages int) {
	expected := (clients - 1) * messages

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Client", "Sent", "Received", "Expected", "Status"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	failures := 0
	for _, r := range reports {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
			failures++
		} else if r.Received != expected {
			status = "delivery mismatch"
			failures++
		}
		table.Append([]string{
			r.ID,
			fmt.Sprintf("%d", r.Sent),
			fmt.Sprintf("%d", r.Received),
			fmt.Sprintf("%d", expected),
			status,
		})
	}
	table.Render()

	if failures == 0 {
		color.Green.Printf("All %d clients received the full fan-out\n", clients)
		return
	}
	color.Red.Printf("%d client(s) reported problems\n", failures)
	os.Exit(1)
}

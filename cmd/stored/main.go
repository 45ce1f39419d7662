package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"

	"relay-lab/runtime/workers"
	"relay-lab/storage"
)

type Config struct {
	Host           string        `envconfig:"STORE_HOST" default:"localhost"`
	Port           int           `envconfig:"STORE_PORT" default:"8081"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	BadgerFilepath string        `envconfig:"BADGER_FILEPATH" default:"./data/messages"`
	LimitMessages  int           `envconfig:"LIMIT_MESSAGES" default:"50"`
	GCInterval     time.Duration `envconfig:"GC_INTERVAL" default:"5m"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	store := storage.NewMessageStore(db, log, &config.LimitMessages)
	server := storage.NewServer(log, store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log)
	sup.Add(storage.NewGCWorker(db, log, config.GCInterval))
	go sup.Run(ctx)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Mux()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting message store", "address", address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("store server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

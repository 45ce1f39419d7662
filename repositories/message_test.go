package repositories

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"relay-lab/domain"
)

func testMessage() domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Room:      "lobby",
		SenderID:  "alice",
		Content:   "hello",
		Lang:      "en",
		CreatedAt: time.Now().UTC(),
	}
}

func TestHTTPMessageRepository_StoreMessage(t *testing.T) {
	req := require.New(t)

	var gotPath string
	var gotBody StoredMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	repository := NewHTTPMessageRepository(srv.URL, time.Second, logs.GetLoggerFromLevel(slog.LevelDebug))
	message := testMessage()

	req.NoError(repository.StoreMessage(context.Background(), message))
	req.Equal("/rooms/lobby/messages", gotPath)
	req.Equal(message.ID.String(), gotBody.ID)
	req.Equal("alice", gotBody.Author)
	req.Equal("hello", gotBody.Content)
}

func TestHTTPMessageRepository_Refused_Write_Is_An_Error(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	repository := NewHTTPMessageRepository(srv.URL, time.Second, logs.GetLoggerFromLevel(slog.LevelDebug))

	req.Error(repository.StoreMessage(context.Background(), testMessage()))
}

func TestHTTPMessageRepository_Unreachable_Store_Is_An_Error(t *testing.T) {
	req := require.New(t)
	repository := NewHTTPMessageRepository("http://127.0.0.1:1", 200*time.Millisecond,
		logs.GetLoggerFromLevel(slog.LevelDebug))

	req.Error(repository.StoreMessage(context.Background(), testMessage()))
}

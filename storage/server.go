package storage

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"relay-lab/repositories"
)

// Server exposes the message store over HTTP:
//
//	POST /rooms/{room}/messages  append one message
//	GET  /rooms/{room}/messages  newest-first page, ?cursor= to continue
//	GET  /                       liveness
type Server struct {
	log   *slog.Logger
	store MessageStore
}

func NewServer(log *slog.Logger, store MessageStore) *Server {
	return &Server{log: log, store: store}
}

func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rooms/{room}/messages", s.handleStore)
	mux.HandleFunc("GET /rooms/{room}/messages", s.handleGet)
	mux.HandleFunc("GET /", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("message store is up"))
	})
	return mux
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")

	var message repositories.StoredMessage
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		http.Error(w, "unparsable body", http.StatusBadRequest)
		return
	}
	if message.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	message.Room = room
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	if err := s.store.StoreMessage(message); err != nil {
		s.log.Error("Failed to store message", "room", room, "error", err)
		http.Error(w, "store failure", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type messagesResponse struct {
	Messages []repositories.StoredMessage `json:"messages"`
	Cursor   *string                      `json:"cursor,omitempty"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = lo.ToPtr(c)
	}

	messages, next, err := s.store.GetMessages(room, cursor)
	if err != nil {
		s.log.Error("Failed to read messages", "room", room, "error", err)
		http.Error(w, "store failure", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(messagesResponse{Messages: messages, Cursor: next})
}

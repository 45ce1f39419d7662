// Package httpapi exposes the relay's plain-HTTP surface: the trusted
// out-of-band ingress, the stats snapshot and the liveness check.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"relay-lab/contract"
	"relay-lab/domain"
	"relay-lab/domain/event"
	"relay-lab/errors"
)

type emitRequest struct {
	Room  string          `json:"room" validate:"required"`
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data"`
}

// EmitHandler lets a trusted backend push a room event without holding
// a socket. Unlike the socket path, validation failures here are
// reported to the caller: this is the one ingress with an explicit
// success/failure contract.
type EmitHandler struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	validate   *validator.Validate
}

func NewEmitHandler(log *slog.Logger, dispatcher contract.IDispatcher) *EmitHandler {
	return &EmitHandler{log: log, dispatcher: dispatcher, validate: validator.New()}
}

func (h *EmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req emitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "unparsable body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if req.Room == "" {
			http.Error(w, errors.ErrRoomRequired.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, errors.ErrEventRequired.Error(), http.StatusBadRequest)
		return
	}

	// A room with no members is a valid target: the broadcast is a
	// no-op and the caller still gets a success.
	h.dispatcher.Broadcast(domain.RoomName(req.Room),
		event.NewSystemEvent(domain.RoomName(req.Room), req.Event, req.Data), nil)

	h.log.Debug("Out-of-band event emitted", "room", req.Room, "event", req.Event)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

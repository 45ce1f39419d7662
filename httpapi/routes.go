package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"relay-lab/contract"
	"relay-lab/observability"
)

// NewMux wires the relay's HTTP surface. The websocket acceptor is
// passed in as a plain handler so this package stays transport-agnostic.
func NewMux(log *slog.Logger, acceptor http.Handler,
	dispatcher contract.IDispatcher, registry contract.IRegistry,
	monitoring *observability.Monitoring) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", acceptor)
	mux.Handle("POST /emit", NewEmitHandler(log, dispatcher))
	mux.HandleFunc("GET /stats", statsHandler(registry, monitoring))
	mux.HandleFunc("GET /", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("relay is up"))
	})
	return mux
}

type statsResponse struct {
	observability.RelayStats
	Rooms int `json:"rooms"`
}

func statsHandler(registry contract.IRegistry, monitoring *observability.Monitoring) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statsResponse{
			RelayStats: monitoring.Snapshot(),
			Rooms:      registry.RoomCount(),
		})
	}
}

package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"relay-lab/auth"
	"relay-lab/contract"
	"relay-lab/domain"
	"relay-lab/domain/event"
	relayerrors "relay-lab/errors"
	"relay-lab/observability"
)

// Private-range close codes, one per rejection cause, so a client can
// tell a missing token from a bad one from a broken server.
const (
	CloseMissingCredential   websocket.StatusCode = 4001
	CloseInvalidCredential   websocket.StatusCode = 4002
	CloseServerMisconfigured websocket.StatusCode = 4500
)

// Acceptor upgrades transport connections, authenticates them, and
// runs one read loop and one write loop per resulting session.
type Acceptor struct {
	log        *slog.Logger
	auth       *auth.Authenticator
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	router     *Router
	monitoring *observability.Monitoring
	sendBuffer int
}

func NewAcceptor(log *slog.Logger, authenticator *auth.Authenticator,
	registry contract.IRegistry, dispatcher contract.IDispatcher,
	router *Router, monitoring *observability.Monitoring, sendBuffer int) *Acceptor {
	return &Acceptor{
		log:        log,
		auth:       authenticator,
		registry:   registry,
		dispatcher: dispatcher,
		router:     router,
		monitoring: monitoring,
		sendBuffer: sendBuffer,
	}
}

func (a *Acceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		a.log.Error("Failed to accept websocket connection", "error", err)
		return
	}

	identity, err := a.auth.Verify(r.URL.Query().Get("token"))
	if err != nil {
		a.monitoring.IncrRejectedConns()
		a.log.Warn("Rejecting connection", "error", err)
		// A close frame's reason is capped at 123 bytes; an over-limit
		// reason would make Close fail and drop the status code entirely.
		reason := err.Error()
		if len(reason) > 123 {
			reason = reason[:123]
		}
		_ = conn.Close(closeCodeFor(err), reason)
		return
	}

	rooms := initialRooms(r)
	session := NewSession(identity, conn, a.sendBuffer)
	a.monitoring.IncrSessionsOpened()
	a.log.Info("Session opened",
		"session_id", session.ID(),
		"user_id", identity.ID,
		"rooms", rooms)

	for _, room := range rooms {
		a.registry.Join(room, session)
	}

	if err := session.Deliver(event.NewConnected(identity, rooms)); err != nil {
		a.log.Error("Failed to queue connected frame", "session_id", session.ID(), "error", err)
	}

	go a.writeLoop(ctx, session)
	a.readLoop(ctx, session)
	a.teardown(session)
}

func (a *Acceptor) readLoop(ctx context.Context, s *Session) {
	for {
		msgType, data, err := s.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				a.log.Debug("Read loop ended", "session_id", s.ID(), "error", err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		// Inbound frames are processed inline, one at a time, so a
		// single connection can never observe its own frames reordered.
		a.router.Route(ctx, s, data)
	}
}

func (a *Acceptor) writeLoop(ctx context.Context, s *Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case e := <-s.send:
			data, err := json.Marshal(e)
			if err != nil {
				a.log.Error("Failed to marshal outbound frame", "error", err)
				continue
			}
			if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
				a.log.Debug("Write failed, closing session", "session_id", s.ID(), "error", err)
				s.close()
				return
			}
		}
	}
}

// teardown runs exactly once per session, on every close path. The
// membership removal is atomic; the departure notifications that
// follow target the rooms the session was a member of, with the
// session itself excluded (its socket is already gone).
func (a *Acceptor) teardown(s *Session) {
	s.close()
	_ = s.conn.Close(websocket.StatusNormalClosure, "")

	rooms := a.registry.LeaveAll(s)
	for _, room := range rooms {
		a.dispatcher.Broadcast(room, event.NewPresence(room, s.Identity(), event.PresenceLeave), s)
	}

	a.monitoring.IncrSessionsClosed()
	a.log.Info("Session closed", "session_id", s.ID(), "user_id", s.Identity().ID)
}

func closeCodeFor(err error) websocket.StatusCode {
	switch {
	case stderrors.Is(err, relayerrors.ErrMissingCredential):
		return CloseMissingCredential
	case stderrors.Is(err, relayerrors.ErrNoSecret):
		return CloseServerMisconfigured
	default:
		return CloseInvalidCredential
	}
}

// initialRooms resolves the comma-separated room list supplied at
// connect time; "rooms" wins over the legacy "room" parameter.
func initialRooms(r *http.Request) []domain.RoomName {
	q := r.URL.Query()
	raw := q.Get("rooms")
	if raw == "" {
		raw = q.Get("room")
	}
	return domain.ParseRoomList(raw)
}

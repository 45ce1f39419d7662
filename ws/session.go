// Package ws carries the websocket side of the relay: session state,
// connection acceptance and the inbound protocol state machine.
package ws

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"relay-lab/domain"
	"relay-lab/domain/event"
	"relay-lab/errors"
)

// Session is the server-side state for one live connection: the
// identity resolved at connect time, the socket, and the outbound
// queue drained by the write loop. Exactly one Session exists per
// connection; room membership is tracked by the registry.
type Session struct {
	id       string
	identity domain.Identity
	conn     *websocket.Conn
	send     chan event.Outbound
	done     chan struct{}
	once     sync.Once
}

func NewSession(identity domain.Identity, conn *websocket.Conn, bufferSize int) *Session {
	return &Session{
		id:       uuid.NewString(),
		identity: identity,
		conn:     conn,
		send:     make(chan event.Outbound, bufferSize),
		done:     make(chan struct{}),
	}
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Identity() domain.Identity { return s.identity }

// Deliver queues a frame for the write loop. It never blocks: a closed
// session reports ErrSessionClosed, a full buffer ErrSendBufferFull,
// and the frame is lost for this recipient either way.
func (s *Session) Deliver(e event.Outbound) error {
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	default:
	}
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	case s.send <- e:
		return nil
	default:
		return errors.ErrSendBufferFull
	}
}

// close marks the session dead. The send channel is never closed, only
// done is; a concurrent Deliver must not be able to hit a closed channel.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

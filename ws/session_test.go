package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"relay-lab/domain"
	"relay-lab/domain/event"
	"relay-lab/errors"
)

func TestSession_Deliver_Queues_Until_Buffer_Full(t *testing.T) {
	req := require.New(t)
	session := NewSession(domain.Identity{ID: "alice"}, nil, 2)

	req.NoError(session.Deliver(event.NewJoined("lobby")))
	req.NoError(session.Deliver(event.NewJoined("dev")))

	// Third frame finds a full buffer: it is lost, never blocks.
	req.ErrorIs(session.Deliver(event.NewJoined("ops")), errors.ErrSendBufferFull)
}

func TestSession_Deliver_After_Close_Fails(t *testing.T) {
	req := require.New(t)
	session := NewSession(domain.Identity{ID: "alice"}, nil, 2)

	session.close()

	req.ErrorIs(session.Deliver(event.NewJoined("lobby")), errors.ErrSessionClosed)

	// Closing twice is safe
	session.close()
}

func TestSession_Identity_Is_Immutable_Per_Session(t *testing.T) {
	req := require.New(t)
	identity := domain.Identity{ID: "alice", Name: "Alice", Email: "alice@example.com"}
	session := NewSession(identity, nil, 2)

	req.Equal(identity, session.Identity())
	req.NotEmpty(session.ID())

	other := NewSession(identity, nil, 2)
	req.NotEqual(session.ID(), other.ID(), "two sockets for one user are distinct sessions")
}

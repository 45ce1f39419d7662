package ws

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"relay-lab/domain"
	"relay-lab/domain/event"
	"relay-lab/errors"
	"relay-lab/mocks"
	"relay-lab/moderation"
	"relay-lab/observability"
	"relay-lab/runtime"
)

type fakeMember struct {
	id     string
	frames []event.Outbound
}

func (m *fakeMember) ID() string                { return m.id }
func (m *fakeMember) Identity() domain.Identity { return domain.Identity{ID: m.id, Name: m.id} }
func (m *fakeMember) Deliver(e event.Outbound) error {
	m.frames = append(m.frames, e)
	return nil
}

type routerFixture struct {
	router     *Router
	registry   *runtime.Registry
	repository *mocks.MockIMessageRepository
	monitoring *observability.Monitoring
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	require.NoError(t, err)

	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoring()
	dispatcher := runtime.NewDispatcher(log, registry, monitoring)
	repository := mocks.NewMockIMessageRepository(ctrl)

	return routerFixture{
		router:     NewRouter(log, registry, dispatcher, repository, &moderator, monitoring),
		registry:   registry,
		repository: repository,
		monitoring: monitoring,
	}
}

func newTestSession(userID string) *Session {
	return NewSession(domain.Identity{ID: userID, Name: userID}, nil, 16)
}

// unicasts drains everything currently queued on the session's own socket.
func unicasts(s *Session) []event.Outbound {
	var out []event.Outbound
	for {
		select {
		case e := <-s.send:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestRouter_Join_Registers_And_Acknowledges(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	session := newTestSession("alice")

	f.router.Route(context.Background(), session, []byte(`{"type":"join","room":"lobby"}`))

	req.Len(f.registry.MembersOf("lobby"), 1)

	frames := unicasts(session)
	req.Len(frames, 1)
	req.Equal(event.TypeJoined, frames[0].Type)
	req.Equal(domain.RoomName("lobby"), frames[0].Room)
}

func TestRouter_Leave_Unregisters_And_Acknowledges(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	session := newTestSession("alice")
	f.registry.Join("lobby", session)

	f.router.Route(context.Background(), session, []byte(`{"type":"leave","room":"lobby"}`))

	req.Zero(f.registry.RoomCount())

	frames := unicasts(session)
	req.Len(frames, 1)
	req.Equal(event.TypeLeft, frames[0].Type)
}

// Malformed and incomplete frames are dropped without a reply and
// without touching any state; the session lives on.
func TestRouter_Drops_Bad_Frames_Silently(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	session := newTestSession("alice")

	badFrames := [][]byte{
		[]byte(`this is not json`),
		[]byte(`{"type":"teleport","room":"lobby"}`),
		[]byte(`{"type":"join"}`),
		[]byte(`{"type":"leave"}`),
		[]byte(`{"type":"message","room":"lobby","text":"   "}`),
		[]byte(`{"type":"message","text":"no room"}`),
		[]byte(`{"type":"typing"}`),
		[]byte(`{"type":"event","room":"lobby"}`),
		[]byte(`{}`),
	}
	for _, frame := range badFrames {
		f.router.Route(context.Background(), session, frame)
	}

	req.Empty(unicasts(session))
	req.Zero(f.registry.RoomCount())
	req.EqualValues(len(badFrames), f.monitoring.Snapshot().DroppedFrames)

	// And the session still works afterwards
	f.router.Route(context.Background(), session, []byte(`{"type":"join","room":"lobby"}`))
	req.Len(unicasts(session), 1)
}

func TestRouter_Message_Is_Censored_Persisted_And_Broadcast(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	sender := newTestSession("alice")
	other := &fakeMember{id: "bob"}
	f.registry.Join("lobby", sender)
	f.registry.Join("lobby", other)

	var stored domain.Message
	f.repository.EXPECT().
		StoreMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, message domain.Message) error {
			stored = message
			return nil
		})

	f.router.Route(context.Background(), sender,
		[]byte(`{"type":"message","room":"lobby","text":"what a badger move"}`))

	// Persisted with the blacklist applied before the write
	req.Equal("what a ****** move", stored.Content)
	req.Equal(domain.RoomName("lobby"), stored.Room)
	req.Equal("alice", stored.SenderID)
	req.NotEmpty(stored.Lang)

	// Broadcast to the other member only, never echoed to the sender
	req.Empty(unicasts(sender))
	req.Len(other.frames, 1)
	req.Equal(event.TypeMessage, other.frames[0].Type)
	req.Equal("what a ****** move", other.frames[0].Text)
	req.Equal("alice", other.frames[0].User.ID)
}

func TestRouter_Message_Accepts_Content_Field(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	sender := newTestSession("alice")
	other := &fakeMember{id: "bob"}
	f.registry.Join("lobby", sender)
	f.registry.Join("lobby", other)

	f.repository.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).Return(nil)

	f.router.Route(context.Background(), sender,
		[]byte(`{"type":"message:new","room":"lobby","content":"hello there"}`))

	req.Len(other.frames, 1)
	req.Equal("hello there", other.frames[0].Text)
}

// A store failure is an external problem: log, skip the fan-out for
// that message, keep the session.
func TestRouter_Message_Store_Failure_Suppresses_Broadcast(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	sender := newTestSession("alice")
	other := &fakeMember{id: "bob"}
	f.registry.Join("lobby", sender)
	f.registry.Join("lobby", other)

	f.repository.EXPECT().
		StoreMessage(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("store unreachable: %w", errors.ErrSessionClosed))

	f.router.Route(context.Background(), sender,
		[]byte(`{"type":"message","room":"lobby","text":"hello"}`))

	req.Empty(other.frames)
	req.Empty(unicasts(sender))

	// The session keeps working after the failure
	f.repository.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).Return(nil)
	f.router.Route(context.Background(), sender,
		[]byte(`{"type":"message","room":"lobby","text":"retry"}`))
	req.Len(other.frames, 1)
}

func TestRouter_Typing_Reaches_Other_Members_Only(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	alice := newTestSession("alice")
	bob := &fakeMember{id: "bob"}
	f.registry.Join("lobby", alice)
	f.registry.Join("lobby", bob)

	f.router.Route(context.Background(), alice, []byte(`{"type":"typing","room":"lobby"}`))

	req.Empty(unicasts(alice))
	req.Len(bob.frames, 1)
	req.Equal(event.TypeTyping, bob.frames[0].Type)
	req.Equal(domain.RoomName("lobby"), bob.frames[0].Room)
	req.Equal("alice", bob.frames[0].User.ID)
	req.NotZero(bob.frames[0].Timestamp)
}

func TestRouter_Custom_Event_Carries_Payload_And_Sender(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	alice := newTestSession("alice")
	bob := &fakeMember{id: "bob"}
	f.registry.Join("lobby", alice)
	f.registry.Join("lobby", bob)

	f.router.Route(context.Background(), alice,
		[]byte(`{"type":"event","room":"lobby","payload":{"event":"cursor","data":{"x":3}}}`))

	req.Len(bob.frames, 1)
	req.Equal(event.TypeEvent, bob.frames[0].Type)
	req.Equal("cursor", bob.frames[0].Event)
	req.JSONEq(`{"x":3}`, string(bob.frames[0].Data))
	req.Equal("alice", bob.frames[0].User.ID)
	req.Nil(bob.frames[0].From)
}

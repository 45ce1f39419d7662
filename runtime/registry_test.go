package runtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"relay-lab/domain"
	"relay-lab/domain/event"
)

type fakeMember struct {
	id     string
	frames []event.Outbound
	fail   error
}

func newFakeMember() *fakeMember {
	return &fakeMember{id: uuid.NewString()}
}

func (m *fakeMember) ID() string { return m.id }

func (m *fakeMember) Identity() domain.Identity {
	return domain.Identity{ID: m.id, Name: m.id}
}

func (m *fakeMember) Deliver(e event.Outbound) error {
	if m.fail != nil {
		return m.fail
	}
	m.frames = append(m.frames, e)
	return nil
}

func TestRegistry_Join_One_Room_One_Member(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	member := newFakeMember()

	// Given no member is connected
	// And no room exists
	req.Zero(registry.RoomCount())

	// When a member joins a room
	registry.Join("lobby", member)

	// Then
	req.Equal(1, registry.RoomCount())
	req.Len(registry.MembersOf("lobby"), 1)
	req.Equal([]domain.RoomName{"lobby"}, registry.RoomsOf(member))
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	member := newFakeMember()

	// When a member joins the same room twice
	registry.Join("lobby", member)
	registry.Join("lobby", member)

	// Then it is a member exactly once
	req.Len(registry.MembersOf("lobby"), 1)
	req.Len(registry.RoomsOf(member), 1)
}

func TestRegistry_Join_Empty_Room_Is_Ignored(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	member := newFakeMember()

	registry.Join("", member)

	req.Zero(registry.RoomCount())
	req.Empty(registry.RoomsOf(member))
}

func TestRegistry_Same_User_Multiple_Sockets_Are_Distinct_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	// Two sessions for the same user id still carry distinct session ids
	socket1 := newFakeMember()
	socket2 := newFakeMember()

	registry.Join("lobby", socket1)
	registry.Join("lobby", socket2)

	req.Len(registry.MembersOf("lobby"), 2)
}

func TestRegistry_Leave_Prunes_Empty_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	member := newFakeMember()

	// Given a member in a room
	registry.Join("lobby", member)

	// When the member leaves
	registry.Leave("lobby", member)

	// Then the room doesn't exist anymore
	req.Zero(registry.RoomCount())
	req.Nil(registry.MembersOf("lobby"))
	req.Empty(registry.RoomsOf(member))

	// And leaving again is a no-op
	registry.Leave("lobby", member)
	req.Zero(registry.RoomCount())
}

func TestRegistry_Leave_Keeps_Remaining_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	member1 := newFakeMember()
	member2 := newFakeMember()

	registry.Join("lobby", member1)
	registry.Join("lobby", member2)

	registry.Leave("lobby", member1)

	req.Len(registry.MembersOf("lobby"), 1)
	req.Equal(member2.ID(), registry.MembersOf("lobby")[0].ID())
}

func TestRegistry_LeaveAll_Removes_Member_Everywhere(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	leaving := newFakeMember()
	staying := newFakeMember()

	// Given a member in three rooms, one of them shared
	registry.Join("lobby", leaving)
	registry.Join("dev", leaving)
	registry.Join("ops", leaving)
	registry.Join("dev", staying)

	// When the member is torn down
	rooms := registry.LeaveAll(leaving)

	// Then every room it was in is reported exactly once
	req.ElementsMatch([]domain.RoomName{"lobby", "dev", "ops"}, rooms)

	// And no lookup finds it anymore
	req.Nil(registry.MembersOf("lobby"))
	req.Nil(registry.MembersOf("ops"))
	req.Empty(registry.RoomsOf(leaving))

	// And the shared room keeps its other member
	req.Len(registry.MembersOf("dev"), 1)
	req.Equal(1, registry.RoomCount())

	// And a second teardown reports nothing
	req.Nil(registry.LeaveAll(leaving))
}

func TestRegistry_Member_That_Never_Joins_Leaves_No_Trace(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	member := newFakeMember()

	req.Nil(registry.LeaveAll(member))
	req.Zero(registry.RoomCount())
}

// Membership bookkeeping and snapshots must survive heavy interleaving
// from many goroutines without losing bidirectional consistency.
func TestRegistry_Concurrent_Join_Leave(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	var wg sync.WaitGroup
	members := make([]*fakeMember, 50)
	for i := range members {
		members[i] = newFakeMember()
		wg.Add(1)
		go func(m *fakeMember) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				registry.Join("lobby", m)
				registry.MembersOf("lobby")
				registry.Leave("lobby", m)
			}
			registry.Join("lobby", m)
		}(members[i])
	}
	wg.Wait()

	req.Len(registry.MembersOf("lobby"), len(members))
	for _, m := range members {
		req.Equal([]domain.RoomName{"lobby"}, registry.RoomsOf(m))
	}
}

// Package runtime owns the shared relay state: room membership and
// fan-out dispatch. It contains no protocol or transport logic.
package runtime

import (
	"sync"

	"relay-lab/contract"
	"relay-lab/domain"
)

type memberSet map[string]contract.Member

// Registry maps room names to the set of live members, plus the
// reverse index needed to tear a member down from every room at once.
// Both sides are mutated under one mutex, so they can never disagree.
type Registry struct {
	mu          sync.RWMutex
	roomMembers map[domain.RoomName]memberSet
	memberRooms map[string]map[domain.RoomName]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		roomMembers: make(map[domain.RoomName]memberSet),
		memberRooms: make(map[string]map[domain.RoomName]struct{}),
	}
}

// Join adds a member to a room, creating the room on the fly.
// Joining an already-joined room is a no-op. Membership is keyed by
// member ID, so the same user on several sockets counts once per socket.
func (r *Registry) Join(room domain.RoomName, m contract.Member) {
	if room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roomMembers[room]; !ok {
		r.roomMembers[room] = make(memberSet)
	}
	r.roomMembers[room][m.ID()] = m

	if _, ok := r.memberRooms[m.ID()]; !ok {
		r.memberRooms[m.ID()] = make(map[domain.RoomName]struct{})
	}
	r.memberRooms[m.ID()][room] = struct{}{}
}

// Leave removes a member from a room. The room entry is deleted as soon
// as its member set becomes empty, so an empty room never lingers.
func (r *Registry) Leave(room domain.RoomName, m contract.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, m.ID())
}

// LeaveAll removes a member from every room it belongs to and returns
// the rooms it was a member of. Called exactly once at teardown; after
// it returns, no lookup can find the member anymore.
func (r *Registry) LeaveAll(m contract.Member) []domain.RoomName {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined, ok := r.memberRooms[m.ID()]
	if !ok {
		return nil
	}
	rooms := make([]domain.RoomName, 0, len(joined))
	for room := range joined {
		rooms = append(rooms, room)
		r.leaveLocked(room, m.ID())
	}
	return rooms
}

func (r *Registry) leaveLocked(room domain.RoomName, memberID string) {
	if members, ok := r.roomMembers[room]; ok {
		delete(members, memberID)
		if len(members) == 0 {
			delete(r.roomMembers, room)
		}
	}
	if rooms, ok := r.memberRooms[memberID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.memberRooms, memberID)
		}
	}
}

// MembersOf returns a point-in-time snapshot of a room's members.
// Broadcasts iterate the snapshot, so concurrent join/leave during a
// fan-out can neither crash it nor cause a double delivery.
func (r *Registry) MembersOf(room domain.RoomName) []contract.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	snapshot := make([]contract.Member, 0, len(members))
	for _, m := range members {
		snapshot = append(snapshot, m)
	}
	return snapshot
}

// RoomsOf returns a snapshot of the rooms a member currently belongs to.
func (r *Registry) RoomsOf(m contract.Member) []domain.RoomName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined, ok := r.memberRooms[m.ID()]
	if !ok {
		return nil
	}
	rooms := make([]domain.RoomName, 0, len(joined))
	for room := range joined {
		rooms = append(rooms, room)
	}
	return rooms
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers)
}

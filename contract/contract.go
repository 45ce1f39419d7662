package contract

import (
	"context"
	"reflect"

	"relay-lab/domain"
	"relay-lab/domain/event"
)

// Member is one live connection as seen by the registry and the
// dispatcher. Deliver must never block: a member that cannot accept a
// frame promptly reports an error and the frame is lost for it.
type Member interface {
	ID() string
	Identity() domain.Identity
	Deliver(e event.Outbound) error
}

type IRegistry interface {
	Join(room domain.RoomName, m Member)
	Leave(room domain.RoomName, m Member)
	LeaveAll(m Member) []domain.RoomName
	MembersOf(room domain.RoomName) []Member
	RoomsOf(m Member) []domain.RoomName
	RoomCount() int
}

type IDispatcher interface {
	Broadcast(room domain.RoomName, e event.Outbound, exclude Member)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

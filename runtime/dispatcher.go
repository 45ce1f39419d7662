package runtime

import (
	"log/slog"

	"relay-lab/contract"
	"relay-lab/domain"
	"relay-lab/domain/event"
	"relay-lab/observability"
)

// Dispatcher fans one event out to the current members of a room.
//
// It provides best-effort delivery with no guarantees regarding
// ordering, durability, or retries. A member whose socket is closed or
// whose buffer is full is skipped; one bad recipient never blocks the
// others. Dispatcher is safe for concurrent use by multiple goroutines.
type Dispatcher struct {
	log        *slog.Logger
	registry   contract.IRegistry
	monitoring *observability.Monitoring
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry, monitoring *observability.Monitoring) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, monitoring: monitoring}
}

// Broadcast delivers e to every member of room except exclude.
// Broadcasting to a room with no other members is a no-op, not an error.
func (d *Dispatcher) Broadcast(room domain.RoomName, e event.Outbound, exclude contract.Member) {
	d.monitoring.IncrBroadcasts()

	for _, member := range d.registry.MembersOf(room) {
		if exclude != nil && member.ID() == exclude.ID() {
			continue
		}
		if err := member.Deliver(e); err != nil {
			d.monitoring.IncrDroppedSends()
			d.log.Debug("Skipping unreachable member",
				"member_id", member.ID(),
				"room", room,
				"type", e.Type,
				"error", err)
			continue
		}
		d.monitoring.IncrDeliveries()
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event bound to a room.
type Message struct {
	ID        uuid.UUID
	Room      RoomName
	SenderID  string
	Content   string
	Lang      string
	CreatedAt time.Time
}

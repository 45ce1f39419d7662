// Package event defines the server-to-client notification frames.
// Every broadcast frame carries the target room, a millisecond
// timestamp and its provenance: either the sending user's identity or
// a system origin for out-of-band pushes.
package event

import (
	"encoding/json"
	"time"

	"relay-lab/domain"
)

const (
	TypeConnected = "connected"
	TypeJoined    = "joined"
	TypeLeft      = "left"
	TypeMessage   = "message:new"
	TypePresence  = "presence"
	TypeTyping    = "typing"
	TypeEvent     = "event"
)

// Presence kinds carried in the Event field of a presence frame.
const (
	PresenceJoin  = "join"
	PresenceLeave = "leave"
)

// Origin marks a frame pushed by a trusted backend instead of a socket.
type Origin struct {
	System bool `json:"system"`
}

// Outbound is the wire frame sent to clients. Fields are a union over
// all frame types; unused fields are omitted from the JSON encoding.
type Outbound struct {
	Type      string           `json:"type"`
	Room      domain.RoomName  `json:"room,omitempty"`
	Timestamp int64            `json:"timestamp,omitempty"`
	User      *domain.Identity `json:"user,omitempty"`
	From      *Origin          `json:"from,omitempty"`

	// connected
	Identity *domain.Identity  `json:"identity,omitempty"`
	Rooms    []domain.RoomName `json:"rooms,omitempty"`

	// message:new
	MessageID string `json:"messageId,omitempty"`
	Text      string `json:"text,omitempty"`
	Lang      string `json:"lang,omitempty"`

	// presence (join|leave) and generic events
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func now() int64 {
	return time.Now().UnixMilli()
}

// NewConnected is the single acknowledgement sent after a successful
// connect, echoing the resolved identity and initial room list.
func NewConnected(identity domain.Identity, rooms []domain.RoomName) Outbound {
	return Outbound{
		Type:      TypeConnected,
		Timestamp: now(),
		Identity:  &identity,
		Rooms:     rooms,
	}
}

func NewJoined(room domain.RoomName) Outbound {
	return Outbound{Type: TypeJoined, Room: room, Timestamp: now()}
}

func NewLeft(room domain.RoomName) Outbound {
	return Outbound{Type: TypeLeft, Room: room, Timestamp: now()}
}

func NewMessage(msg domain.Message, sender domain.Identity) Outbound {
	return Outbound{
		Type:      TypeMessage,
		Room:      msg.Room,
		Timestamp: msg.CreatedAt.UnixMilli(),
		User:      &sender,
		MessageID: msg.ID.String(),
		Text:      msg.Content,
		Lang:      msg.Lang,
	}
}

func NewPresence(room domain.RoomName, user domain.Identity, kind string) Outbound {
	return Outbound{
		Type:      TypePresence,
		Room:      room,
		Timestamp: now(),
		User:      &user,
		Event:     kind,
	}
}

func NewTyping(room domain.RoomName, user domain.Identity) Outbound {
	return Outbound{Type: TypeTyping, Room: room, Timestamp: now(), User: &user}
}

// NewUserEvent is a socket-originated custom event, attributed to its sender.
func NewUserEvent(room domain.RoomName, name string, data json.RawMessage, sender domain.Identity) Outbound {
	return Outbound{
		Type:      TypeEvent,
		Room:      room,
		Timestamp: now(),
		User:      &sender,
		Event:     name,
		Data:      data,
	}
}

// NewSystemEvent is an out-of-band push; provenance is the system itself.
func NewSystemEvent(room domain.RoomName, name string, data json.RawMessage) Outbound {
	return Outbound{
		Type:      TypeEvent,
		Room:      room,
		Timestamp: now(),
		From:      &Origin{System: true},
		Event:     name,
		Data:      data,
	}
}

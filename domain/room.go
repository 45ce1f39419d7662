package domain

import (
	"strings"

	"github.com/samber/lo"
)

// RoomName identifies a broadcast scope. Names are case-sensitive and
// never empty; an empty name is simply not a room.
type RoomName string

// DefaultRoom is joined when a client connects without naming any room.
const DefaultRoom RoomName = "general"

// ParseRoomList splits a comma-separated room list supplied at connect
// time. Entries are trimmed and empty entries dropped. When nothing
// usable remains, the caller gets the default room.
func ParseRoomList(raw string) []RoomName {
	rooms := lo.FilterMap(strings.Split(raw, ","), func(item string, _ int) (RoomName, bool) {
		item = strings.TrimSpace(item)
		return RoomName(item), item != ""
	})
	if len(rooms) == 0 {
		return []RoomName{DefaultRoom}
	}
	return rooms
}

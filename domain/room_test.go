package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoomList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []RoomName
	}{
		{"Single room", "lobby", []RoomName{"lobby"}},
		{"Multiple rooms", "lobby,dev,ops", []RoomName{"lobby", "dev", "ops"}},
		{"Entries are trimmed", " lobby , dev ", []RoomName{"lobby", "dev"}},
		{"Empty entries dropped", "lobby,,dev,", []RoomName{"lobby", "dev"}},
		{"Case is preserved", "Lobby", []RoomName{"Lobby"}},
		{"Empty input falls back to default", "", []RoomName{DefaultRoom}},
		{"Only separators falls back to default", " , ,", []RoomName{DefaultRoom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseRoomList(tt.raw))
		})
	}
}

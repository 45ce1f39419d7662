// Package storage implements the room-scoped message store: a small
// HTTP service backed by BadgerDB that the relay writes chat messages
// to before fan-out.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"relay-lab/repositories"
)

type MessageStore struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageStore(db *badger.DB, log *slog.Logger, limitMessages *int) MessageStore {
	return MessageStore{db: db, log: log, limitMessages: limitMessages}
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{room}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector
//     if two messages arrive at the same nanosecond.
func (m MessageStore) StoreMessage(message repositories.StoredMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Room,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages retrieves messages for a room using a prefix scan,
// newest first. Thanks to the padded timestamp in the key the reverse
// iterator walks them in time order; collection stops at the configured
// page limit, and the last key seen becomes the next page's cursor.
func (m MessageStore) GetMessages(room string, cursor *string) ([]repositories.StoredMessage, *string, error) {
	var raw [][]byte
	var lastKey string

	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", room)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key for this room, then
			// walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(raw) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				cp := make([]byte, len(value))
				copy(cp, value)
				raw = append(raw, cp)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]repositories.StoredMessage, 0, len(raw))
	for _, b := range raw {
		var message repositories.StoredMessage
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}

	if len(messages) == 0 {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// GCWorker periodically runs Badger's value-log garbage collection.
// ErrNoRewrite just means there was nothing worth rewriting.
type GCWorker struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *GCWorker {
	return &GCWorker{db: db, log: log, interval: interval}
}

func (w *GCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := w.db.RunValueLogGC(0.5)
			switch err {
			case nil:
				w.log.Debug("Value log GC reclaimed space")
			case badger.ErrNoRewrite:
			default:
				w.log.Warn("Value log GC failed", "error", err)
			}
		}
	}
}

// Package kv implements store.Store on top of an embedded Badger database.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

// maxConflictRetries bounds how often a write transaction is replayed after
// Badger reports a conflicting concurrent write.
const maxConflictRetries = 10

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	flags     *collection[domain.Flag]
	entities  *collection[domain.Entity]
	flaggings *collection[domain.Flagging]
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Flaggings must survive a crash right after the redirect
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, logger)
}

// OpenInMemory opens a Badger database that never touches disk.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &Store{
		db:        db,
		logger:    logger,
		flags:     flagCollection(),
		entities:  entityCollection(),
		flaggings: flaggingCollection(),
	}

	if logger != nil {
		logger.Info("Badger database opened", "path", opts.Dir, "in_memory", opts.InMemory)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

// view runs fn in a read-only transaction.
func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// update runs fn in a read-write transaction, replaying it when a concurrent
// writer touched the same keys.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		if s.logger != nil {
			s.logger.Debug("retrying conflicting transaction", "attempt", attempt+1)
		}
	}
}

package kv

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

func flagCollection() *collection[domain.Flag] {
	return newCollection("flag:", func(f *domain.Flag) string { return f.ID })
}

// CreateFlag inserts a new flag.
// Returns store.ErrAlreadyExists on duplicate machine name.
func (s *Store) CreateFlag(ctx context.Context, f *domain.Flag) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return s.flags.insert(txn, f)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("flag %q already exists", f.ID))
	}
	return err
}

// UpdateFlag overwrites an existing flag.
// Returns store.ErrNotFound if the flag does not exist.
func (s *Store) UpdateFlag(ctx context.Context, f *domain.Flag) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		old, err := s.flags.load(txn, f.ID)
		if err != nil {
			return err
		}
		updated := *f
		updated.CreatedAt = old.CreatedAt
		return s.flags.replace(txn, &updated)
	})
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound.WithMessage(fmt.Sprintf("flag %q not found", f.ID))
	}
	return err
}

// GetFlag retrieves a flag by machine name.
// Returns store.ErrNotFound if the flag does not exist.
func (s *Store) GetFlag(ctx context.Context, flagID string) (*domain.Flag, error) {
	var f *domain.Flag
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		f, err = s.flags.load(txn, flagID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("flag %q not found", flagID))
	}
	return f, err
}

// ListFlags returns all flags ordered by weight, then machine name.
func (s *Store) ListFlags(ctx context.Context) ([]*domain.Flag, error) {
	var flags []*domain.Flag
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		flags, err = s.flags.all(txn, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(flags, func(a, b *domain.Flag) int {
		return cmp.Or(cmp.Compare(a.Weight, b.Weight), cmp.Compare(a.ID, b.ID))
	})
	return flags, nil
}

// DeleteFlag removes a flag together with all of its flaggings.
// Returns store.ErrNotFound if the flag does not exist.
func (s *Store) DeleteFlag(ctx context.Context, flagID string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if err := s.flags.remove(txn, flagID); err != nil {
			return err
		}
		for _, id := range s.flaggings.ids(txn, flaggingByFlag, flagID) {
			if err := s.flaggings.remove(txn, id); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound.WithMessage(fmt.Sprintf("flag %q not found", flagID))
	}
	return err
}

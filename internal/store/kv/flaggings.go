package kv

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

// Flagging index names.
const (
	flaggingByKey    = "key"
	flaggingByFlag   = "flag"
	flaggingByEntity = "entity"
	flaggingByTarget = "target"
	flaggingByOwner  = "owner"
)

func keyString(k domain.FlaggingKey) string {
	return k.FlagID + sep + k.EntityType + sep + strconv.FormatInt(k.EntityID, 10) + sep + k.UserID + sep + k.SessionID
}

func targetString(flagID, entityType string, entityID int64) string {
	return flagID + sep + entityType + sep + strconv.FormatInt(entityID, 10)
}

func ownerString(owner domain.Actor) string {
	return owner.UserID + sep + owner.SessionID
}

func flaggingCollection() *collection[domain.Flagging] {
	return newCollection("flagging:", func(f *domain.Flagging) string { return f.ID }).
		withUniqueIndex(flaggingByKey, func(f *domain.Flagging) []string {
			return []string{keyString(f.Key())}
		}).
		withIndex(flaggingByFlag, func(f *domain.Flagging) []string {
			return []string{f.FlagID}
		}).
		withIndex(flaggingByEntity, func(f *domain.Flagging) []string {
			return []string{entityID(f.EntityType, f.EntityID)}
		}).
		withIndex(flaggingByTarget, func(f *domain.Flagging) []string {
			return []string{targetString(f.FlagID, f.EntityType, f.EntityID)}
		}).
		withIndex(flaggingByOwner, func(f *domain.Flagging) []string {
			if f.Owner().IsZero() {
				return nil
			}
			return []string{ownerString(f.Owner())}
		})
}

// CreateFlagging inserts a flagging.
// Returns store.ErrAlreadyExists when the owner already flagged the entity,
// and store.ErrNotFound when the flag or entity is missing.
func (s *Store) CreateFlagging(ctx context.Context, f *domain.Flagging) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.flags.load(txn, f.FlagID); err != nil {
			return err
		}
		if _, err := s.entities.load(txn, entityID(f.EntityType, f.EntityID)); err != nil {
			return err
		}
		return s.flaggings.insert(txn, f)
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return store.ErrAlreadyExists.WithMessage("entity is already flagged")
	case errors.Is(err, store.ErrNotFound):
		return store.ErrNotFound.WithMessage("flag or entity not found")
	}
	return err
}

// GetFlagging retrieves the flagging identified by key.
// Returns store.ErrNotFound if there is none.
func (s *Store) GetFlagging(ctx context.Context, key domain.FlaggingKey) (*domain.Flagging, error) {
	var f *domain.Flagging
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		f, err = s.flaggings.lookup(txn, flaggingByKey, keyString(key))
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrNotFound.WithMessage("flagging not found")
	}
	return f, err
}

// DeleteFlagging removes the flagging identified by key.
// Returns store.ErrNotFound if there is none.
func (s *Store) DeleteFlagging(ctx context.Context, key domain.FlaggingKey) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		f, err := s.flaggings.lookup(txn, flaggingByKey, keyString(key))
		if err != nil {
			return err
		}
		return s.flaggings.remove(txn, f.ID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound.WithMessage("flagging not found")
	}
	return err
}

// CountFlaggings returns how many owners flagged the entity with flagID.
func (s *Store) CountFlaggings(ctx context.Context, flagID, entityType string, id int64) (int, error) {
	var n int
	err := s.view(ctx, func(txn *badger.Txn) error {
		n = len(s.flaggings.ids(txn, flaggingByTarget, targetString(flagID, entityType, id)))
		return nil
	})
	return n, err
}

// ListFlaggingsByOwner returns the owner's flaggings, newest first.
func (s *Store) ListFlaggingsByOwner(ctx context.Context, owner domain.Actor) ([]*domain.Flagging, error) {
	flaggings := []*domain.Flagging{}
	if owner.IsZero() {
		return flaggings, nil
	}

	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range s.flaggings.ids(txn, flaggingByOwner, ownerString(owner)) {
			f, err := s.flaggings.load(txn, id)
			if err != nil {
				return err
			}
			flaggings = append(flaggings, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(flaggings, func(a, b *domain.Flagging) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return flaggings, nil
}

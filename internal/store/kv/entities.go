package kv

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

func entityID(entityType string, id int64) string {
	return entityType + sep + strconv.FormatInt(id, 10)
}

func entityCollection() *collection[domain.Entity] {
	return newCollection("entity:", func(e *domain.Entity) string { return entityID(e.Type, e.ID) })
}

// SaveEntity inserts an entity or updates its label. The original creation
// time is kept on update.
func (s *Store) SaveEntity(ctx context.Context, e *domain.Entity) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		rec := *e
		if old, err := s.entities.load(txn, entityID(e.Type, e.ID)); err == nil {
			rec.CreatedAt = old.CreatedAt
		}
		return s.entities.upsert(txn, &rec)
	})
}

// GetEntity retrieves an entity by type and id.
// Returns store.ErrNotFound if the entity does not exist.
func (s *Store) GetEntity(ctx context.Context, entityType string, id int64) (*domain.Entity, error) {
	var e *domain.Entity
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		e, err = s.entities.load(txn, entityID(entityType, id))
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("%s %d not found", entityType, id))
	}
	return e, err
}

// ListEntities returns all entities of a type ordered by id.
// An empty type lists every entity.
func (s *Store) ListEntities(ctx context.Context, entityType string) ([]*domain.Entity, error) {
	idPrefix := ""
	if entityType != "" {
		idPrefix = entityType + sep
	}

	var entities []*domain.Entity
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		entities, err = s.entities.all(txn, idPrefix)
		return err
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entities, func(a, b *domain.Entity) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.ID, b.ID))
	})
	return entities, nil
}

// DeleteEntity removes an entity together with all of its flaggings.
// Returns store.ErrNotFound if the entity does not exist.
func (s *Store) DeleteEntity(ctx context.Context, entityType string, id int64) error {
	key := entityID(entityType, id)
	err := s.update(ctx, func(txn *badger.Txn) error {
		if err := s.entities.remove(txn, key); err != nil {
			return err
		}
		for _, fid := range s.flaggings.ids(txn, flaggingByEntity, key) {
			if err := s.flaggings.remove(txn, fid); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound.WithMessage(fmt.Sprintf("%s %d not found", entityType, id))
	}
	return err
}

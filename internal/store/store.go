// Package store defines the persistence interface for flags, flaggable
// entities and flaggings. Implementations live in store/sqlite and store/kv.
package store

import (
	"context"

	"github.com/listenupapp/listenup-flags/internal/domain"
)

// Store defines all persistence operations used by the flag service.
//
// Implementations enforce at most one flagging per domain.FlaggingKey and
// return ErrAlreadyExists when a second one is created.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Flags
	CreateFlag(ctx context.Context, flag *domain.Flag) error
	UpdateFlag(ctx context.Context, flag *domain.Flag) error
	GetFlag(ctx context.Context, flagID string) (*domain.Flag, error)
	ListFlags(ctx context.Context) ([]*domain.Flag, error)
	// DeleteFlag removes the flag and all of its flaggings.
	DeleteFlag(ctx context.Context, flagID string) error

	// Entities
	SaveEntity(ctx context.Context, entity *domain.Entity) error
	GetEntity(ctx context.Context, entityType string, entityID int64) (*domain.Entity, error)
	ListEntities(ctx context.Context, entityType string) ([]*domain.Entity, error)
	// DeleteEntity removes the entity and all flaggings on it.
	DeleteEntity(ctx context.Context, entityType string, entityID int64) error

	// Flaggings
	CreateFlagging(ctx context.Context, flagging *domain.Flagging) error
	GetFlagging(ctx context.Context, key domain.FlaggingKey) (*domain.Flagging, error)
	DeleteFlagging(ctx context.Context, key domain.FlaggingKey) error
	CountFlaggings(ctx context.Context, flagID, entityType string, entityID int64) (int, error)
	ListFlaggingsByOwner(ctx context.Context, owner domain.Actor) ([]*domain.Flagging, error)
}

// EventEmitter broadcasts changes without depending on the SSE implementation.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
	"github.com/listenupapp/listenup-flags/internal/sse"
	"github.com/listenupapp/listenup-flags/internal/store"
	"github.com/listenupapp/listenup-flags/internal/validation"
)

// FlagService owns flag definitions, the entity registry and the flag/unflag
// state transition. Both the link controller and workflow actions delegate here.
type FlagService struct {
	store     store.Store
	emitter   store.EventEmitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewFlagService creates a new flag service.
// A nil emitter disables event emission.
func NewFlagService(s store.Store, emitter store.EventEmitter, logger *slog.Logger) *FlagService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	return &FlagService{
		store:     s,
		emitter:   emitter,
		validator: validation.New(),
		logger:    logger,
	}
}

// CreateFlagRequest describes a new flag definition.
type CreateFlagRequest struct {
	ID              string `json:"id" yaml:"id" validate:"required,machinename,max=64"`
	Label           string `json:"label" yaml:"label" validate:"max=255"`
	EntityType      string `json:"entity_type" yaml:"entity_type" validate:"required,machinename,max=64"`
	FlagShortText   string `json:"flag_short_text" yaml:"flag_short_text" validate:"max=255"`
	UnflagShortText string `json:"unflag_short_text" yaml:"unflag_short_text" validate:"max=255"`
	Weight          int    `json:"weight" yaml:"weight"`
	Global          bool   `json:"global" yaml:"global"`
}

// Flag converts the request into a domain flag with defaults applied.
func (r CreateFlagRequest) Flag() *domain.Flag {
	now := time.Now()
	f := &domain.Flag{
		ID:              r.ID,
		Label:           r.Label,
		EntityType:      r.EntityType,
		FlagShortText:   r.FlagShortText,
		UnflagShortText: r.UnflagShortText,
		Weight:          r.Weight,
		Global:          r.Global,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.ApplyDefaults()
	return f
}

// GetFlagByID returns the flag with the given machine name.
func (s *FlagService) GetFlagByID(ctx context.Context, flagID string) (*domain.Flag, error) {
	f, err := s.store.GetFlag(ctx, flagID)
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// ListFlags returns all flags ordered by weight.
func (s *FlagService) ListFlags(ctx context.Context) ([]*domain.Flag, error) {
	return s.store.ListFlags(ctx)
}

// CreateFlag validates and stores a new flag definition.
func (s *FlagService) CreateFlag(ctx context.Context, req CreateFlagRequest) (*domain.Flag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	f := req.Flag()
	if err := s.store.CreateFlag(ctx, f); err != nil {
		return nil, translate(err)
	}

	s.logger.Info("flag created",
		"flag_id", f.ID,
		"entity_type", f.EntityType,
		"global", f.Global,
	)
	s.emitter.Emit(sse.NewFlagUpdatedEvent(f, false))
	return f, nil
}

// DeleteFlag removes a flag and every flagging made with it.
func (s *FlagService) DeleteFlag(ctx context.Context, flagID string) error {
	f, err := s.store.GetFlag(ctx, flagID)
	if err != nil {
		return translate(err)
	}
	if err := s.store.DeleteFlag(ctx, flagID); err != nil {
		return translate(err)
	}

	s.logger.Info("flag deleted", "flag_id", flagID)
	s.emitter.Emit(sse.NewFlagUpdatedEvent(f, true))
	return nil
}

// SyncResult reports what SyncDefinitions changed.
type SyncResult struct {
	Created   []string `json:"created"`
	Updated   []string `json:"updated"`
	Removed   []string `json:"removed"`
	Unchanged int      `json:"unchanged"`
}

// SyncDefinitions makes the stored flags match defs. Missing flags are
// created and changed ones updated in place, so existing flaggings survive.
// With prune set, stored flags absent from defs are deleted.
//
// All definitions are validated before anything is written.
func (s *FlagService) SyncDefinitions(ctx context.Context, defs []CreateFlagRequest, prune bool) (*SyncResult, error) {
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if err := s.validator.Validate(def); err != nil {
			return nil, err
		}
		if seen[def.ID] {
			return nil, domainerrors.Validationf("flag %q is defined twice", def.ID)
		}
		seen[def.ID] = true
	}

	result := &SyncResult{Created: []string{}, Updated: []string{}, Removed: []string{}}

	for _, def := range defs {
		want := def.Flag()

		existing, err := s.store.GetFlag(ctx, def.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if err := s.store.CreateFlag(ctx, want); err != nil {
				return result, translate(err)
			}
			result.Created = append(result.Created, want.ID)
			s.emitter.Emit(sse.NewFlagUpdatedEvent(want, false))
			continue
		case err != nil:
			return result, err
		}

		want.CreatedAt = existing.CreatedAt
		if existing.SameDefinition(want) {
			result.Unchanged++
			continue
		}
		if err := s.store.UpdateFlag(ctx, want); err != nil {
			return result, translate(err)
		}
		result.Updated = append(result.Updated, want.ID)
		s.emitter.Emit(sse.NewFlagUpdatedEvent(want, false))
	}

	if prune {
		stored, err := s.store.ListFlags(ctx)
		if err != nil {
			return result, err
		}
		for _, f := range stored {
			if seen[f.ID] {
				continue
			}
			if err := s.store.DeleteFlag(ctx, f.ID); err != nil {
				return result, translate(err)
			}
			result.Removed = append(result.Removed, f.ID)
			s.emitter.Emit(sse.NewFlagUpdatedEvent(f, true))
		}
	}

	s.logger.Info("flag definitions synced",
		"created", len(result.Created),
		"updated", len(result.Updated),
		"removed", len(result.Removed),
		"unchanged", result.Unchanged,
	)
	return result, nil
}

package service

import (
	"context"
	"time"

	"github.com/listenupapp/listenup-flags/internal/domain"
)

// RegisterEntityRequest describes a flaggable entity.
type RegisterEntityRequest struct {
	Type  string `json:"type" validate:"required,machinename,max=64"`
	Label string `json:"label" validate:"max=255"`
	ID    int64  `json:"id" validate:"gt=0"`
}

// RegisterEntity records an entity so it can be flagged.
// Registering an existing entity updates its label.
func (s *FlagService) RegisterEntity(ctx context.Context, req RegisterEntityRequest) (*domain.Entity, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	e := &domain.Entity{
		Type:      req.Type,
		ID:        req.ID,
		Label:     req.Label,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveEntity(ctx, e); err != nil {
		return nil, translate(err)
	}

	s.logger.Debug("entity registered", "entity_type", e.Type, "entity_id", e.ID)
	return e, nil
}

// ListEntities returns registered entities of a type; empty lists all.
func (s *FlagService) ListEntities(ctx context.Context, entityType string) ([]*domain.Entity, error) {
	return s.store.ListEntities(ctx, entityType)
}

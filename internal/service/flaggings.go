package service

import (
	"context"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
	"github.com/listenupapp/listenup-flags/internal/id"
	"github.com/listenupapp/listenup-flags/internal/sse"
)

// GetFlaggableByID resolves the entity a flag would apply to. The lookup is
// keyed by the flag's entity type, so ids of other types are not found.
func (s *FlagService) GetFlaggableByID(ctx context.Context, flag *domain.Flag, entityID int64) (*domain.Entity, error) {
	if entityID <= 0 {
		return nil, domainerrors.Validationf("invalid entity id %d", entityID)
	}

	e, err := s.store.GetEntity(ctx, flag.EntityType, entityID)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

// Flag flags entity with flag for the actor on ctx.
// Returns ALREADY_EXISTS when the actor already flagged the entity.
func (s *FlagService) Flag(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (*domain.Flagging, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return nil, domainerrors.Unauthorized("flagging requires a user or session")
	}
	if !flag.AppliesTo(entity.Type) {
		return nil, domainerrors.Validationf("flag %q does not apply to %s entities", flag.ID, entity.Type)
	}

	flaggingID, err := id.Generate(id.PrefixFlagging)
	if err != nil {
		return nil, err
	}

	owner := actor.OwnerFor(flag)
	flagging := domain.NewFlagging(flaggingID, flag, entity, owner)
	if err := s.store.CreateFlagging(ctx, flagging); err != nil {
		return nil, translate(err)
	}

	count, err := s.store.CountFlaggings(ctx, flag.ID, entity.Type, entity.ID)
	if err != nil {
		s.logger.Warn("failed to count flaggings", "flag_id", flag.ID, "error", err)
	}

	s.logger.Info("entity flagged",
		"flag_id", flag.ID,
		"entity_type", entity.Type,
		"entity_id", entity.ID,
		"user_id", actor.UserID,
		"flagging_id", flagging.ID,
	)
	s.emitter.Emit(sse.NewFlaggingCreatedEvent(flagging, count))

	return flagging, nil
}

// Unflag removes the actor's flagging of entity.
// Returns NOT_FOUND when the entity is not flagged.
func (s *FlagService) Unflag(ctx context.Context, flag *domain.Flag, entity *domain.Entity) error {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return domainerrors.Unauthorized("unflagging requires a user or session")
	}

	key := domain.KeyFor(flag, entity, actor.OwnerFor(flag))
	flagging, err := s.store.GetFlagging(ctx, key)
	if err != nil {
		return translate(err)
	}
	if err := s.store.DeleteFlagging(ctx, key); err != nil {
		return translate(err)
	}

	count, err := s.store.CountFlaggings(ctx, flag.ID, entity.Type, entity.ID)
	if err != nil {
		s.logger.Warn("failed to count flaggings", "flag_id", flag.ID, "error", err)
	}

	s.logger.Info("entity unflagged",
		"flag_id", flag.ID,
		"entity_type", entity.Type,
		"entity_id", entity.ID,
		"user_id", actor.UserID,
	)
	s.emitter.Emit(sse.NewFlaggingDeletedEvent(flagging, count))

	return nil
}

// GetFlagging returns the actor's flagging of entity.
func (s *FlagService) GetFlagging(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (*domain.Flagging, error) {
	actor, _ := domain.ActorFromContext(ctx)
	owner := actor.OwnerFor(flag)
	if owner.IsZero() && !flag.Global {
		return nil, domainerrors.NotFound("flagging not found")
	}

	f, err := s.store.GetFlagging(ctx, domain.KeyFor(flag, entity, owner))
	if err != nil {
		return nil, translate(err)
	}
	f.Flaggable = entity
	return f, nil
}

// IsFlagged reports whether the actor on ctx flagged entity.
func (s *FlagService) IsFlagged(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (bool, error) {
	_, err := s.GetFlagging(ctx, flag, entity)
	switch {
	case err == nil:
		return true, nil
	case domainerrors.Is(err, domainerrors.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// CountFlaggings returns how many owners flagged entity.
func (s *FlagService) CountFlaggings(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (int, error) {
	return s.store.CountFlaggings(ctx, flag.ID, entity.Type, entity.ID)
}

// Status is the flag state of one entity as seen by one actor.
type Status struct {
	Flagging *domain.Flagging `json:"flagging,omitempty"`
	Flagged  bool             `json:"flagged"`
	Count    int              `json:"count"`
}

// Status combines IsFlagged and CountFlaggings.
func (s *FlagService) Status(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (*Status, error) {
	count, err := s.CountFlaggings(ctx, flag, entity)
	if err != nil {
		return nil, err
	}

	st := &Status{Count: count}
	f, err := s.GetFlagging(ctx, flag, entity)
	switch {
	case err == nil:
		st.Flagged = true
		st.Flagging = f
	case !domainerrors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}
	return st, nil
}

// ListActorFlaggings returns the flaggings owned by the actor on ctx, newest first.
// Global flaggings have no owner and are not included.
func (s *FlagService) ListActorFlaggings(ctx context.Context) ([]*domain.Flagging, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return nil, domainerrors.Unauthorized("no user or session")
	}

	if actor.UserID != "" {
		actor = domain.Actor{UserID: actor.UserID}
	}
	return s.store.ListFlaggingsByOwner(ctx, actor)
}

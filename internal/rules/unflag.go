package rules

import (
	"context"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

// UnflagActionID identifies the unflag action.
const UnflagActionID = "flag_action_unflag"

// UnflagAction removes a flagging.
type UnflagAction struct {
	service FlagService
}

// NewUnflagAction creates the unflag action.
func NewUnflagAction(svc FlagService) *UnflagAction {
	return &UnflagAction{service: svc}
}

// ID implements Action.
func (a *UnflagAction) ID() string { return UnflagActionID }

// Definition implements Action.
func (a *UnflagAction) Definition() Definition {
	return Definition{
		ID:       UnflagActionID,
		Label:    "Unflags the specified entity.",
		Category: "Entity",
		Contexts: entityFlagContexts(),
	}
}

// Execute unflags c.Entity with c.Flag.
func (a *UnflagAction) Execute(ctx context.Context, c Context) error {
	if c.Entity == nil || c.Flag == nil {
		return domainerrors.Validation("unflag requires an entity and a flag")
	}
	return a.service.Unflag(ctx, c.Flag, c.Entity)
}

// Summary implements Action.
func (a *UnflagAction) Summary() string { return "unflag entity" }

package rules

import (
	"context"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

// FlagActionID identifies the flag action.
const FlagActionID = "flag_action_flag"

// FlagAction creates a flagging.
type FlagAction struct {
	service FlagService
}

// NewFlagAction creates the flag action.
func NewFlagAction(svc FlagService) *FlagAction {
	return &FlagAction{service: svc}
}

// ID implements Action.
func (a *FlagAction) ID() string { return FlagActionID }

// Definition implements Action.
func (a *FlagAction) Definition() Definition {
	return Definition{
		ID:       FlagActionID,
		Label:    "Flags the specified entity.",
		Category: "Entity",
		Contexts: entityFlagContexts(),
	}
}

// Execute flags c.Entity with c.Flag.
func (a *FlagAction) Execute(ctx context.Context, c Context) error {
	if c.Entity == nil || c.Flag == nil {
		return domainerrors.Validation("flag requires an entity and a flag")
	}
	_, err := a.service.Flag(ctx, c.Flag, c.Entity)
	return err
}

// Summary implements Action.
func (a *FlagAction) Summary() string { return "flag entity" }

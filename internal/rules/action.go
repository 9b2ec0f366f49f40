// Package rules exposes flag operations as workflow actions that an external
// automation engine can invoke with typed context values.
package rules

import (
	"context"

	"github.com/listenupapp/listenup-flags/internal/domain"
)

// Context value types an action can declare.
const (
	ContextTypeEntity = "entity"
	ContextTypeFlag   = "flag"
)

// ContextDefinition describes one named context value an action reads.
type ContextDefinition struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Definition is the static metadata of an action.
type Definition struct {
	Contexts map[string]ContextDefinition `json:"contexts"`
	ID       string                       `json:"id"`
	Label    string                       `json:"label"`
	Category string                       `json:"category"`
}

// Context carries the values an action executes on.
type Context struct {
	Entity *domain.Entity
	Flag   *domain.Flag
}

// Action is a single workflow action.
type Action interface {
	ID() string
	Definition() Definition
	// Execute performs the action. The only observable effect is the
	// delegated state change.
	Execute(ctx context.Context, c Context) error
	// Summary is a static human readable description.
	Summary() string
}

// FlagService is the subset of service.FlagService the actions call.
type FlagService interface {
	Flag(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (*domain.Flagging, error)
	Unflag(ctx context.Context, flag *domain.Flag, entity *domain.Entity) error
}

// entityFlagContexts is the context declaration shared by the flag actions.
func entityFlagContexts() map[string]ContextDefinition {
	return map[string]ContextDefinition{
		"entity": {
			Type:        ContextTypeEntity,
			Label:       "Entity",
			Description: "The entity to act on.",
		},
		"flag": {
			Type:        ContextTypeFlag,
			Label:       "Flag",
			Description: "The flag to apply.",
		},
	}
}

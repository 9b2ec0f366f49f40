package rules

import (
	"slices"
	"strings"
	"sync"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

// Registry holds the actions available to the workflow engine.
// Actions are registered explicitly; there is no discovery.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// NewDefaultRegistry creates a registry holding the built-in flag actions.
func NewDefaultRegistry(svc FlagService) *Registry {
	r := NewRegistry()
	// Built-in ids are distinct, so registration cannot fail.
	_ = r.Register(NewFlagAction(svc))
	_ = r.Register(NewUnflagAction(svc))
	return r
}

// Register adds an action. Registering the same id twice is an error.
func (r *Registry) Register(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actions[a.ID()]; ok {
		return domainerrors.AlreadyExistsf("action %q is already registered", a.ID())
	}
	r.actions[a.ID()] = a
	return nil
}

// Get returns the action with the given id.
func (r *Registry) Get(id string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actions[id]
	if !ok {
		return nil, domainerrors.NotFoundf("action %q not found", id)
	}
	return a, nil
}

// Actions returns all registered actions sorted by id.
func (r *Registry) Actions() []Action {
	r.mu.RLock()
	out := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Action) int { return strings.Compare(a.ID(), b.ID()) })
	return out
}

// Definitions returns the definitions of all actions sorted by id.
func (r *Registry) Definitions() []Definition {
	actions := r.Actions()
	defs := make([]Definition, len(actions))
	for i, a := range actions {
		defs[i] = a.Definition()
	}
	return defs
}

// Manager instantiates registered actions by id, the way the workflow
// engine asks for them.
type Manager struct {
	registry *Registry
}

// NewManager creates a manager over registry.
func NewManager(registry *Registry) *Manager {
	return &Manager{registry: registry}
}

// CreateInstance returns the action registered under id.
func (m *Manager) CreateInstance(id string) (Action, error) {
	return m.registry.Get(id)
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

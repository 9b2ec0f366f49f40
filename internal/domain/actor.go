package domain

import "context"

// Actor is whoever performs a flag operation: an authenticated user or an
// anonymous browser session.
type Actor struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// IsZero reports whether the actor carries no identity at all.
func (a Actor) IsZero() bool {
	return a.UserID == "" && a.SessionID == ""
}

// IsAnonymous reports whether the actor is identified only by a session.
func (a Actor) IsAnonymous() bool {
	return a.UserID == "" && a.SessionID != ""
}

// OwnerFor returns the identity that owns flaggings of f for this actor.
// Global flags are owned by nobody; user flaggings drop the session.
func (a Actor) OwnerFor(f *Flag) Actor {
	switch {
	case f.Global:
		return Actor{}
	case a.UserID != "":
		return Actor{UserID: a.UserID}
	default:
		return Actor{SessionID: a.SessionID}
	}
}

type actorKey struct{}

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored on the context, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.IsZero() {
		return Actor{}, false
	}
	return a, true
}

package domain

import "time"

// Flagging is the materialized relationship between one flag, one entity and
// one owner. It is created on flag and removed on unflag.
type Flagging struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	FlagID     string    `json:"flag_id"`
	EntityType string    `json:"entity_type"`
	UserID     string    `json:"user_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	EntityID   int64     `json:"entity_id"`

	// Flaggable is the resolved entity; populated by the service, never stored.
	Flaggable *Entity `json:"-"`
}

// NewFlagging creates a flagging of entity by owner.
func NewFlagging(id string, flag *Flag, entity *Entity, owner Actor) *Flagging {
	return &Flagging{
		ID:         id,
		FlagID:     flag.ID,
		EntityType: entity.Type,
		EntityID:   entity.ID,
		UserID:     owner.UserID,
		SessionID:  owner.SessionID,
		CreatedAt:  time.Now(),
		Flaggable:  entity,
	}
}

// Owner returns the identity owning this flagging.
func (f *Flagging) Owner() Actor {
	return Actor{UserID: f.UserID, SessionID: f.SessionID}
}

// FlaggingKey identifies at most one flagging.
type FlaggingKey struct {
	FlagID     string
	EntityType string
	UserID     string
	SessionID  string
	EntityID   int64
}

// KeyFor builds the lookup key for a flag, an entity and an owner.
func KeyFor(flag *Flag, entity *Entity, owner Actor) FlaggingKey {
	return FlaggingKey{
		FlagID:     flag.ID,
		EntityType: entity.Type,
		EntityID:   entity.ID,
		UserID:     owner.UserID,
		SessionID:  owner.SessionID,
	}
}

// Key returns the lookup key of this flagging.
func (f *Flagging) Key() FlaggingKey {
	return FlaggingKey{
		FlagID:     f.FlagID,
		EntityType: f.EntityType,
		EntityID:   f.EntityID,
		UserID:     f.UserID,
		SessionID:  f.SessionID,
	}
}

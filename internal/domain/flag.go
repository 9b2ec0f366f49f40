// Package domain holds the core types of the flag service: flags, the
// entities they apply to, the flaggings that materialize a flag on an entity,
// and the actors that own those flaggings.
package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default link texts used when a flag definition does not provide its own.
const (
	DefaultFlagShortText   = "Flag this item"
	DefaultUnflagShortText = "Unflag this item"
)

// Flag is a named, flaggable relationship type such as "bookmark" or "like".
// A flag applies to exactly one entity type.
type Flag struct {
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	ID              string    `json:"id"`          // Machine name, e.g. "bookmark"
	Label           string    `json:"label"`       // Human readable name
	EntityType      string    `json:"entity_type"` // The single entity type this flag applies to
	FlagShortText   string    `json:"flag_short_text"`
	UnflagShortText string    `json:"unflag_short_text"`
	Weight          int       `json:"weight"`
	// Global flags have a single flagging per entity shared by every actor.
	Global bool `json:"global"`
}

// NewFlag creates a flag with default link texts and timestamps.
// An empty label is derived from the machine name.
func NewFlag(id, label, entityType string) *Flag {
	if label == "" {
		label = DefaultLabel(id)
	}
	now := time.Now()
	return &Flag{
		ID:              id,
		Label:           label,
		EntityType:      entityType,
		FlagShortText:   DefaultFlagShortText,
		UnflagShortText: DefaultUnflagShortText,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AppliesTo reports whether entities of the given type can carry this flag.
func (f *Flag) AppliesTo(entityType string) bool {
	return f.EntityType == entityType
}

// Touch updates the UpdatedAt timestamp.
func (f *Flag) Touch() {
	f.UpdatedAt = time.Now()
}

// ApplyDefaults fills empty display fields.
func (f *Flag) ApplyDefaults() {
	if f.Label == "" {
		f.Label = DefaultLabel(f.ID)
	}
	if f.FlagShortText == "" {
		f.FlagShortText = DefaultFlagShortText
	}
	if f.UnflagShortText == "" {
		f.UnflagShortText = DefaultUnflagShortText
	}
}

// SameDefinition reports whether two flags carry the same configurable fields.
// Timestamps are ignored.
func (f *Flag) SameDefinition(other *Flag) bool {
	return f.ID == other.ID &&
		f.Label == other.Label &&
		f.EntityType == other.EntityType &&
		f.FlagShortText == other.FlagShortText &&
		f.UnflagShortText == other.UnflagShortText &&
		f.Weight == other.Weight &&
		f.Global == other.Global
}

// DefaultLabel turns a machine name into a title-cased label:
// "reading_list" becomes "Reading List".
func DefaultLabel(machineName string) string {
	words := strings.Fields(strings.ReplaceAll(machineName, "_", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

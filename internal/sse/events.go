// Package sse implements Server-Sent Events for real-time flag updates.
package sse

import (
	"time"

	"github.com/listenupapp/listenup-flags/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventFlaggingCreated is sent after an entity was flagged.
	EventFlaggingCreated EventType = "flagging.created"
	// EventFlaggingDeleted is sent after an entity was unflagged.
	EventFlaggingDeleted EventType = "flagging.deleted"
	// EventFlagUpdated is sent when a flag definition is created, changed or removed.
	EventFlagUpdated EventType = "flag.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Owner filters delivery. A zero owner broadcasts to every client.
	UserID    string `json:"-"`
	SessionID string `json:"-"`
}

// FlaggingEventData is the payload of flagging events.
// Count is the number of flaggings of the entity after the change.
type FlaggingEventData struct {
	FlagID     string `json:"flag_id"`
	EntityType string `json:"entity_type"`
	UserID     string `json:"user_id,omitempty"`
	EntityID   int64  `json:"entity_id"`
	Count      int    `json:"count"`
}

// FlagEventData is the payload of flag.updated events.
type FlagEventData struct {
	Flag    *domain.Flag `json:"flag"`
	Deleted bool         `json:"deleted,omitempty"`
}

// HeartbeatEventData is the payload of heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newFlaggingEvent(t EventType, f *domain.Flagging, count int) Event {
	return Event{
		Type: t,
		Data: FlaggingEventData{
			FlagID:     f.FlagID,
			EntityType: f.EntityType,
			EntityID:   f.EntityID,
			UserID:     f.UserID,
			Count:      count,
		},
		UserID:    f.UserID,
		SessionID: f.SessionID,
		Timestamp: time.Now(),
	}
}

// NewFlaggingCreatedEvent creates a flagging.created event.
// Personal flaggings are only delivered to their owner; global ones go to everyone.
func NewFlaggingCreatedEvent(f *domain.Flagging, count int) Event {
	return newFlaggingEvent(EventFlaggingCreated, f, count)
}

// NewFlaggingDeletedEvent creates a flagging.deleted event.
func NewFlaggingDeletedEvent(f *domain.Flagging, count int) Event {
	return newFlaggingEvent(EventFlaggingDeleted, f, count)
}

// NewFlagUpdatedEvent creates a flag.updated event.
func NewFlagUpdatedEvent(f *domain.Flag, deleted bool) Event {
	return Event{
		Type:      EventFlagUpdated,
		Data:      FlagEventData{Flag: f, Deleted: deleted},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

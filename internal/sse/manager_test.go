package sse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-flags/internal/domain"
)

func newTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m, cancel
}

func receive(t *testing.T, c *Client) (Event, bool) {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e, true
	case <-time.After(200 * time.Millisecond):
		return Event{}, false
	}
}

func TestManager_BroadcastFiltersByOwner(t *testing.T) {
	m, _ := newTestManager(t)

	alice, err := m.Connect("alice", "")
	require.NoError(t, err)
	bob, err := m.Connect("bob", "")
	require.NoError(t, err)
	anon, err := m.Connect("", "sess-1")
	require.NoError(t, err)

	flagging := &domain.Flagging{FlagID: "bookmark", EntityType: "node", EntityID: 1, UserID: "alice"}
	m.Emit(NewFlaggingCreatedEvent(flagging, 1))

	got, ok := receive(t, alice)
	require.True(t, ok, "owner should receive personal event")
	assert.Equal(t, EventFlaggingCreated, got.Type)
	data, ok := got.Data.(FlaggingEventData)
	require.True(t, ok)
	assert.Equal(t, "bookmark", data.FlagID)
	assert.Equal(t, 1, data.Count)

	_, ok = receive(t, bob)
	assert.False(t, ok, "other users must not receive personal events")
	_, ok = receive(t, anon)
	assert.False(t, ok)
}

func TestManager_GlobalEventsReachEveryone(t *testing.T) {
	m, _ := newTestManager(t)

	alice, err := m.Connect("alice", "")
	require.NoError(t, err)
	anon, err := m.Connect("", "sess-1")
	require.NoError(t, err)

	m.Emit(NewFlagUpdatedEvent(domain.NewFlag("like", "", "node"), false))

	_, ok := receive(t, alice)
	assert.True(t, ok)
	_, ok = receive(t, anon)
	assert.True(t, ok)
}

func TestManager_SessionEvents(t *testing.T) {
	m, _ := newTestManager(t)

	mine, err := m.Connect("", "sess-1")
	require.NoError(t, err)
	other, err := m.Connect("", "sess-2")
	require.NoError(t, err)

	m.Emit(NewFlaggingDeletedEvent(&domain.Flagging{FlagID: "like", EntityType: "node", EntityID: 2, SessionID: "sess-1"}, 0))

	_, ok := receive(t, mine)
	assert.True(t, ok)
	_, ok = receive(t, other)
	assert.False(t, ok)
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))

	c, err := m.Connect("alice", "")
	require.NoError(t, err)
	assert.Contains(t, c.ID, "sse-")
	assert.Equal(t, 1, m.ClientCount())

	var ids []string
	for client := range m.Clients() {
		ids = append(ids, client.ID)
	}
	assert.Equal(t, []string{c.ID}, ids)

	m.Disconnect(c.ID)
	assert.Equal(t, 0, m.ClientCount())

	_, open := <-c.Done
	assert.False(t, open)

	// Unknown ids are ignored.
	m.Disconnect(c.ID)
}

func TestManager_EmitAfterShutdown(t *testing.T) {
	m, _ := newTestManager(t)
	c, err := m.Connect("", "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	assert.NotPanics(t, func() {
		m.Emit(NewFlagUpdatedEvent(domain.NewFlag("like", "", "node"), true))
	})
	assert.Equal(t, 0, m.ClientCount())

	_, open := <-c.Done
	assert.False(t, open)
}

func TestManager_EmitIgnoresForeignTypes(t *testing.T) {
	m, _ := newTestManager(t)
	c, err := m.Connect("", "")
	require.NoError(t, err)

	m.Emit("not an event")

	_, ok := receive(t, c)
	assert.False(t, ok)
}

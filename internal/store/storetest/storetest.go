// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

// Factory opens an empty store. The store is closed by the suite.
type Factory func(t *testing.T) store.Store

// Run exercises the full store.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"FlagCRUD", testFlagCRUD},
		{"FlagDuplicate", testFlagDuplicate},
		{"ListFlagsOrder", testListFlagsOrder},
		{"EntityUpsert", testEntityUpsert},
		{"FlaggingLifecycle", testFlaggingLifecycle},
		{"FlaggingPerOwner", testFlaggingPerOwner},
		{"FlaggingRequiresFlagAndEntity", testFlaggingRequiresFlagAndEntity},
		{"DeleteFlagCascades", testDeleteFlagCascades},
		{"DeleteEntityCascades", testDeleteEntityCascades},
		{"ConcurrentDuplicateFlagging", testConcurrentDuplicateFlagging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func seedFlag(t *testing.T, s store.Store, flagID, entityType string) *domain.Flag {
	t.Helper()
	f := domain.NewFlag(flagID, "", entityType)
	require.NoError(t, s.CreateFlag(context.Background(), f))
	return f
}

func seedEntity(t *testing.T, s store.Store, entityType string, entityID int64) *domain.Entity {
	t.Helper()
	e := &domain.Entity{Type: entityType, ID: entityID, Label: "Entity", CreatedAt: time.Now()}
	require.NoError(t, s.SaveEntity(context.Background(), e))
	return e
}

func testFlagCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seedFlag(t, s, "bookmark", "node")

	got, err := s.GetFlag(ctx, "bookmark")
	require.NoError(t, err)
	assert.Equal(t, "Bookmark", got.Label)
	assert.Equal(t, "node", got.EntityType)
	assert.Equal(t, f.CreatedAt.Unix(), got.CreatedAt.Unix())

	got.Label = "Read later"
	got.Global = true
	got.Weight = 3
	got.Touch()
	require.NoError(t, s.UpdateFlag(ctx, got))

	updated, err := s.GetFlag(ctx, "bookmark")
	require.NoError(t, err)
	assert.Equal(t, "Read later", updated.Label)
	assert.True(t, updated.Global)
	assert.Equal(t, 3, updated.Weight)

	require.NoError(t, s.DeleteFlag(ctx, "bookmark"))
	_, err = s.GetFlag(ctx, "bookmark")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	assert.True(t, errors.Is(s.DeleteFlag(ctx, "bookmark"), store.ErrNotFound))
	assert.True(t, errors.Is(s.UpdateFlag(ctx, got), store.ErrNotFound))
}

func testFlagDuplicate(t *testing.T, s store.Store) {
	seedFlag(t, s, "like", "node")
	err := s.CreateFlag(context.Background(), domain.NewFlag("like", "", "comment"))
	assert.True(t, errors.Is(err, store.ErrAlreadyExists), "got %v", err)
}

func testListFlagsOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, f := range []*domain.Flag{
		{ID: "zeta", Label: "Zeta", EntityType: "node", Weight: 0},
		{ID: "alpha", Label: "Alpha", EntityType: "node", Weight: 5},
		{ID: "beta", Label: "Beta", EntityType: "node", Weight: 0},
	} {
		f.CreatedAt = time.Now()
		f.UpdatedAt = f.CreatedAt
		require.NoError(t, s.CreateFlag(ctx, f))
	}

	flags, err := s.ListFlags(ctx)
	require.NoError(t, err)
	ids := make([]string, len(flags))
	for i, f := range flags {
		ids[i] = f.ID
	}
	assert.Equal(t, []string{"beta", "zeta", "alpha"}, ids)
}

func testEntityUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedEntity(t, s, "node", 1)
	seedEntity(t, s, "user", 1)

	require.NoError(t, s.SaveEntity(ctx, &domain.Entity{Type: "node", ID: 1, Label: "Renamed", CreatedAt: time.Now()}))

	e, err := s.GetEntity(ctx, "node", 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", e.Label)

	_, err = s.GetEntity(ctx, "node", 2)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	nodes, err := s.ListEntities(ctx, "node")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	all, err := s.ListEntities(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testFlaggingLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seedFlag(t, s, "bookmark", "node")
	e := seedEntity(t, s, "node", 42)
	owner := domain.Actor{UserID: "user-1"}

	fl := domain.NewFlagging("flagging-1", f, e, owner)
	require.NoError(t, s.CreateFlagging(ctx, fl))

	got, err := s.GetFlagging(ctx, domain.KeyFor(f, e, owner))
	require.NoError(t, err)
	assert.Equal(t, "flagging-1", got.ID)
	assert.Equal(t, int64(42), got.EntityID)
	assert.Equal(t, "user-1", got.UserID)

	n, err := s.CountFlaggings(ctx, "bookmark", "node", 42)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mine, err := s.ListFlaggingsByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "flagging-1", mine[0].ID)

	dup := domain.NewFlagging("flagging-2", f, e, owner)
	assert.True(t, errors.Is(s.CreateFlagging(ctx, dup), store.ErrAlreadyExists))

	require.NoError(t, s.DeleteFlagging(ctx, domain.KeyFor(f, e, owner)))
	assert.True(t, errors.Is(s.DeleteFlagging(ctx, domain.KeyFor(f, e, owner)), store.ErrNotFound))

	_, err = s.GetFlagging(ctx, domain.KeyFor(f, e, owner))
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testFlaggingPerOwner(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seedFlag(t, s, "like", "node")
	e := seedEntity(t, s, "node", 7)

	owners := []domain.Actor{
		{UserID: "user-1"},
		{UserID: "user-2"},
		{SessionID: "sess-1"},
	}
	for i, owner := range owners {
		fl := domain.NewFlagging("flagging-"+string(rune('a'+i)), f, e, owner)
		require.NoError(t, s.CreateFlagging(ctx, fl))
	}

	n, err := s.CountFlaggings(ctx, "like", "node", 7)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	anon, err := s.ListFlaggingsByOwner(ctx, domain.Actor{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Len(t, anon, 1)

	none, err := s.ListFlaggingsByOwner(ctx, domain.Actor{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testFlaggingRequiresFlagAndEntity(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seedFlag(t, s, "bookmark", "node")

	missing := &domain.Entity{Type: "node", ID: 404}
	fl := domain.NewFlagging("flagging-1", f, missing, domain.Actor{UserID: "user-1"})
	assert.True(t, errors.Is(s.CreateFlagging(ctx, fl), store.ErrNotFound))
}

func testDeleteFlagCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seedFlag(t, s, "bookmark", "node")
	e := seedEntity(t, s, "node", 1)
	require.NoError(t, s.CreateFlagging(ctx, domain.NewFlagging("flagging-1", f, e, domain.Actor{UserID: "u"})))

	require.NoError(t, s.DeleteFlag(ctx, "bookmark"))

	// Recreating the flag must not resurrect old flaggings.
	seedFlag(t, s, "bookmark", "node")
	n, err := s.CountFlaggings(ctx, "bookmark", "node", 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testDeleteEntityCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seedFlag(t, s, "bookmark", "node")
	e := seedEntity(t, s, "node", 1)
	require.NoError(t, s.CreateFlagging(ctx, domain.NewFlagging("flagging-1", f, e, domain.Actor{UserID: "u"})))

	require.NoError(t, s.DeleteEntity(ctx, "node", 1))
	assert.True(t, errors.Is(s.DeleteEntity(ctx, "node", 1), store.ErrNotFound))

	mine, err := s.ListFlaggingsByOwner(ctx, domain.Actor{UserID: "u"})
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func testConcurrentDuplicateFlagging(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seedFlag(t, s, "bookmark", "node")
	e := seedEntity(t, s, "node", 1)
	owner := domain.Actor{UserID: "user-1"}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fl := domain.NewFlagging("flagging-"+string(rune('a'+i)), f, e, owner)
			err := s.CreateFlagging(ctx, fl)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, store.ErrAlreadyExists):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, dupes)
}

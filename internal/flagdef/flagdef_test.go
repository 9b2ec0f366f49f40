package flagdef

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-flags/internal/service"
)

const sampleDefinitions = `
flags:
  - id: bookmark
    entity_type: node
    label: Bookmark
    weight: -1
  - id: like
    entity_type: comment
    global: true
    flag_short_text: Like
    unflag_short_text: Unlike
`

func TestParse(t *testing.T) {
	defs, err := Parse(strings.NewReader(sampleDefinitions))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "bookmark", defs[0].ID)
	assert.Equal(t, "node", defs[0].EntityType)
	assert.Equal(t, "Bookmark", defs[0].Label)
	assert.Equal(t, -1, defs[0].Weight)

	assert.Equal(t, "like", defs[1].ID)
	assert.True(t, defs[1].Global)
	assert.Equal(t, "Like", defs[1].FlagShortText)
	assert.Equal(t, "Unlike", defs[1].UnflagShortText)
}

func TestParse_Empty(t *testing.T) {
	for _, doc := range []string{"", "flags: []\n", "flags:\n"} {
		defs, err := Parse(strings.NewReader(doc))
		require.NoError(t, err, "doc %q", doc)
		assert.Empty(t, defs)
		assert.NotNil(t, defs)
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("flags:\n  - id: x\n    entity_typ: node\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity_typ")
}

func TestParse_DerivesIDFromLabel(t *testing.T) {
	defs, err := Parse(strings.NewReader("flags:\n  - label: Read later\n    entity_type: node\n"))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "read_later", defs[0].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// recordingSyncer captures every definitions set it receives.
type recordingSyncer struct {
	mu    sync.Mutex
	calls [][]service.CreateFlagRequest
	prune []bool
}

func (r *recordingSyncer) SyncDefinitions(_ context.Context, defs []service.CreateFlagRequest, prune bool) (*service.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, defs)
	r.prune = append(r.prune, prune)
	return &service.SyncResult{}, nil
}

func (r *recordingSyncer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingSyncer) last() []service.CreateFlagRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_Sync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	writeFile(t, path, sampleDefinitions)

	syncer := &recordingSyncer{}
	w := NewWatcher(path, syncer, Options{Prune: true}, slog.New(slog.DiscardHandler))

	_, err := w.Sync(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, syncer.count())
	assert.Len(t, syncer.last(), 2)
	assert.True(t, syncer.prune[0])
}

func TestWatcher_SyncInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	writeFile(t, path, "flags: [")

	syncer := &recordingSyncer{}
	w := NewWatcher(path, syncer, Options{}, slog.New(slog.DiscardHandler))

	_, err := w.Sync(context.Background())
	assert.Error(t, err)
	assert.Zero(t, syncer.count(), "nothing is applied from a broken file")
}

func TestWatcher_RunResyncsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yaml")
	writeFile(t, path, sampleDefinitions)

	syncer := &recordingSyncer{}
	w := NewWatcher(path, syncer, Options{Debounce: 50 * time.Millisecond}, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not start")
	}

	// Unrelated files in the directory are ignored.
	writeFile(t, filepath.Join(dir, "other.yaml"), "flags: []\n")

	writeFile(t, path, "flags:\n  - id: bookmark\n    entity_type: node\n")
	writeFile(t, path, "flags:\n  - id: star\n    entity_type: node\n")

	require.Eventually(t, func() bool {
		if syncer.count() == 0 {
			return false
		}
		last := syncer.last()
		return len(last) == 1 && last[0].ID == "star"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-flags/internal/auth"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

const definitions = `
flags:
  - id: bookmark
    entity_type: node
  - id: like
    entity_type: comment
    global: true
    weight: 2
`

// run executes flagctl against dataPath and returns everything it printed.
func run(t *testing.T, dataPath string, args ...string) (string, error) {
	t.Helper()

	opts := NewOptions(context.Background())
	root := NewRootCommand(opts)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-path", dataPath, "--no-color", "--log-level", "error"}, args...))

	err := root.Execute()
	require.NoError(t, opts.Close())
	return out.String(), err
}

func writeDefinitions(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFlagsImportAndList(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinitions(t, dir, definitions)

	out, err := run(t, dir, "flags", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 flag definitions")
	assert.Contains(t, out, "created: bookmark, like")
	assert.Contains(t, out, "unchanged: 0")

	out, err = run(t, dir, "flags", "import", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "created:")
	assert.Contains(t, out, "unchanged: 2")

	out, err = run(t, dir, "flags", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmark on node (personal, weight 0)")
	assert.Contains(t, out, "on comment (global, weight 2)")
	assert.Less(t, strings.Index(out, "bookmark"), strings.Index(out, "like"))
}

func TestFlagsImportPrune(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinitions(t, dir, definitions)
	_, err := run(t, dir, "flags", "import", path)
	require.NoError(t, err)

	writeDefinitions(t, dir, "flags:\n  - id: bookmark\n    entity_type: node\n")
	out, err := run(t, dir, "flags", "import", "--prune", path)
	require.NoError(t, err)
	assert.Contains(t, out, "removed: like")

	out, err = run(t, dir, "flags", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "like")
}

func TestFlagsListEmpty(t *testing.T) {
	out, err := run(t, t.TempDir(), "flags", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no flags defined")
}

func TestFlagsImportInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinitions(t, dir, "flags:\n  - id: Not Valid\n    entity_type: node\n")

	_, err := run(t, dir, "flags", "import", path)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = run(t, dir, "flags", "import", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestEntityAddAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "entity", "add", "node", "42", "--label", "Hello world")
	require.NoError(t, err)
	assert.Contains(t, out, "registered node 42")

	_, err = run(t, dir, "entity", "add", "comment", "7")
	require.NoError(t, err)

	out, err = run(t, dir, "entity", "list", "node")
	require.NoError(t, err)
	assert.Contains(t, out, "node 42  Hello world")
	assert.NotContains(t, out, "comment")

	out, err = run(t, dir, "entity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "comment 7  (no label)")
}

func TestEntityAddInvalidID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		t.Run(id, func(t *testing.T) {
			// "--" keeps cobra from reading "-3" as a shorthand flag.
			_, err := run(t, t.TempDir(), "entity", "add", "--", "node", id)
			require.Error(t, err)
			assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
		})
	}
}

// seed imports the sample definitions and registers node 42.
func seed(t *testing.T, dir string) {
	t.Helper()
	_, err := run(t, dir, "flags", "import", writeDefinitions(t, dir, definitions))
	require.NoError(t, err)
	_, err = run(t, dir, "entity", "add", "node", "42")
	require.NoError(t, err)
}

func TestFlagThenUnflag(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, err := run(t, dir, "flag", "bookmark", "42", "--user", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "flagged node 42 with bookmark")
	assert.Contains(t, out, "flagged by 1")

	_, err = run(t, dir, "flag", "bookmark", "42", "--user", "user-1")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err))

	out, err = run(t, dir, "flag", "bookmark", "42", "--session", "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "flagged by 2")

	out, err = run(t, dir, "unflag", "bookmark", "42", "--user", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "unflagged node 42 with bookmark")

	_, err = run(t, dir, "unflag", "bookmark", "42", "--user", "user-1")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestFlagErrors(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	tests := []struct {
		name string
		args []string
		code domainerrors.Code
	}{
		{"no actor", []string{"flag", "bookmark", "42"}, domainerrors.CodeValidation},
		{"non-numeric entity", []string{"flag", "bookmark", "abc", "--user", "u"}, domainerrors.CodeValidation},
		{"unknown flag", []string{"flag", "missing", "42", "--user", "u"}, domainerrors.CodeNotFound},
		{"unknown entity", []string{"flag", "bookmark", "43", "--user", "u"}, domainerrors.CodeNotFound},
		{"wrong entity type", []string{"flag", "like", "42", "--user", "u"}, domainerrors.CodeNotFound},
		{"unflag without actor", []string{"unflag", "bookmark", "42"}, domainerrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, domainerrors.CodeOf(err))
		})
	}
}

func TestActionsList(t *testing.T) {
	out, err := run(t, t.TempDir(), "actions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "flag_action_unflag")
	assert.Contains(t, out, "unflag entity")
	assert.Contains(t, out, "flag_action_flag")
	assert.Contains(t, out, "entity (entity)")
	assert.Contains(t, out, "flag (flag)")
}

func TestActionsRunUnflag(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	_, err := run(t, dir, "flag", "bookmark", "42", "--user", "user-1")
	require.NoError(t, err)

	out, err := run(t, dir, "actions", "run", "flag_action_unflag",
		"--flag", "bookmark", "--entity", "42", "--user", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "unflag entity: node 42 with bookmark")

	_, err = run(t, dir, "unflag", "bookmark", "42", "--user", "user-1")
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestActionsRunUnknownAction(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	_, err := run(t, dir, "actions", "run", "flag_action_delete",
		"--flag", "bookmark", "--entity", "42", "--user", "user-1")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestToken(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "token", "user-1", "--quiet")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	claims, err := tokens.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	out, err = run(t, dir, "token", "user-2")
	require.NoError(t, err)
	assert.Contains(t, out, "expires")
}

func TestBadgerDriver(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "--store", "badger", "entity", "add", "node", "1", "--label", "Stored in badger")
	require.NoError(t, err)

	out, err := run(t, dir, "--store", "badger", "entity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored in badger")

	// The sqlite store in the same directory is separate.
	out, err = run(t, dir, "entity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no entities registered")
}

func TestUnknownDriver(t *testing.T) {
	_, err := run(t, t.TempDir(), "--store", "postgres", "flags", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

func TestGenerator_DefaultCanonicalRoute(t *testing.T) {
	g, err := NewGenerator(nil)
	require.NoError(t, err)

	path, err := g.EntityURL(&domain.Entity{Type: "node", ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "/node/42", path)
}

func TestGenerator_Override(t *testing.T) {
	g, err := NewGenerator(map[string]string{
		"entity.node.canonical": "/articles/{node}",
	})
	require.NoError(t, err)

	path, err := g.EntityURL(&domain.Entity{Type: "node", ID: 7})
	require.NoError(t, err)
	assert.Equal(t, "/articles/7", path)

	// Other types still use the default.
	path, err = g.EntityURL(&domain.Entity{Type: "user", ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "/user/1", path)
}

func TestGenerator_Generate(t *testing.T) {
	g, err := NewGenerator(map[string]string{
		"flag.link": "/flag/{flag}/{entity}",
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		route   string
		params  map[string]string
		want    string
		errCode domainerrors.Code
	}{
		{
			name:   "all params",
			route:  "flag.link",
			params: map[string]string{"flag": "bookmark", "entity": "3"},
			want:   "/flag/bookmark/3",
		},
		{
			name:   "escapes values",
			route:  "flag.link",
			params: map[string]string{"flag": "a b", "entity": "x/y"},
			want:   "/flag/a%20b/x%2Fy",
		},
		{
			name:    "missing param",
			route:   "flag.link",
			params:  map[string]string{"flag": "bookmark"},
			errCode: domainerrors.CodeValidation,
		},
		{
			name:    "unknown route",
			route:   "nope",
			errCode: domainerrors.CodeNotFound,
		},
		{
			name:    "malformed canonical name",
			route:   "entity..canonical",
			errCode: domainerrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Generate(tt.route, tt.params)
			if tt.errCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errCode, domainerrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerator_RegisterRejectsRelative(t *testing.T) {
	_, err := NewGenerator(map[string]string{"x": "relative/{a}"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestParseTemplates(t *testing.T) {
	got, err := ParseTemplates(" entity.node.canonical=/n/{node} ; entity.user.canonical=/u/{user};")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"entity.node.canonical": "/n/{node}",
		"entity.user.canonical": "/u/{user}",
	}, got)

	_, err = ParseTemplates("broken")
	assert.Error(t, err)

	empty, err := ParseTemplates("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

type flagRequest struct {
	ID         string `json:"id" validate:"required,machinename,max=32"`
	Label      string `json:"label" validate:"required,max=255"`
	EntityType string `json:"entity_type" validate:"required,machinename"`
	Weight     int    `json:"weight,omitempty" validate:"gte=0"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(flagRequest{ID: "bookmark", Label: "Bookmark", EntityType: "node"})
	assert.NoError(t, err)
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(flagRequest{ID: "Not A Name", EntityType: "node", Weight: -1})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details["id"], "lowercase")
	assert.Equal(t, "is required", details["label"])
	assert.Equal(t, "must be greater than or equal to 0", details["weight"])
	assert.NotContains(t, details, "entity_type")
}

func TestIsMachineName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"bookmark", true},
		{"like_2", true},
		{"b", true},
		{"", false},
		{"2fast", false},
		{"Bookmark", false},
		{"book-mark", false},
		{"_private", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMachineName(tt.in))
		})
	}
}

func TestMachineName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bookmark", "bookmark"},
		{"Read later", "read_later"},
		{"read_later", "read_later"},
		{"  Slow -- Burn  ", "slow_burn"},
		{"Café favourite", "cafe_favourite"},
		{"5 Stars!", "stars"},
		{"__private", "private"},
		{"🐉", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := MachineName(tt.input)
			assert.Equal(t, tt.expected, got)
			if got != "" {
				assert.True(t, IsMachineName(got), "%q is not a machine name", got)
			}
		})
	}
}

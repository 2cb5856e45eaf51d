package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorPassesCleanInput(t *testing.T) {
	err := NewValidator().
		Field("image_path", "input/ch01.png", Required).
		Field("chapter_number", 3, Positive).
		Error()
	assert.NoError(t, err)
}

func TestValidatorCollectsAllFailures(t *testing.T) {
	err := NewValidator().
		Field("image_path", "   ", Required).
		Field("chapter_number", 0, Positive).
		Field("subject", "", Required).
		Error()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "image_path")
	assert.Contains(t, err.Error(), "chapter_number")
	assert.Contains(t, err.Error(), "subject")
}

func TestRequiredRule(t *testing.T) {
	empty := ""
	filled := "physics"
	tests := []struct {
		name  string
		value interface{}
		fails bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"whitespace", " \t", true},
		{"nil string pointer", (*string)(nil), true},
		{"empty string pointer", &empty, true},
		{"filled string", "physics", false},
		{"filled string pointer", &filled, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Required("field", tc.value)
			assert.Equal(t, tc.fails, got != nil)
		})
	}
}

func TestPositiveRule(t *testing.T) {
	assert.Nil(t, Positive("chapter_number", 1))
	assert.NotNil(t, Positive("chapter_number", 0))
	assert.NotNil(t, Positive("chapter_number", -4))
	assert.NotNil(t, Positive("chapter_number", "7"))
}

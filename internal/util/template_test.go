package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("You are {{.Name}}, speaking with {{.Caller}}.", map[string]any{
		"Name":   "Ava",
		"Caller": "Sam",
	})
	require.NoError(t, err)
	assert.Equal(t, "You are Ava, speaking with Sam.", out)
}

func TestRenderTemplate_FastPath(t *testing.T) {
	out, err := RenderTemplate("no markers here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers here", out)
}

func TestRenderTemplate_DefaultFunc(t *testing.T) {
	out, err := RenderTemplate(`Hello {{default "there" .Name}}`, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)
}

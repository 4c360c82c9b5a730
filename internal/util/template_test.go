package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate_NoMarkersFastPath(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestRenderTemplate_Expansion(t *testing.T) {
	out, err := RenderTemplate("task: {{.Seed}} ({{upper .Tier}})", map[string]string{
		"Seed": "add two numbers",
		"Tier": "low",
	})
	require.NoError(t, err)
	assert.Equal(t, "task: add two numbers (LOW)", out)
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}

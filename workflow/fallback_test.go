package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionworks/fusioncoder/core"
)

func TestFallbackCoverage(t *testing.T) {
	m := NewFallbackManager(nil)

	covered := []core.Role{
		core.RoleArchitect, core.RoleProcessor, core.RoleReviewer, core.RoleDataCollector,
	}
	for _, role := range covered {
		assert.True(t, m.Covers(role), "expected coverage for %s", role)
	}
	assert.False(t, m.Covers(core.RoleUserProxy))
	assert.False(t, m.Covers(core.RoleTester))
}

func TestFallbackReturnsCannedOutput(t *testing.T) {
	m := NewFallbackManager(nil)

	out, err := m.Fallback(core.RoleProcessor, errors.New("model unavailable"))
	require.NoError(t, err)
	assert.Contains(t, out, "minimal viable implementation")

	// Same role, same cause, same output.
	again, err := m.Fallback(core.RoleProcessor, errors.New("model unavailable"))
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestFallbackUncoveredRole(t *testing.T) {
	m := NewFallbackManager(nil)

	_, err := m.Fallback(core.RoleUserProxy, errors.New("boom"))
	var nfe *core.NoFallbackError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, core.RoleUserProxy, nfe.Role)
}

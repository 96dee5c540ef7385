package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModifiers(t *testing.T) {
	mods, err := ParseModifiers([]string{"Ctrl", "alt"})
	require.NoError(t, err)
	assert.Len(t, mods, 2)

	_, err = ParseModifiers([]string{"hyper"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown modifier")
}

func TestParseKey(t *testing.T) {
	for _, name := range []string{"k", "K", "5", "space", "left", "f5"} {
		_, err := ParseKey(name)
		assert.NoError(t, err, "key %q", name)
	}

	_, err := ParseKey("mediaplaypause")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

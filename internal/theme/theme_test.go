package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinThemes(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"amber", "classic", "green", "slate"}, cat.Keys())

	classic, err := cat.Get("classic")
	require.NoError(t, err)
	assert.Equal(t, "classic", classic.Key)
	assert.Equal(t, "#f39c12", classic.Primary)

	_, err = cat.Get("neon")
	assert.Error(t, err)
}

func TestThemeFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classic:\n  name: House\n  primary: \"#123456\"\nnight:\n  name: Night\n"), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	classic, err := cat.Get("classic")
	require.NoError(t, err)
	assert.Equal(t, "House", classic.Name)
	assert.Equal(t, "#123456", classic.Primary)
	assert.Contains(t, cat.Keys(), "night")
}

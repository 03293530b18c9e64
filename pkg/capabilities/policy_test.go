package capabilities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanlauliac/ikolang-sub001/pkg/capabilities"
)

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := capabilities.Default()
	assert.True(t, p.IsAllowed("value"))
	assert.False(t, p.IsAllowed("class"))
	assert.Equal(t, []string{"value"}, p.Names())

	var nilPolicy *capabilities.Policy
	assert.False(t, nilPolicy.IsAllowed("value"))

	all := capabilities.AllowAll()
	assert.True(t, all.IsAllowed("anything"))
	assert.Nil(t, all.Names())

	assert.Equal(t, []string{"class", "value"}, capabilities.Allow("class").Names())
}

func TestLoadPolicy(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("Missing", func(t *testing.T) {
		p, source, err := capabilities.LoadPolicy(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, source)
		assert.Equal(t, []string{"value"}, p.Names())
	})

	t.Run("Project", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, capabilities.ProjectFile)
		require.NoError(t, os.WriteFile(path, []byte(`{"allow": ["class", "style"], "deny": ["style"]}`), 0o644))

		p, source, err := capabilities.LoadPolicy(dir)
		require.NoError(t, err)
		assert.Equal(t, path, source)
		assert.Equal(t, []string{"class", "value"}, p.Names())
	})

	t.Run("DenyValue", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, capabilities.ProjectFile)
		require.NoError(t, os.WriteFile(path, []byte(`{"deny": ["value"]}`), 0o644))

		p, _, err := capabilities.LoadPolicy(dir)
		require.NoError(t, err)
		assert.False(t, p.IsAllowed("value"))
	})

	t.Run("User", func(t *testing.T) {
		home := os.Getenv("HOME")
		require.NoError(t, os.MkdirAll(filepath.Join(home, ".iko"), 0o755))
		path := filepath.Join(home, capabilities.UserFile)
		require.NoError(t, os.WriteFile(path, []byte(`{"allow": ["title"]}`), 0o644))
		defer os.Remove(path)

		p, source, err := capabilities.LoadPolicy(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, path, source)
		assert.True(t, p.IsAllowed("title"))
	})

	t.Run("Malformed", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, capabilities.ProjectFile), []byte(`{`), 0o644))

		_, _, err := capabilities.LoadPolicy(dir)
		assert.Error(t, err)
	})
}

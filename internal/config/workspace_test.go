package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureWorkspace_CreatesStructureWhenMissing(t *testing.T) {
	root := t.TempDir()

	ws, err := EnsureWorkspace(root)
	require.NoError(t, err)
	require.Equal(t, root, ws.Root)

	mustBeDir(t, filepath.Join(root, ".titanium"))
	mustBeDir(t, filepath.Join(root, ".titanium", "cache"))
	mustBeDir(t, filepath.Join(root, ".titanium", "logs"))
}

func TestEnsureWorkspace_AllowsOptionalConfigFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".titanium")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(""), 0o644))

	_, err := EnsureWorkspace(root)
	require.NoError(t, err)
}

func TestEnsureWorkspace_RejectsUnauthorizedEntries(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".titanium")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evil.txt"), []byte("nope"), 0o644))

	_, err := EnsureWorkspace(root)
	require.ErrorIs(t, err, ErrUnauthorizedWorkspaceEntry)
}

func TestEnsureWorkspace_RejectsRequiredDirNameAsFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".titanium")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache"), []byte("not a dir"), 0o644))

	_, err := EnsureWorkspace(root)
	require.ErrorIs(t, err, ErrInvalidWorkspace)
}

func TestEnsureWorkspace_RejectsWorkspacePathCollision(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".titanium")
	require.NoError(t, os.WriteFile(dir, []byte("not a dir"), 0o644))

	_, err := EnsureWorkspace(root)
	require.Error(t, err)
}

func mustBeDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.IsDir(), "%s is not a dir", path)
}

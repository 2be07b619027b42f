package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoConfigFilePresent(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxFileSize, cfg.Index.MaxFileSize)
	assert.True(t, cfg.Index.RespectGitignore)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(root, ".julie.toml"), []byte(`
[index]
max_file_size = 1048576
follow_symlinks = true

[performance]
parallel_file_workers = 4
`), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), cfg.Index.MaxFileSize)
	assert.True(t, cfg.Index.FollowSymlinks)
	assert.Equal(t, 4, cfg.Performance.ParallelFileWorkers)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultMaxTotalSizeMB, cfg.Index.MaxTotalSizeMB)
}

func TestLoad_ProjectOverridesHomeGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".julie.toml"), []byte(`
[performance]
parallel_file_workers = 2
`), 0644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".julie.toml"), []byte(`
[performance]
parallel_file_workers = 8
`), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Performance.ParallelFileWorkers)
}

func TestLoad_LegacyJulieconfigNameIsAccepted(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(root, ".julieconfig"), []byte(`
[index]
max_file_count = 500
`), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Index.MaxFileCount)
}

func TestLoad_ResolvesProjectRootToAbsolutePath(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.Project.Root))
}

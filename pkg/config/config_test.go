package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleRoot(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, `{
		"project_root": "`+root+`",
		"has_single_root": true,
		"system_type": "remote",
		"ssh_command": "ssh -p 2222 deploy@prod",
		"blacklist": {"`+root+`": ["node_modules", "*.log"]},
		"project_output_files": ["main.go", "go.mod"]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "remote", cfg.SystemType)
	assert.Equal(t, "ssh -p 2222 deploy@prod", cfg.SSHCommand)
	assert.Equal(t, DefaultInstructionsDir, cfg.InstructionsDir)

	// Single-root expands to one segment carrying the project output files.
	require.Len(t, cfg.Directories, 1)
	seg := cfg.Directories[0]
	assert.Equal(t, filepath.Base(root), seg.Name)
	assert.Equal(t, root, seg.Directory)
	assert.True(t, seg.Remote)
	assert.Equal(t, []string{"main.go", "go.mod"}, seg.OutputFiles)

	assert.True(t, cfg.RemoteSegments())
	assert.Equal(t, []string{"node_modules", "*.log"}, cfg.BlacklistFor(root))
	assert.Nil(t, cfg.BlacklistFor("/elsewhere"))
}

func TestLoadMultiSegment(t *testing.T) {
	path := writeConfig(t, `{
		"project_root": "/srv/app",
		"has_single_root": false,
		"directories": [
			{"name": "backend", "directory": "/srv/app/backend", "is_remote": true},
			{"name": "frontend", "directory": "/srv/app/frontend", "is_remote": false,
			 "output_files": ["index.html"]}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.SystemType) // default
	require.Len(t, cfg.Directories, 2)
	assert.Equal(t, "backend", cfg.Directories[0].Name)
	assert.True(t, cfg.Directories[0].Remote)
	assert.False(t, cfg.Directories[1].Remote)
	assert.Equal(t, []string{"index.html"}, cfg.Directories[1].OutputFiles)
	assert.True(t, cfg.RemoteSegments())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	cfg := &Config{
		ProjectRoot:   dir,
		HasSingleRoot: true,
		SystemType:    "local",
		CacheTTLHours: 12,
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, loaded.ProjectRoot)
	assert.Equal(t, 12, loaded.CacheTTLHours)
	require.Len(t, loaded.Directories, 1)
	assert.False(t, loaded.Directories[0].Remote)
}

package assemble

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jherbrandson/gpt-helper/pkg/blacklist"
	"github.com/jherbrandson/gpt-helper/pkg/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestLocalTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":          "readme",
		"src/main.go":        "package main",
		"src/util/helper.go": "package util",
		"node_modules/x.js":  "skip me",
	})

	bl := blacklist.New([]string{"node_modules"}, nil)
	lines, err := LocalTree(root, bl, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		root,
		"├── src/",
		"│   ├── util/",
		"│   │   └── helper.go",
		"│   └── main.go",
		"└── README.md",
	}, lines)
}

func TestLocalTreeMissingRoot(t *testing.T) {
	_, err := LocalTree(filepath.Join(t.TempDir(), "absent"), nil, nil)
	assert.Error(t, err)
}

func TestRemoteTree(t *testing.T) {
	entries := []remote.TreeEntry{
		{Path: "README.md"},
		{Path: "src", IsDir: true},
		{Path: "src/main.go"},
		{Path: "src/util/helper.go"}, // implies src/util/ even without a dir entry
		{Path: "vendor/lib.go"},
	}

	bl := blacklist.New([]string{"vendor"}, nil)
	lines := RemoteTree("/srv/app", entries, bl)

	assert.Equal(t, []string{
		"/srv/app",
		"├── src/",
		"│   ├── util/",
		"│   │   └── helper.go",
		"│   └── main.go",
		"└── README.md",
	}, lines)
}

func TestRemoteTreeDirsSortBeforeFiles(t *testing.T) {
	entries := []remote.TreeEntry{
		{Path: "aaa.txt"},
		{Path: "zzz", IsDir: true},
	}
	lines := RemoteTree("/r", entries, nil)
	assert.Equal(t, []string{"/r", "├── zzz/", "└── aaa.txt"}, lines)
}

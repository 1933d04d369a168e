package annotate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jherbrandson/gpt-helper/pkg/blacklist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertHeader(t *testing.T) {
	updated, changed := insertHeader("package main\n", "app/main.go", "main.go")
	require.True(t, changed)
	assert.Equal(t, "// app/main.go\npackage main\n", updated)
}

func TestInsertHeaderAfterShebang(t *testing.T) {
	content := "#!/usr/bin/env python3\nprint('hi')\n"
	updated, changed := insertHeader(content, "app/run.py", "run.py")
	require.True(t, changed)
	assert.Equal(t, "#!/usr/bin/env python3\n# app/run.py\nprint('hi')\n", updated)
}

func TestInsertHeaderShebangOnly(t *testing.T) {
	updated, changed := insertHeader("#!/bin/sh", "app/run.sh", "run.sh")
	require.True(t, changed)
	assert.Equal(t, "#!/bin/sh\n# app/run.sh\n", updated)
}

func TestInsertHeaderIdempotent(t *testing.T) {
	content := "// app/main.go\npackage main\n"
	updated, changed := insertHeader(content, "app/main.go", "main.go")
	assert.False(t, changed)
	assert.Equal(t, content, updated)
}

func TestHasHeaderAcceptsAnyCommentStyle(t *testing.T) {
	for _, first := range []string{
		"# app/conf.yml",
		"// app/conf.yml",
		"-- app/conf.yml",
		"/* app/conf.yml */",
		"<!-- app/conf.yml -->",
		"  #  app/conf.yml  ",
	} {
		assert.True(t, hasHeader([]string{first + "\n"}, "app/conf.yml"), "line %q", first)
	}
	assert.False(t, hasHeader([]string{"# app/other.yml\n"}, "app/conf.yml"))
	assert.False(t, hasHeader([]string{"# app/conf.yml.bak\n"}, "app/conf.yml"))
	assert.False(t, hasHeader(nil, "app/conf.yml"))
}

func TestCommentSymbols(t *testing.T) {
	tests := []struct {
		fname  string
		prefix string
		suffix string
	}{
		{"main.go", "//", ""},
		{"script.py", "#", ""},
		{"schema.sql", "--", ""},
		{"style.css", "/*", " */"},
		{"index.html", "<!--", " -->"},
		{"Dockerfile", "#", ""},
		{".env", "#", ""},
		{"LICENSE", "#", ""}, // unknown falls back to shell style
	}
	for _, tt := range tests {
		pref, suf := commentSymbols(tt.fname)
		assert.Equal(t, tt.prefix, pref, tt.fname)
		assert.Equal(t, tt.suffix, suf, tt.fname)
	}
}

func TestLooksBinary(t *testing.T) {
	assert.True(t, looksBinary([]byte("ELF\x00\x01\x02")))
	assert.False(t, looksBinary([]byte("plain text\nwith lines\n")))
	assert.False(t, looksBinary(nil))
}

func TestRunLocal(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) string {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		return full
	}
	mainGo := write("src/main.go", "package main\n")
	script := write("tools/run.py", "#!/usr/bin/env python3\nprint('hi')\n")
	binary := write("assets/logo.png", "\x89PNG\x00\x00binary")
	write("vendor/skip.go", "package vendor\n")

	bl := blacklist.New([]string{"vendor"}, nil)
	a := New(root, bl, nil, nil)

	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Annotated)
	assert.Equal(t, 1, sum.Skipped) // the binary
	assert.Equal(t, 0, sum.Failed)

	base := filepath.Base(root)
	data, err := os.ReadFile(mainGo)
	require.NoError(t, err)
	assert.Equal(t, "// "+base+"/src/main.go\npackage main\n", string(data))

	data, err = os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, "#!/usr/bin/env python3\n# "+base+"/tools/run.py\nprint('hi')\n", string(data))

	data, err = os.ReadFile(binary)
	require.NoError(t, err)
	assert.NotContains(t, string(data), base)

	// A second pass finds nothing left to do.
	sum, err = a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Annotated)
	assert.Equal(t, 3, sum.Skipped)
}

func TestHeader(t *testing.T) {
	a := New("/srv/app", nil, nil, nil)
	assert.Equal(t, "app/src/main.go", a.Header("/srv/app/src/main.go"))
}

package blacklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesPrefixEntries(t *testing.T) {
	l := New([]string{"node_modules", "build/output", ".git"}, nil)

	assert.True(t, l.Matches("node_modules"))
	assert.True(t, l.Matches("node_modules/react/index.js"))
	assert.True(t, l.Matches("build/output"))
	assert.True(t, l.Matches("build/output/app.js"))
	assert.True(t, l.Matches(".git/HEAD"))

	assert.False(t, l.Matches("build"))
	assert.False(t, l.Matches("build/src/main.go"))
	assert.False(t, l.Matches("node_modules_backup"))
	assert.False(t, l.Matches("src/node_modules.md"))
}

func TestMatchesGlobEntries(t *testing.T) {
	l := New([]string{"*.log", "cache/?", "dist/*.min.js"}, nil)

	assert.True(t, l.Matches("debug.log"))
	assert.True(t, l.Matches("cache/a"))
	assert.True(t, l.Matches("cache/a/deep/file"))
	assert.True(t, l.Matches("dist/app.min.js"))

	// '*' does not cross path separators.
	assert.False(t, l.Matches("logs/debug.log"))
	assert.False(t, l.Matches("cache/ab"))
	assert.False(t, l.Matches("dist/nested/app.min.js"))
}

func TestMatchesNormalizesInput(t *testing.T) {
	l := New([]string{" /vendor/ "}, nil)

	assert.True(t, l.Matches("vendor"))
	assert.True(t, l.Matches("/vendor/lib.go"))
	assert.False(t, l.Matches(""))
}

func TestGlobSpecialCharactersAreLiteral(t *testing.T) {
	l := New([]string{"notes (draft)*.txt"}, nil)

	assert.True(t, l.Matches("notes (draft)1.txt"))
	assert.False(t, l.Matches("notes draft1.txt"))
}

func TestEmpty(t *testing.T) {
	assert.True(t, New(nil, nil).Empty())
	assert.True(t, New([]string{"", "  ", "/"}, nil).Empty())
	assert.False(t, New([]string{"tmp"}, nil).Empty())
}

package annotate

import (
	"path/filepath"
	"strings"
)

// commentPrefixes maps file basenames and extensions to the comment marker
// opening a single-line comment.
var commentPrefixes = map[string]string{
	"Dockerfile": "#",
	"Makefile":   "#",
	".gitignore": "#",
	".env":       "#",

	".py": "#", ".sh": "#", ".bash": "#", ".rb": "#", ".pl": "#",
	".yml": "#", ".yaml": "#", ".toml": "#", ".cfg": "#", ".ini": "#",
	".conf": "#", ".tf": "#",

	".go": "//", ".js": "//", ".jsx": "//", ".ts": "//", ".tsx": "//",
	".java": "//", ".cpp": "//", ".cc": "//", ".rs": "//", ".php": "//",
	".swift": "//", ".kt": "//", ".scala": "//", ".dart": "//",
	// technically disallowed, but pragmatic for context files
	".json": "//",

	".sql": "--", ".lua": "--", ".hs": "--",

	".c": "/*", ".h": "/*", ".css": "/*", ".scss": "/*", ".less": "/*",

	".html": "<!--", ".htm": "<!--", ".xml": "<!--",
	".md": "<!--", ".markdown": "<!--",
}

// commentSymbols returns the (prefix, suffix) pair wrapping a single-line
// comment for a file. The suffix is empty for #, // and -- markers.
func commentSymbols(fname string) (string, string) {
	base := filepath.Base(fname)
	ext := strings.ToLower(filepath.Ext(base))

	pref, ok := commentPrefixes[base]
	if !ok {
		pref = commentPrefixes[ext]
	}
	switch pref {
	case "#", "//", "--":
		return pref, ""
	case "/*":
		return "/*", " */"
	case "<!--":
		return "<!--", " -->"
	}
	// Fallback: safest is shell style so the file stays runnable.
	return "#", ""
}

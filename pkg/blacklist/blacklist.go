// Package blacklist filters project-relative paths against user-configured
// exclusion entries. Plain entries exclude a path and everything under it;
// entries containing wildcards are compiled to anchored regexes.
package blacklist

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// List is a compiled set of exclusion entries for one directory root.
type List struct {
	prefixes []string
	globs    []*regexp.Regexp
	logger   *zap.Logger
}

// New compiles entries into a List. Invalid wildcard entries are logged and
// skipped rather than failing the whole list.
func New(entries []string, logger *zap.Logger) *List {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &List{logger: logger}
	for _, entry := range entries {
		entry = strings.Trim(strings.TrimSpace(entry), "/")
		if entry == "" {
			continue
		}
		if !strings.ContainsAny(entry, "*?") {
			l.prefixes = append(l.prefixes, entry)
			continue
		}
		re, err := compileGlob(entry)
		if err != nil {
			logger.Warn("Skipping invalid blacklist pattern", zap.String("pattern", entry), zap.Error(err))
			continue
		}
		l.globs = append(l.globs, re)
	}
	return l
}

// Matches reports whether rel (a path relative to the list's root) is
// excluded, either exactly or as a descendant of an excluded directory.
func (l *List) Matches(rel string) bool {
	rel = strings.Trim(normalizePath(rel), "/")
	if rel == "" {
		return false
	}
	for _, p := range l.prefixes {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	for _, re := range l.globs {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// Empty reports whether the list excludes nothing.
func (l *List) Empty() bool {
	return len(l.prefixes) == 0 && len(l.globs) == 0
}

// compileGlob converts a wildcard entry to a regex matching the entry and
// any descendant path. '*' stays within one path segment, '?' matches one
// character.
func compileGlob(entry string) (*regexp.Regexp, error) {
	escaped := escapeSpecialChars(entry)
	escaped = strings.ReplaceAll(escaped, "*", `[^/]*`)
	escaped = strings.ReplaceAll(escaped, "?", ".")
	return regexp.Compile("^" + escaped + "(/.*)?$")
}

// escapeSpecialChars escapes regex special characters except '*', '?' and '/'.
func escapeSpecialChars(pattern string) string {
	var specialChars = `.+()|^$[]{}`
	for _, char := range specialChars {
		pattern = strings.ReplaceAll(pattern, string(char), `\`+string(char))
	}
	return pattern
}

func normalizePath(path string) string {
	return filepath.ToSlash(path)
}

// Package annotate inserts a first-line header comment into source files
// recording each file's project-relative path, so pasted snippets remain
// attributable. The header lands after any shebang line and files already
// carrying the correct header are left untouched.
package annotate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jherbrandson/gpt-helper/pkg/blacklist"
	"github.com/jherbrandson/gpt-helper/pkg/remote"

	"go.uber.org/zap"
)

// Annotator applies path headers to every eligible file under one root.
// A nil fetcher means the root is a local directory.
type Annotator struct {
	root    string
	bl      *blacklist.List
	fetcher *remote.Fetcher
	logger  *zap.Logger
}

// Summary counts the outcome of one annotation pass.
type Summary struct {
	Annotated int // files that received a header
	Skipped   int // already annotated, binary, or blacklisted
	Failed    int // read or write errors
}

// New creates an Annotator for root. bl and fetcher may be nil.
func New(root string, bl *blacklist.List, fetcher *remote.Fetcher, logger *zap.Logger) *Annotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{root: root, bl: bl, fetcher: fetcher, logger: logger}
}

// Run annotates every eligible file under the root and returns a summary.
func (a *Annotator) Run(ctx context.Context) (Summary, error) {
	files, err := a.listFiles(ctx)
	if err != nil {
		return Summary{}, err
	}
	a.logger.Info("Annotating files", zap.String("root", a.root), zap.Int("candidates", len(files)))

	var sum Summary
	for _, file := range files {
		changed, err := a.annotate(ctx, file)
		switch {
		case err != nil:
			a.logger.Warn("Failed to annotate file", zap.String("file", file), zap.Error(err))
			sum.Failed++
		case changed:
			sum.Annotated++
		default:
			sum.Skipped++
		}
	}
	return sum, nil
}

// Header returns the annotation text for a file under the root:
// "<root base>/<relative path>" in slash form.
func (a *Annotator) Header(file string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(file, a.root), "/")
	base := filepath.Base(a.root)
	return base + "/" + filepath.ToSlash(rel)
}

func (a *Annotator) listFiles(ctx context.Context) ([]string, error) {
	if a.fetcher != nil {
		entries, err := a.fetcher.Tree(ctx, a.root)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, entry := range entries {
			if entry.IsDir {
				continue
			}
			if a.bl != nil && a.bl.Matches(entry.Path) {
				continue
			}
			files = append(files, a.root+"/"+entry.Path)
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			a.logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil
		}
		rel, _ := filepath.Rel(a.root, path)
		if d.IsDir() {
			if a.bl != nil && a.bl.Matches(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if a.bl != nil && a.bl.Matches(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", a.root, err)
	}
	return files, nil
}

// annotate adds the header to one file. Returns false with a nil error when
// the file needs no change.
func (a *Annotator) annotate(ctx context.Context, file string) (bool, error) {
	var content string
	if a.fetcher != nil {
		res := a.fetcher.ReadFile(ctx, file)
		if !res.OK() {
			if res.State == remote.StateNotFound {
				return false, fmt.Errorf("file not found on remote")
			}
			return false, res.Err
		}
		content = res.Content
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			return false, err
		}
		content = string(data)
	}

	if looksBinary([]byte(content)) {
		return false, nil
	}

	header := a.Header(file)
	updated, changed := insertHeader(content, header, file)
	if !changed {
		return false, nil
	}

	if a.fetcher != nil {
		if err := a.fetcher.WriteFile(ctx, file, updated); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := os.WriteFile(file, []byte(updated), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// insertHeader places the header comment on the first logical line, after
// any shebang. Returns the updated content and whether anything changed.
func insertHeader(content, header, fname string) (string, bool) {
	lines := strings.SplitAfter(content, "\n")
	if hasHeader(lines, header) {
		return content, false
	}

	pref, suf := commentSymbols(fname)
	headerLine := pref + " " + header + suf + "\n"

	idx := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		idx = 1
	}

	var b strings.Builder
	for i, line := range lines {
		if i == idx {
			b.WriteString(headerLine)
		}
		b.WriteString(line)
	}
	if idx >= len(lines) {
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		b.WriteString(headerLine)
	}
	return b.String(), true
}

// hasHeader reports whether the first logical line already carries the
// correct annotation, whatever comment style it uses.
func hasHeader(lines []string, header string) bool {
	idx := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		idx = 1
	}
	if idx >= len(lines) {
		return false
	}
	re := headerRegex(header)
	return re.MatchString(strings.TrimRight(lines[idx], "\n"))
}

func headerRegex(header string) *regexp.Regexp {
	pat := `^\s*(#|//|--|/\*|<!--)\s*` + regexp.QuoteMeta(header) + `\s*(\*/|-->)?\s*$`
	return regexp.MustCompile(pat)
}

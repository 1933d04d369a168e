package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// treeEntryLimit caps remote listings so a runaway find on a huge tree
// cannot stall the caller.
const treeEntryLimit = 10000

// TreeEntry is one path in a remote directory listing, relative to the
// listed root.
type TreeEntry struct {
	Path  string
	IsDir bool
	Size  int64
	Mtime float64
}

// Tree lists a remote directory recursively, serving repeat requests from
// the cache under a listing-specific key.
func (f *Fetcher) Tree(ctx context.Context, root string) ([]TreeEntry, error) {
	cacheKey := "tree:" + root
	if listing, ok := f.store.Get(f.conn, cacheKey); ok {
		f.stats.hit()
		return parseTreeListing(listing), nil
	}
	f.stats.miss()

	cmd := fmt.Sprintf("find %s -printf '%%P\\t%%y\\t%%s\\t%%T@\\n' 2>/dev/null | head -%d",
		shellQuote(root), treeEntryLimit)
	out, err := f.run(ctx, readTimeout, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote directory %s: %w", root, err)
	}

	listing := string(out)
	f.store.Put(f.conn, cacheKey, listing, Metadata{Size: int64(len(listing))})
	return parseTreeListing(listing), nil
}

// Prefetch warms the cache with every regular file under a remote
// directory, up to limit files. Failures are logged and swallowed; a cold
// cache is not an error.
func (f *Fetcher) Prefetch(ctx context.Context, dir string, limit int) {
	cmd := fmt.Sprintf("find %s -type f -size -10M -print0", shellQuote(dir))
	out, err := f.run(ctx, readTimeout, cmd)
	if err != nil {
		f.logger.Debug("Prefetch listing failed", zap.String("dir", dir), zap.Error(err))
		return
	}

	var files []string
	for _, p := range strings.Split(string(out), "\x00") {
		if p != "" {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	f.logger.Info("Prefetching remote files", zap.String("dir", dir), zap.Int("count", len(files)))
	f.ReadBatch(ctx, files)
}

func parseTreeListing(listing string) []TreeEntry {
	var entries []TreeEntry
	for _, line := range strings.Split(listing, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 4 || parts[0] == "" {
			continue // the root itself prints an empty relative path
		}
		size, _ := strconv.ParseInt(parts[2], 10, 64)
		mtime, _ := strconv.ParseFloat(parts[3], 64)
		entries = append(entries, TreeEntry{
			Path:  parts[0],
			IsDir: parts[1] == "d",
			Size:  size,
			Mtime: mtime,
		})
	}
	return entries
}

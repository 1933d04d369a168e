package remote

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// WriteFile atomically replaces a remote file with content, staging it in a
// temp file and moving it into place. The cache entry for the path is
// refreshed on success so subsequent reads see the new content.
func (f *Fetcher) WriteFile(ctx context.Context, path, content string) error {
	tmp := path + ".gpt-helper.tmp"

	name, args := f.sshCommand("cat > "+shellQuote(tmp), f.extraOpts)
	if _, err := f.runner.Run(ctx, readTimeout, content, name, args...); err != nil {
		return fmt.Errorf("failed to stage remote file %s: %w", path, err)
	}

	cmd := "mv " + shellQuote(tmp) + " " + shellQuote(path)
	if _, err := f.run(ctx, statTimeout, cmd); err != nil {
		return fmt.Errorf("failed to replace remote file %s: %w", path, err)
	}

	f.store.Put(f.conn, path, content, Metadata{
		Size:  int64(len(content)),
		Mtime: strconv.FormatInt(time.Now().Unix(), 10),
	})
	return nil
}

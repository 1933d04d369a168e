package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default tuning, matching the behavior callers relied on historically.
const (
	DefaultBatchSize            = 20
	DefaultMaxWorkers           = 5
	DefaultCompressionThreshold = 1024 // bytes; larger files travel as tar+gzip
)

// Per-command timeouts. Connection probes fail fast, large combined
// transfers get the most room.
const (
	probeTimeout = 5 * time.Second
	statTimeout  = 10 * time.Second
	readTimeout  = 30 * time.Second
	batchTimeout = 60 * time.Second
)

// Fetcher retrieves remote file contents through a Store-backed cache,
// batching multiple files into a single tar transfer when beneficial.
//
// Tuning fields may be adjusted after construction but before the first
// fetch. Probe should likewise be called before concurrent fetching starts.
type Fetcher struct {
	BatchSize            int   // Max uncached paths served by one combined transfer
	MaxWorkers           int   // Worker pool size for large batches
	CompressionThreshold int64 // Single files above this size travel compressed

	conn   Connection
	store  *Store
	runner Runner
	stats  *Stats
	logger *zap.Logger

	tuneOnce  sync.Once
	extraOpts []string // ssh options accepted by the remote (ControlMaster, -C)
}

// NewFetcher creates a Fetcher for one connection. A nil runner selects the
// exec-based one.
func NewFetcher(conn Connection, store *Store, runner Runner, logger *zap.Logger) *Fetcher {
	if runner == nil {
		runner = NewRunner()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		BatchSize:            DefaultBatchSize,
		MaxWorkers:           DefaultMaxWorkers,
		CompressionThreshold: DefaultCompressionThreshold,
		conn:                 conn,
		store:                store,
		runner:               runner,
		stats:                &Stats{},
		logger:               logger,
	}
}

// Connection returns the fetcher's connection descriptor.
func (f *Fetcher) Connection() Connection { return f.conn }

// Stats returns a snapshot of the fetcher's cumulative counters.
func (f *Fetcher) Stats() Snapshot { return f.stats.Snapshot() }

// Store returns the underlying cache store.
func (f *Fetcher) Store() *Store { return f.store }

// Probe tests connectivity and, on the first call, negotiates connection
// sharing and compression options with the remote. Options the remote
// rejects are simply not used.
func (f *Fetcher) Probe(ctx context.Context) bool {
	f.tuneOnce.Do(func() { f.tuneConnection(ctx) })
	_, err := f.run(ctx, probeTimeout, "echo ok")
	return err == nil
}

// ReadFile retrieves one remote file, serving repeat requests from the
// cache. The remote file is stat'ed first so that transfer strategy and
// cache metadata come for free.
func (f *Fetcher) ReadFile(ctx context.Context, path string) Result {
	if content, ok := f.store.Get(f.conn, path); ok {
		f.stats.hit()
		return okResult(content)
	}
	f.stats.miss()
	return f.fetchUncached(ctx, path)
}

// ReadBatch retrieves many remote files, preferring one combined tar
// transfer over per-file round trips. Every requested path is present in
// the returned map. Paths missing from a combined transfer are retried
// individually rather than silently reported as empty.
func (f *Fetcher) ReadBatch(ctx context.Context, paths []string) map[string]Result {
	results := make(map[string]Result, len(paths))
	var uncached []string

	for _, path := range paths {
		if _, seen := results[path]; seen {
			continue // duplicates are permitted but fetched once
		}
		if content, ok := f.store.Get(f.conn, path); ok {
			f.stats.hit()
			results[path] = okResult(content)
			continue
		}
		f.stats.miss()
		results[path] = Result{} // placeholder so duplicates are detected
		uncached = append(uncached, path)
	}

	switch {
	case len(uncached) == 0:
		return results

	case len(uncached) <= f.BatchSize:
		fetched := f.readBatchArchive(ctx, uncached)
		for path, res := range fetched {
			results[path] = res
		}
		// Anything the archive did not cover: path missing on the remote,
		// a truncated stream, or a failed transfer command. Fall back to
		// individual fetches so those causes stay distinguishable.
		for _, path := range uncached {
			if _, ok := fetched[path]; !ok {
				results[path] = f.fetchUncached(ctx, path)
			}
		}

	default:
		f.fetchParallel(ctx, uncached, results)
	}

	return results
}

// fetchUncached retrieves one file from the remote, bypassing the cache
// lookup (the caller has already accounted for the miss), and caches the
// content on success.
func (f *Fetcher) fetchUncached(ctx context.Context, path string) Result {
	start := time.Now()

	meta, statRes := f.statFile(ctx, path)
	if !statRes.OK() {
		return statRes
	}

	var res Result
	if meta.Size > f.CompressionThreshold {
		res = f.readCompressed(ctx, path)
		if !res.OK() {
			res = f.readPlain(ctx, path)
		}
	} else {
		res = f.readPlain(ctx, path)
	}
	if !res.OK() {
		return res
	}

	f.store.Put(f.conn, path, res.Content, meta)
	f.stats.addBytes(meta.Size)
	f.stats.addTime(time.Since(start))
	return res
}

// fetchParallel dispatches each path to fetchUncached across a bounded
// worker pool and merges results in completion order.
func (f *Fetcher) fetchParallel(ctx context.Context, paths []string, results map[string]Result) {
	type fetched struct {
		path string
		res  Result
	}

	workers := f.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan string, len(paths))
	out := make(chan fetched, len(paths))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				out <- fetched{path: path, res: f.fetchUncached(ctx, path)}
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	for item := range out {
		results[item.path] = item.res
	}
}

// statFile obtains size and mtime without transferring content.
func (f *Fetcher) statFile(ctx context.Context, path string) (Metadata, Result) {
	cmd := fmt.Sprintf("stat -c '%%s %%Y' %s 2>/dev/null", shellQuote(path))
	out, err := f.run(ctx, statTimeout, cmd)
	if err != nil {
		return Metadata{}, classifyFailure(err)
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		// stat with a silenced stderr exits 0 on some shells even when the
		// path is absent; an empty reply means the path was not there.
		if len(fields) == 0 {
			return Metadata{}, notFoundResult()
		}
		return Metadata{}, transportResult(fmt.Errorf("unexpected stat output %q for %s", string(out), path))
	}
	size, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Metadata{}, transportResult(fmt.Errorf("unexpected stat size %q for %s", fields[0], path))
	}
	return Metadata{Size: size, Mtime: fields[1]}, okResult("")
}

func (f *Fetcher) readPlain(ctx context.Context, path string) Result {
	out, err := f.run(ctx, readTimeout, "cat "+shellQuote(path))
	if err != nil {
		return classifyFailure(err)
	}
	return okResult(string(out))
}

// readCompressed transfers one file as a gzip'ed tar stream. Decode
// trouble is reported as a failure so the caller can fall back to the
// plain path.
func (f *Fetcher) readCompressed(ctx context.Context, path string) Result {
	cmd := fmt.Sprintf("tar czf - -C / %s", shellQuote(strings.TrimPrefix(path, "/")))
	out, err := f.run(ctx, readTimeout, cmd)
	if err != nil {
		return classifyFailure(err)
	}

	members, err := decodeArchive(out)
	if err != nil || len(members) == 0 {
		f.logger.Debug("Compressed transfer yielded no usable member",
			zap.String("path", path), zap.Error(err))
		return transportResult(fmt.Errorf("no usable archive member for %s", path))
	}
	return okResult(string(members[0].content))
}

// readBatchArchive transfers many files in one tar stream and caches each
// decoded member. Paths absent from the returned map were not covered by
// the archive.
func (f *Fetcher) readBatchArchive(ctx context.Context, paths []string) map[string]Result {
	results := make(map[string]Result, len(paths))

	quoted := make([]string, len(paths))
	byName := make(map[string]string, len(paths))
	for i, path := range paths {
		rel := strings.TrimPrefix(path, "/")
		quoted[i] = shellQuote(rel)
		byName[rel] = path
	}

	cmd := fmt.Sprintf("tar czf - -C / %s 2>/dev/null", strings.Join(quoted, " "))
	out, err := f.run(ctx, batchTimeout, cmd)
	if err != nil {
		f.logger.Debug("Batch transfer command failed",
			zap.Int("paths", len(paths)), zap.Error(err))
		return results
	}

	members, decErr := decodeArchive(out)
	if decErr != nil {
		f.logger.Debug("Batch archive only partially decoded", zap.Error(decErr))
	}
	for _, m := range members {
		path, wanted := byName[strings.TrimPrefix(m.name, "./")]
		if !wanted {
			continue
		}
		content := string(m.content)
		f.store.Put(f.conn, path, content, m.metadata())
		f.stats.addBytes(m.size)
		results[path] = okResult(content)
	}
	return results
}

// tuneConnection probes for ControlMaster connection sharing and transport
// compression, keeping whichever options the remote accepts.
func (f *Fetcher) tuneConnection(ctx context.Context) {
	control := []string{
		"-o", "ControlMaster=auto",
		"-o", "ControlPath=/tmp/ssh-%r@%h:%p",
		"-o", "ControlPersist=10m",
	}
	if f.probeWith(ctx, control) {
		f.extraOpts = append(f.extraOpts, control...)
		f.logger.Debug("Enabled ssh connection sharing")
	}

	compressed := append(append([]string(nil), f.extraOpts...), "-C")
	if f.probeWith(ctx, compressed) {
		f.extraOpts = append(f.extraOpts, "-C")
		f.logger.Debug("Enabled ssh transport compression")
	}
}

func (f *Fetcher) probeWith(ctx context.Context, extra []string) bool {
	name, args := f.sshCommand("echo ok", extra)
	_, err := f.runner.Run(ctx, probeTimeout, "", name, args...)
	return err == nil
}

func (f *Fetcher) run(ctx context.Context, timeout time.Duration, remoteCmd string) ([]byte, error) {
	name, args := f.sshCommand(remoteCmd, f.extraOpts)
	return f.runner.Run(ctx, timeout, "", name, args...)
}

// sshCommand renders the full argv for one remote command, inserting extra
// options before the target.
func (f *Fetcher) sshCommand(remoteCmd string, extra []string) (string, []string) {
	base := f.conn.Args()
	name, target := base[0], base[len(base)-1]

	args := append([]string(nil), base[1:len(base)-1]...)
	args = append(args, extra...)
	args = append(args, target, remoteCmd)
	return name, args
}

// shellQuote wraps s in single quotes for the remote shell, escaping any
// embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

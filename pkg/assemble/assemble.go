// Package assemble builds the final text blob pasted into a chat assistant:
// instruction snippets, directory trees and the contents of the selected
// files.
package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jherbrandson/gpt-helper/pkg/blacklist"
	"github.com/jherbrandson/gpt-helper/pkg/config"
	"github.com/jherbrandson/gpt-helper/pkg/remote"

	"go.uber.org/zap"
)

// Instruction file names looked up in the instructions directory.
const (
	BackgroundFile  = "background.txt"
	RulesFile       = "rules.txt"
	CurrentGoalFile = "current_goal.txt"
)

const localReadWorkers = 4

// Builder assembles the output text for one configuration. The fetcher is
// nil for purely local configurations.
type Builder struct {
	cfg     *config.Config
	fetcher *remote.Fetcher
	logger  *zap.Logger
}

// New creates a Builder. fetcher may be nil when no directory is remote.
func New(cfg *config.Config, fetcher *remote.Fetcher, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{cfg: cfg, fetcher: fetcher, logger: logger}
}

// Step1 builds the setup block: background, directory tree(s), rules,
// current goal, plus any configured project output files.
func (b *Builder) Step1(ctx context.Context) (string, error) {
	background := b.readInstruction(BackgroundFile)
	rules := b.readInstruction(RulesFile)
	currentGoal := b.readInstruction(CurrentGoalFile)

	treeText, err := b.treeText(ctx)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, part := range []string{background, treeText, rules, currentGoal} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimRight(part, "\n"))
		}
	}
	text := strings.Join(parts, "\n\n") + "\n\n"

	if extras := b.outputFileText(ctx); extras != "" {
		text += "Project Output Files:\n\n" + extras + "\n"
	}
	return text, nil
}

// Step2 concatenates the contents of every segment's selected files.
// Files within a segment are separated by one blank line, segments by two.
func (b *Builder) Step2(ctx context.Context) (string, error) {
	var blobs []string
	for _, seg := range b.cfg.Directories {
		if len(seg.OutputFiles) == 0 {
			continue
		}
		b.logger.Info("Collecting segment files",
			zap.String("segment", seg.Name),
			zap.Int("files", len(seg.OutputFiles)))

		texts, err := b.segmentTexts(ctx, seg)
		if err != nil {
			return "", err
		}
		if len(texts) > 0 {
			blobs = append(blobs, strings.Join(texts, "\n\n"))
		}
	}
	return strings.Join(blobs, "\n\n\n"), nil
}

// Build assembles the full output: Step1 followed by Step2.
func (b *Builder) Build(ctx context.Context) (string, error) {
	step1, err := b.Step1(ctx)
	if err != nil {
		return "", err
	}
	step2, err := b.Step2(ctx)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, part := range []string{step1, step2} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	text := strings.Join(parts, "\n\n")
	b.logger.Info("Assembled output", zap.Int("lines", strings.Count(text, "\n")+1))
	return text, nil
}

func (b *Builder) segmentTexts(ctx context.Context, seg config.Segment) ([]string, error) {
	var texts []string

	if seg.Remote {
		if b.fetcher == nil {
			return nil, fmt.Errorf("segment %s is remote but no ssh command is configured", seg.Name)
		}
		results := b.fetcher.ReadBatch(ctx, seg.OutputFiles)
		for _, path := range seg.OutputFiles {
			res := results[path]
			if res.State == remote.StateTransportError {
				b.logger.Warn("Failed to fetch remote file",
					zap.String("file", path), zap.Error(res.Err))
			}
			if content := strings.TrimRight(res.Text(), "\n\t "); content != "" {
				texts = append(texts, content)
			}
		}
		stats := b.fetcher.Stats()
		b.logger.Info("Remote read complete",
			zap.String("segment", seg.Name),
			zap.Float64("hitRate", stats.HitRate()))
		return texts, nil
	}

	contents := readLocalFiles(seg.OutputFiles, localReadWorkers, b.logger)
	for _, path := range seg.OutputFiles {
		if content := strings.TrimRight(contents[path], "\n\t "); content != "" {
			texts = append(texts, content)
		}
	}
	return texts, nil
}

// treeText renders the directory tree section: one tree for single-root
// configurations, one labeled tree per segment otherwise.
func (b *Builder) treeText(ctx context.Context) (string, error) {
	if b.cfg.HasSingleRoot {
		lines, err := b.SegmentTree(ctx, b.cfg.Directories[0])
		if err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	}

	var chunks []string
	for _, seg := range b.cfg.Directories {
		chunks = append(chunks, fmt.Sprintf("Segment: %s => %s", seg.Name, seg.Directory))
		lines, err := b.SegmentTree(ctx, seg)
		if err != nil {
			return "", err
		}
		chunks = append(chunks, lines...)
		chunks = append(chunks, "")
	}
	return strings.Join(chunks, "\n"), nil
}

// SegmentTree renders the blacklist-filtered tree lines for one segment.
func (b *Builder) SegmentTree(ctx context.Context, seg config.Segment) ([]string, error) {
	bl := blacklist.New(b.cfg.BlacklistFor(seg.Directory), b.logger)

	if seg.Remote {
		if b.fetcher == nil {
			return nil, fmt.Errorf("segment %s is remote but no ssh command is configured", seg.Name)
		}
		entries, err := b.fetcher.Tree(ctx, seg.Directory)
		if err != nil {
			return nil, err
		}
		return RemoteTree(seg.Directory, entries, bl), nil
	}
	return LocalTree(seg.Directory, bl, b.logger)
}

// outputFileText concatenates the configured project output files
// (.env, docker-compose.yml and friends), skipping unreadable ones.
func (b *Builder) outputFileText(ctx context.Context) string {
	var extras []string
	for _, path := range b.cfg.ProjectOutputFiles {
		var content string
		if b.cfg.SystemType == "remote" && b.fetcher != nil {
			content = b.fetcher.ReadFile(ctx, path).Text()
		} else {
			data, err := os.ReadFile(path)
			if err != nil {
				b.logger.Warn("Failed to read project output file",
					zap.String("file", path), zap.Error(err))
				continue
			}
			content = string(data)
		}
		if content = strings.TrimRight(content, "\n\t "); content != "" {
			extras = append(extras, content)
		}
	}
	return strings.Join(extras, "\n\n")
}

func (b *Builder) readInstruction(name string) string {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.cfg.InstructionsDir, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		b.logger.Debug("Instruction file not readable", zap.String("file", path), zap.Error(err))
		return ""
	}
	return string(data)
}

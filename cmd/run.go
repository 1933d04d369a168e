package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jherbrandson/gpt-helper/pkg/assemble"
	"github.com/jherbrandson/gpt-helper/pkg/editor"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	step1Only  bool
	outputPath string
	noEditor   bool
	prefetch   bool
)

func init() {
	RootCmd.Flags().BoolVar(&step1Only, "step1", false, "Stop after the setup block (trees and instructions)")
	RootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the assembled text to a file instead of opening an editor")
	RootCmd.Flags().BoolVar(&noEditor, "no-editor", false, "Print the assembled text to stdout")
	RootCmd.Flags().BoolVar(&prefetch, "prefetch", false, "Warm the remote cache with each remote directory's files first")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if fetcher != nil {
		if !fetcher.Probe(ctx) {
			logger.Warn("Remote host not reachable, remote reads will fail",
				zap.String("host", fetcher.Connection().Host))
		} else if prefetch {
			for _, seg := range cfg.Directories {
				if seg.Remote {
					fetcher.Prefetch(ctx, seg.Directory, 100)
				}
			}
		}
	}

	builder := assemble.New(cfg, fetcher, logger)

	var text string
	if step1Only {
		text, err = builder.Step1(ctx)
	} else {
		text, err = builder.Build(ctx)
	}
	if err != nil {
		return err
	}

	// Entries fetched more than a week ago are unlikely to still match the
	// remote; drop them so the next run refetches.
	if fetcher != nil {
		fetcher.Store().Clear(7 * 24 * time.Hour)
	}

	switch {
	case outputPath != "":
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("Wrote assembled text", zap.String("file", outputPath))
	case noEditor:
		fmt.Print(text)
	default:
		if err := editor.OpenTemp(text, logger); err != nil {
			return err
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"time"

	"github.com/jherbrandson/gpt-helper/pkg/config"
	"github.com/jherbrandson/gpt-helper/pkg/logging"
	"github.com/jherbrandson/gpt-helper/pkg/remote"
	"github.com/jherbrandson/gpt-helper/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger

	cfgFile string
	debug   bool
)

// RootCmd is the base command. Invoked without a subcommand it assembles
// the full output text, matching the tool's historical default behavior.
var RootCmd = &cobra.Command{
	Use:   "gpthelper",
	Short: "gpt-helper assembles project context for chat assistants",
	Long: `gpt-helper concatenates instruction snippets, directory trees and
selected file contents (local or SSH-reachable) into a single text block
ready to paste into a chat-based coding assistant.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			if err := logging.Setup(true, "gpt-helper", version.Get().Version); err != nil {
				return err
			}
			logger = logging.Logger
		}
		return nil
	},
	RunE: runAssemble,
}

// Execute adds all child commands to the root command and runs it.
func Execute(l *zap.Logger) error {
	logger = l
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to gpt_helper_config.json")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// loadConfig reads the configuration selected by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("no usable configuration (run 'gpthelper config init' first): %w", err)
	}
	return cfg, nil
}

// buildFetcher constructs the remote fetcher for a configuration, or nil
// when no directory is remote.
func buildFetcher(cfg *config.Config) (*remote.Fetcher, error) {
	if !cfg.RemoteSegments() && cfg.SystemType != "remote" {
		return nil, nil
	}
	if cfg.SSHCommand == "" {
		return nil, fmt.Errorf("configuration has remote directories but no ssh_command")
	}

	conn, err := remote.ParseCommand(cfg.SSHCommand)
	if err != nil {
		return nil, fmt.Errorf("invalid ssh_command: %w", err)
	}

	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	store, err := remote.NewStore(cfg.CacheDir, ttl, logger)
	if err != nil {
		return nil, err
	}
	return remote.NewFetcher(conn, store, nil, logger), nil
}

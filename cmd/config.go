package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jherbrandson/gpt-helper/pkg/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the project configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration for the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultFileName
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg := &config.Config{
			ProjectRoot:     wd,
			HasSingleRoot:   true,
			SystemType:      "local",
			InstructionsDir: config.DefaultInstructionsDir,
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.InstructionsDir, 0o755); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	RootCmd.AddCommand(configCmd)
}

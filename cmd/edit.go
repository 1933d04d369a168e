package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jherbrandson/gpt-helper/pkg/assemble"
	"github.com/jherbrandson/gpt-helper/pkg/editor"

	"github.com/spf13/cobra"
)

// Files the edit command may touch: instruction snippets live in the
// instructions directory, the rest in the project root.
var (
	instructionFiles = map[string]bool{
		assemble.BackgroundFile:  true,
		assemble.RulesFile:       true,
		assemble.CurrentGoalFile: true,
	}
	editableProjectFiles = map[string]bool{
		".env":               true,
		"docker-compose.yml": true,
		"nginx.conf":         true,
	}
	editOrder = []string{
		assemble.BackgroundFile, assemble.RulesFile, assemble.CurrentGoalFile,
		".env", "docker-compose.yml", "nginx.conf",
	}
)

var editCmd = &cobra.Command{
	Use:   "edit <file>... | all",
	Short: "Edit instruction or project files",
	Long: `Edit opens instruction snippets (background.txt, rules.txt,
current_goal.txt) or whitelisted project files in the local editor.
Pass "all" to cycle through every editable file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		targets := args
		for _, arg := range args {
			if strings.EqualFold(arg, "all") {
				targets = editOrder
				break
			}
		}

		for _, name := range targets {
			if !instructionFiles[name] && !editableProjectFiles[name] {
				return fmt.Errorf("edit accepts only: %s, or 'all'", strings.Join(editableNames(), ", "))
			}
		}

		for _, name := range targets {
			path := filepath.Join(cfg.ProjectRoot, name)
			if instructionFiles[name] {
				path = filepath.Join(cfg.InstructionsDir, name)
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("%s not found at %s", name, path)
			}
			fmt.Printf("Editing %s ...\n", name)
			if err := editor.Open(path); err != nil {
				return err
			}
		}
		return nil
	},
}

func editableNames() []string {
	names := make([]string, 0, len(instructionFiles)+len(editableProjectFiles))
	for name := range instructionFiles {
		names = append(names, name)
	}
	for name := range editableProjectFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RootCmd.AddCommand(editCmd)
}

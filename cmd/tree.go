package cmd

import (
	"fmt"

	"github.com/jherbrandson/gpt-helper/pkg/assemble"

	"github.com/spf13/cobra"
)

// treeCmd prints the blacklist-filtered directory tree(s) without the rest
// of the assembled output.
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the filtered directory tree for each configured directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fetcher, err := buildFetcher(cfg)
		if err != nil {
			return err
		}

		builder := assemble.New(cfg, fetcher, logger)
		for i, seg := range cfg.Directories {
			if len(cfg.Directories) > 1 {
				fmt.Printf("Segment: %s => %s\n", seg.Name, seg.Directory)
			}
			lines, err := builder.SegmentTree(cmd.Context(), seg)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Println(line)
			}
			if i < len(cfg.Directories)-1 {
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(treeCmd)
}

package main

import (
	"fmt"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/search"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List FSM instances found in the indexed logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := openIndex(cfg, root)
			if err != nil {
				return err
			}
			defer db.Close()

			targets, err := search.Targets(db)
			if err != nil {
				return err
			}
			for _, t := range targets {
				fmt.Printf("%s\t%s\t%d\t%s\n", t.LogPath, t.TargetID, t.Transitions, t.LastTS)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory to index first (default from config)")

	return cmd
}

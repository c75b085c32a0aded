package main

import (
	"fmt"
	"path/filepath"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/Zuo-Peng/logexpect/internal/render"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var line, context int
	var query string

	cmd := &cobra.Command{
		Use:   "preview <log> <target>",
		Short: "Show the indexed transition timeline of one FSM instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			out, _, err := render.RenderTimeline(db, logPath, args[1], render.Options{
				HitLine: line,
				Context: context,
				Query:   query,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "Log line of the transition to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Transitions before/after the highlighted one")
	cmd.Flags().StringVar(&query, "query", "", "Terms to highlight")

	return cmd
}

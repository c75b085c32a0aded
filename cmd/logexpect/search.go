package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/search"
	"github.com/Zuo-Peng/logexpect/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	sColorReset = "\033[0m"
	sColorBlue  = "\033[1;34m"
	sColorGreen = "\033[1;32m"
	sColorDim   = "\033[2m"
)

func searchCmd() *cobra.Command {
	var opts search.Options
	var root string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search indexed FSM transitions",
		Long: `Search transitions in the index. Output is TSV when stdout is not a terminal:
  log, line, timestamp, target, from-state, event, to-state`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				opts.Query = args[0]
			}

			db, err := openIndex(cfg, root)
			if err != nil {
				return err
			}
			defer db.Close()

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, opts)
			}

			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No transitions found.")
				return nil
			}

			for _, r := range results {
				// first two fields stay plain so they can be passed to `open`
				fmt.Printf("%s\t%d\t%s%s%s\t%s%s%s\t%s\t%s%s%s\t%s\n",
					r.LogPath,
					r.LineNumber,
					sColorDim, r.Ts, sColorReset,
					sColorBlue, r.TargetID, sColorReset,
					r.FromState,
					sColorGreen, r.Event, sColorReset,
					r.ToState,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "Filter by target id (system-interface)")
	cmd.Flags().StringVar(&opts.Event, "event", "", "Filter by event")
	cmd.Flags().StringVar(&opts.State, "state", "", "Filter by from- or to-state")
	cmd.Flags().StringVar(&opts.Log, "log", "", "Filter by log file")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only transitions at or after this time (YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "Max results")
	cmd.Flags().StringVar(&root, "root", "", "Directory to index first (default from config)")

	return cmd
}

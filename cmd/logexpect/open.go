package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/Zuo-Peng/logexpect/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:   "open <log>",
		Short: "Open a node log in $EDITOR at a line",
		Args:  cobra.ExactArgs(1),
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

			err = open.OpenRecord(db, logPath, line)
			if errors.Is(err, open.ErrNotIndexed) {
				return open.OpenLog(logPath, line)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&line, "line", 1, "Line to jump to")

	return cmd
}

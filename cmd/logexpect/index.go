package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/Zuo-Peng/logexpect/internal/parse"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func openIndex(cfg *config.Config, root string) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if root == "" {
		root = cfg.LogRoot
	}
	// the index is keyed by absolute path so preview and open work from any cwd
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if _, err := index.IndexAll(db, afero.NewOsFs(), root, parse.RiftExtractor{}, slog.Default(), cfg.TraceFile()); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: %w", err)
	}
	return db, nil
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [dir]",
		Short: "Index the FSM records of every *.log file under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			root := cfg.LogRoot
			if len(args) == 1 {
				root = args[0]
			}
			if abs, err := filepath.Abs(root); err == nil {
				root = abs
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning %s...\n", root)

			stats, err := index.IndexAll(db, afero.NewOsFs(), root, parse.RiftExtractor{}, slog.Default(), cfg.TraceFile())
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}

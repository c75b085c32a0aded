package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/Zuo-Peng/logexpect/internal/scan"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify log root, trace location, DB, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Paths ===")
			checkDir("Log root", cfg.LogRoot)
			if cfg.ResultsDir != "" {
				checkDir("Results", cfg.ResultsDir)
			}
			fmt.Printf("  Trace: %s\n", cfg.TraceFile())

			fmt.Println("\n=== Log Scan ===")
			files, err := scan.ScanRoot(afero.NewOsFs(), cfg.LogRoot, cfg.TraceFile())
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Log files: %d\n", len(files))
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'logexpect index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			logCount, err := db.LogCount()
			if err != nil {
				return fmt.Errorf("count logs: %w", err)
			}
			transitionCount, err := db.TransitionCount()
			if err != nil {
				return fmt.Errorf("count transitions: %w", err)
			}

			fmt.Printf("  Logs:        %d\n", logCount)
			fmt.Printf("  Transitions: %d\n", transitionCount)

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}

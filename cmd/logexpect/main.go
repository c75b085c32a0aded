package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "logexpect",
		Short:         "Check FSM transitions recorded in RIFT node logs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug/info/warn/error), overrides config")

	rootCmd.AddCommand(expectCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(nextCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(flagLevel string) error {
	level := flagLevel
	if level == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		level = cfg.LogLevel
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

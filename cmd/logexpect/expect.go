package main

import (
	"errors"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/scenario"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func expectCmd() *cobra.Command {
	var logPath, tracePath string

	cmd := &cobra.Command{
		Use:   "expect <scenario.yaml>",
		Short: "Check that a node log contains the transitions listed in a scenario file",
		Long: `Runs the ordered steps of a YAML scenario against a node log. The first
step that does not match stops the run; the trace file records every
transition that was looked at.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sc, err := scenario.Load(afero.NewOsFs(), args[0])
			if err != nil {
				return err
			}
			if logPath != "" {
				sc.Log = logPath
			}
			if sc.Log == "" {
				return errors.New("no log file: set `log` in the scenario or pass --log")
			}
			if sc.Name == "" {
				sc.Name = args[0]
			}

			return runScenario(newSession(cfg, sc.Log, tracePath), sc)
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "Node log file (overrides the scenario)")
	cmd.Flags().StringVar(&tracePath, "trace", "", "Trace file (default from config)")

	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/scenario"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var system, iface, tracePath string

	cmd := &cobra.Command{
		Use:   "check <scenario> <log>",
		Short: "Run a built-in scenario against a node log",
		Long:  fmt.Sprintf("Built-in scenarios: %s", strings.Join(scenario.BuiltinNames(), ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sc, err := scenario.Builtin(args[0], system, iface)
			if err != nil {
				return err
			}
			return runScenario(newSession(cfg, args[1], tracePath), sc)
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "System id of the node")
	cmd.Flags().StringVar(&iface, "interface", "", "Interface name")
	cmd.Flags().StringVar(&tracePath, "trace", "", "Trace file (default from config)")
	cmd.MarkFlagRequired("system")
	cmd.MarkFlagRequired("interface")

	return cmd
}

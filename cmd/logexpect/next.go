package main

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/spf13/cobra"
)

func nextCmd() *cobra.Command {
	var count int
	var tracePath string

	cmd := &cobra.Command{
		Use:   "next <log> <target>",
		Short: "Print the first transitions of one FSM instance in a node log",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sess := newSession(cfg, args[0], tracePath)
			if err := sess.Open(); err != nil {
				return err
			}
			defer func() {
				if cerr := sess.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			for i := 0; count <= 0 || i < count; i++ {
				rec, err := sess.NextRecordFor(args[1])
				if err != nil {
					return err
				}
				if rec == nil {
					break
				}
				fmt.Printf("%d\t%d\t%s\t%s\t%s\t%s\t[%s]\n",
					rec.LineNumber,
					rec.SequenceNr,
					rec.Timestamp.Format("15:04:05.000000"),
					rec.FromState,
					rec.Event,
					rec.ToState,
					strings.Join(rec.ActionsAndPushedEvents, ", "),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Stop after N transitions (0 = all)")
	cmd.Flags().StringVar(&tracePath, "trace", "", "Trace file (default from config)")

	return cmd
}

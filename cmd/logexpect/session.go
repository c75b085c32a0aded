package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/logexpect/internal/config"
	"github.com/Zuo-Peng/logexpect/internal/expect"
	"github.com/Zuo-Peng/logexpect/internal/parse"
	"github.com/Zuo-Peng/logexpect/internal/scenario"
	"github.com/spf13/afero"
)

func newSession(cfg *config.Config, logPath, tracePath string) *expect.Session {
	if tracePath == "" {
		tracePath = cfg.TraceFile()
	}
	return expect.New(expect.Config{
		Fs:          afero.NewOsFs(),
		LogPath:     logPath,
		TracePath:   tracePath,
		Extractor:   parse.RiftExtractor{},
		Logger:      slog.Default(),
		MaxLineSize: cfg.MaxLineSize,
	})
}

// runScenario runs sc and prints one line per matched step.
func runScenario(sess *expect.Session, sc *scenario.Scenario) error {
	res, err := scenario.Run(sess, sc)
	for i, rec := range res.Matched {
		fmt.Printf("ok   %d  line %-6d %s  %s --%s--> %s\n",
			i+1, rec.LineNumber, rec.TargetID, rec.FromState, rec.Event, rec.ToState)
	}
	if err != nil {
		if res.FailedStep > 0 {
			fmt.Fprintf(os.Stderr, "FAIL %s at step %d (see %s for details)\n", sc.Name, res.FailedStep, sess.TracePath())
		} else {
			fmt.Fprintf(os.Stderr, "FAIL %s (see %s for details)\n", sc.Name, sess.TracePath())
		}
		return err
	}
	fmt.Printf("PASS %s (%d transitions)\n", sc.Name, len(res.Matched))
	return nil
}

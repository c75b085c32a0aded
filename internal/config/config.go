package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Zuo-Peng/logexpect/internal/expect"
	"github.com/spf13/afero"
)

// ResultsDirEnv places the trace file in a test-results directory.
const ResultsDirEnv = "LOGEXPECT_RESULTS_DIR"

type Config struct {
	LogRoot     string `toml:"log_root"`
	DBPath      string `toml:"db_path"`
	TracePath   string `toml:"trace_path"`
	ResultsDir  string `toml:"results_dir"`
	LogLevel    string `toml:"log_level"`
	MaxLineSize int    `toml:"max_line_size"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cfgPath := filepath.Join(home, ".config", "logexpect", "config.toml")
	return LoadFile(afero.NewOsFs(), cfgPath, home)
}

// LoadFile applies the toml file at cfgPath (if present) over the defaults.
func LoadFile(fs afero.Fs, cfgPath, home string) (*Config, error) {
	cfg := &Config{
		LogRoot:     ".",
		DBPath:      filepath.Join(home, ".config", "logexpect", "logexpect.db"),
		TracePath:   expect.DefaultTracePath,
		LogLevel:    "info",
		MaxLineSize: 10 * 1024 * 1024,
	}

	if data, err := afero.ReadFile(fs, cfgPath); err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
	}

	if dir := os.Getenv(ResultsDirEnv); dir != "" {
		cfg.ResultsDir = dir
	}

	// expand ~ in paths
	cfg.LogRoot = expandHome(cfg.LogRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.TracePath = expandHome(cfg.TracePath, home)
	cfg.ResultsDir = expandHome(cfg.ResultsDir, home)

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TraceFile is where sessions write their trace.
func (c *Config) TraceFile() string {
	if c.ResultsDir == "" || filepath.IsAbs(c.TracePath) {
		return c.TracePath
	}
	return filepath.Join(c.ResultsDir, c.TracePath)
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

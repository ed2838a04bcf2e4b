package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Command selects what App.Run does.
type Command string

const (
	// CommandRun executes a sweep.
	CommandRun Command = "run"
	// CommandDecode re-decodes one captured solver output.
	CommandDecode Command = "decode"
	// CommandCompare rebuilds the cross-combination comparison table.
	CommandCompare Command = "compare"
)

// Config holds everything parsed from the command line. Zero values mean
// "not given"; the sweep file (ConfigPaths) fills them in, then defaults.
type Config struct {
	Command     Command
	ConfigPaths []string

	Solver     string
	Timeout    time.Duration
	Corpus     string
	Extension  string
	OutputRoot string
	Workers    int
	LaunchRate float64
	// Params are "name=candidates" overrides, e.g. "retries={1,3}".
	Params []string

	Snapshots     bool
	LiveURL       string
	LiveNamespace string
	LedgerPath    string
	Strict        bool

	// Instance and Capture select the files of CommandDecode; DecodeOut
	// defaults to the capture's directory.
	Instance  string
	Capture   string
	DecodeOut string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandRun:
	case CommandDecode:
		if cfg.Instance == "" || cfg.Capture == "" {
			return nil, errors.New("decode needs both --instance and --capture")
		}
	case CommandCompare:
		if cfg.OutputRoot == "" {
			return nil, errors.New("compare needs --output")
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if cfg.Workers < 0 || cfg.LaunchRate < 0 || cfg.Timeout < 0 || cfg.HealthcheckPort < 0 {
		return nil, errors.New("workers, launch-rate, timeout and healthcheck-port must not be negative")
	}
	for _, p := range cfg.Params {
		if _, _, err := splitParam(p); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// splitParam splits a "name=candidates" override.
func splitParam(p string) (name, spec string, err error) {
	name, spec, ok := strings.Cut(p, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid --param %q: want name=candidates", p)
	}
	return name, spec, nil
}

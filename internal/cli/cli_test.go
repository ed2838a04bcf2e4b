package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/specialistvlad/vrpbench/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Run(t *testing.T) {
	// --- Arrange ---
	args := []string{
		"run", "sweep.hcl", "extra.yaml",
		"--solver", "./bin/method-4",
		"--corpus", "inputs",
		"-o", "results",
		"-p", "retries={1,3}",
		"--param", "mode=fast",
		"--timeout", "90s",
		"-w", "4",
		"--launch-rate", "2.5",
		"--snapshots",
		"--ledger", "runs.db",
		"--strict",
		"--log-level", "DEBUG",
		"--log-format", "json",
	}

	// --- Act ---
	cfg, shouldExit, err := Parse(args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, &app.Config{
		Command:     app.CommandRun,
		ConfigPaths: []string{"sweep.hcl", "extra.yaml"},
		Solver:      "./bin/method-4",
		Corpus:      "inputs",
		OutputRoot:  "results",
		Params:      []string{"retries={1,3}", "mode=fast"},
		Timeout:     90 * time.Second,
		Workers:     4,
		LaunchRate:  2.5,
		Snapshots:   true,
		LedgerPath:  "runs.db",
		Strict:      true,
		LogLevel:    "debug",
		LogFormat:   "json",
	}, cfg)
}

func TestParse_Decode(t *testing.T) {
	cfg, _, err := Parse([]string{"decode", "--instance", "x.vrp", "--capture", "x.exe_sol", "--out", "d"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, app.CommandDecode, cfg.Command)
	assert.Equal(t, "x.vrp", cfg.Instance)
	assert.Equal(t, "x.exe_sol", cfg.Capture)
	assert.Equal(t, "d", cfg.DecodeOut)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_Compare(t *testing.T) {
	cfg, _, err := Parse([]string{"compare", "--output", "results"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, app.CommandCompare, cfg.Command)
	assert.Equal(t, "results", cfg.OutputRoot)
}

func TestParse_HelpExitsCleanly(t *testing.T) {
	for _, args := range [][]string{nil, {"-h"}, {"run", "--help"}} {
		t.Run(fmt.Sprint(args), func(t *testing.T) {
			out := &bytes.Buffer{}

			cfg, shouldExit, err := Parse(args, out)

			require.NoError(t, err)
			assert.True(t, shouldExit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"run", "--bogus"}, want: "unknown flag: --bogus"},
		{name: "unknown command", args: []string{"bench"}, want: "unknown command"},
		{name: "decode flags required", args: []string{"decode"}, want: "required flag(s)"},
		{name: "compare takes no args", args: []string{"compare", "-o", "r", "extra"}, want: "unknown command"},
		{name: "invalid log level", args: []string{"run", "--log-level", "loud"}, want: "invalid log-level"},
		{name: "invalid param", args: []string{"run", "-p", "retries"}, want: "--param"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, ExitUsage, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}

func TestIsStrictFailure(t *testing.T) {
	assert.True(t, IsStrictFailure(fmt.Errorf("%w: 2 failures", app.ErrWorkItemsFailed)))
	assert.False(t, IsStrictFailure(errors.New("other")))
}

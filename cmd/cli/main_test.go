package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/vrpbench/internal/cli"
	"github.com/specialistvlad/vrpbench/internal/testutil"
	"github.com/stretchr/testify/require"
)

var solverExe string

func TestMain(m *testing.M) {
	solverExe = testutil.RunFakeSolverIfRequested()
	os.Exit(m.Run())
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A sweep file with a syntax error makes app.NewApp panic while loading.
	invalidHCL := `
		solver {
			executable = "./solver"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "sweep.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	// --- Act ---
	runErr := run(context.Background(), &bytes.Buffer{}, []string{"run", filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"run", "--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_StrictFailureExitCode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	corpus := testutil.Corpus(t, map[string][]string{"crash.vrp": {testutil.MarkFail}})
	args := []string{"run", "--solver", solverExe, "--corpus", corpus, "--output", t.TempDir(), "--strict"}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	require.Equal(t, cli.ExitStrict, exitErr.Code)
}

func TestRun_Sweep(t *testing.T) {
	t.Parallel()

	corpus := testutil.Corpus(t, map[string][]string{"a.vrp": nil})
	output := t.TempDir()

	err := run(context.Background(), &bytes.Buffer{}, []string{"run", "--solver", solverExe, "--corpus", corpus, "--output", output, "-p", "retries=2"})

	require.NoError(t, err)
	require.FileExists(t, filepath.Join(output, "retries-2", "accumulated_results.csv"))
}

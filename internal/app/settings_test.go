package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/vrpbench/internal/config"
	"github.com/specialistvlad/vrpbench/internal/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FlagsOverrideModel(t *testing.T) {
	// --- Arrange ---
	model := &config.Model{
		Solver:   config.Solver{Executable: "/opt/solver", Timeout: time.Minute},
		Corpus:   config.Corpus{Root: "/data/in"},
		Output:   config.Output{Root: "/data/out"},
		Dispatch: config.Dispatch{Workers: 2},
		Params:   []*config.Param{{Name: "mode", Spec: "{fast,slow}"}},
	}
	cfg := &Config{Solver: "/opt/other", Workers: 8, Timeout: time.Second, Params: []string{"retries=1"}}

	// --- Act ---
	s, err := resolve(model, cfg)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "/opt/other", s.Executable)
	assert.Equal(t, "/data/in", s.Corpus)
	assert.Equal(t, 8, s.Workers)
	assert.Equal(t, time.Second, s.Timeout)
	assert.Equal(t, DefaultExtension, s.Extension)
	assert.Equal(t, "/", s.LiveNamespace)
	assert.Equal(t, []sweep.Parameter{
		{Name: "mode", Candidates: []string{"fast", "slow"}},
		{Name: "retries", Candidates: []string{"1"}},
	}, s.Sweep.Parameters())
}

func TestResolve_RelativePathsBecomeAbsolute(t *testing.T) {
	s, err := resolve(&config.Model{}, &Config{Solver: "bin/solver", Corpus: "in", OutputRoot: "out"})

	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "bin", "solver"), s.Executable)
	assert.Equal(t, 1, s.Workers)
}

func TestBuildSweep(t *testing.T) {
	params := []*config.Param{
		{Name: "retries", Values: []string{"1", "3"}},
		{Name: "mode", Values: []string{"a"}, Spec: "{b}"},
		{Name: "flag"},
	}

	sw, err := buildSweep(params, []string{"mode={x,y}", "extra=1", "mode=z"})

	require.NoError(t, err)
	assert.Equal(t, []sweep.Parameter{
		{Name: "retries", Candidates: []string{"1", "3"}},
		{Name: "mode", Candidates: []string{"x", "y", "z"}},
		{Name: "flag", Candidates: []string{""}},
		{Name: "extra", Candidates: []string{"1"}},
	}, sw.Parameters())
}

func TestSettingsCheck(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "solver")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))

	t.Run("creates output root", func(t *testing.T) {
		s := &settings{Executable: exe, OutputRoot: filepath.Join(dir, "a", "b")}
		require.NoError(t, s.check())
		assert.DirExists(t, s.OutputRoot)
		entries, err := os.ReadDir(s.OutputRoot)
		require.NoError(t, err)
		assert.Empty(t, entries, "write probe is removed")
	})

	t.Run("directory is not a solver", func(t *testing.T) {
		s := &settings{Executable: dir, OutputRoot: filepath.Join(dir, "out")}
		assert.Error(t, s.check())
	})

	t.Run("output root under a file", func(t *testing.T) {
		s := &settings{Executable: exe, OutputRoot: filepath.Join(exe, "out")}
		assert.Error(t, s.check())
	})
}

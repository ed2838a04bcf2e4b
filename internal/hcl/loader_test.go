package hcl

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/vrpbench/internal/config"
	"github.com/specialistvlad/vrpbench/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sweepFile = `
solver {
  executable = "./bin/method-4"
  timeout    = "10m"
}
corpus {
  root      = "inputs"
  extension = ".vrp"
}
output { root = "results" }
dispatch {
  workers     = 4
  launch_rate = 2.5
}
render {
  snapshots = true
  live_url  = "http://localhost:3000"
}
ledger { path = "runs.db" }
param "retries" { values = [1, 3] }
param "mode"    { spec = "{fast,slow}" }
param "ratio"   { values = [0.5, true, "x"] }
param "empty" {}
`

func TestLoader_Load(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"sweep.hcl": sweepFile})

	// --- Act ---
	model, err := NewLoader().Load(testutil.Context(nil), filepath.Join(dir, "sweep.hcl"))

	// --- Assert ---
	require.NoError(t, err)
	want := &config.Model{
		Solver:   config.Solver{Executable: "./bin/method-4", Timeout: 10 * time.Minute},
		Corpus:   config.Corpus{Root: "inputs", Extension: ".vrp"},
		Output:   config.Output{Root: "results"},
		Dispatch: config.Dispatch{Workers: 4, LaunchRate: 2.5},
		Render:   config.Render{Snapshots: true, LiveURL: "http://localhost:3000"},
		Ledger:   config.Ledger{Path: "runs.db"},
		Params: []*config.Param{
			{Name: "retries", Values: []string{"1", "3"}},
			{Name: "mode", Spec: "{fast,slow}"},
			{Name: "ratio", Values: []string{"0.5", "true", "x"}},
			{Name: "empty"},
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_DirectoryMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.hcl":     "solver {\n executable = \"./a\"\n timeout = 30\n}\nparam \"retries\" { values = [1] }\n",
		"b.hcl":     "solver { executable = \"./b\" }\nparam \"retries\" { values = [2] }\n",
		"notes.txt": "not hcl",
		"sub/c.hcl": "output { root = \"out\" }\n",
	})

	model, err := NewLoader().Load(testutil.Context(nil), dir)

	require.NoError(t, err)
	assert.Equal(t, "./b", model.Solver.Executable)
	assert.Equal(t, 30*time.Second, model.Solver.Timeout)
	assert.Equal(t, "out", model.Output.Root)
	require.Len(t, model.Params, 1)
	assert.Equal(t, []string{"1", "2"}, model.Params[0].Values)
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "solver {"},
		{name: "unknown block", content: "bogus {}"},
		{name: "unknown attribute", content: "solver { path = \"x\" }"},
		{name: "bad duration", content: "solver { timeout = \"soon\" }"},
		{name: "negative duration", content: "solver { timeout = -5 }"},
		{name: "nested values", content: "param \"p\" { values = [[1]] }"},
		{name: "null element", content: "param \"p\" { values = [null] }"},
		{name: "negative workers", content: "dispatch { workers = -1 }"},
		{name: "duplicate solver", content: "solver {}\nsolver {}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteFiles(t, dir, map[string]string{"sweep.hcl": tc.content})

			_, err := NewLoader().Load(testutil.Context(nil), filepath.Join(dir, "sweep.hcl"))

			assert.Error(t, err)
		})
	}
}

func TestLoader_MissingPath(t *testing.T) {
	_, err := NewLoader().Load(testutil.Context(nil), filepath.Join(t.TempDir(), "nope.hcl"))
	assert.Error(t, err)
}

func TestLoader_SingleValue(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"s.hcl": "param \"seed\" { values = 42 }"})

	model, err := NewLoader().Load(testutil.Context(nil), filepath.Join(dir, "s.hcl"))

	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, model.Params[0].Values)
}

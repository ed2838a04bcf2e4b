package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// FakeSolverEnv switches a test binary into fake solver mode.
const FakeSolverEnv = "VRPBENCH_FAKE_SOLVER"

// Markers placed in an instance's COMMENT line steer the fake solver.
const (
	// MarkFail makes the solver print a partial block, then exit 3.
	MarkFail = "FAIL"
	// MarkSleep makes the solver sleep far past any test timeout.
	MarkSleep = "SLEEP"
	// MarkHeaderOnly makes FINAL_OUTPUT carry only its header line.
	MarkHeaderOnly = "HEADER_ONLY"
	// MarkNoBlocks makes the solver print nothing.
	MarkNoBlocks = "NO_BLOCKS"
)

const rule = "----------------------------------------------"

// RunFakeSolverIfRequested must be the first call in TestMain. When the
// binary was launched as a fake solver it handles the invocation and exits;
// otherwise it arms the environment so child processes become fake solvers
// and returns the path to launch them with.
func RunFakeSolverIfRequested() string {
	if os.Getenv(FakeSolverEnv) == "1" {
		os.Exit(FakeSolver(os.Args[1:], os.Stdout, os.Stderr))
	}
	os.Setenv(FakeSolverEnv, "1")
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return exe
}

// FakeSolver behaves like a solver called as <exe> <instance> [name=value...].
// The reported cost is 100 minus the "retries" argument, so different
// combinations give different, predictable results.
func FakeSolver(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: solver <instance> [name=value ...]")
		return 2
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	content := string(raw)
	base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

	retries := 0
	for _, a := range args[1:] {
		if v, ok := strings.CutPrefix(a, "retries="); ok {
			retries, _ = strconv.Atoi(v)
		}
	}
	cost := fmt.Sprintf("%.2f", 100-float64(retries))

	switch {
	case strings.Contains(content, MarkFail):
		fmt.Fprintln(stdout, rule)
		fmt.Fprintln(stdout, "ROUTES_AFTER_LOOP")
		fmt.Fprintln(stderr, "solver crashed")
		return 3
	case strings.Contains(content, MarkSleep):
		time.Sleep(time.Minute)
		return 0
	case strings.Contains(content, MarkNoBlocks):
		return 0
	}

	lines := []string{
		rule, "GRAPH_G_AFTER_CONSTRUCTION:", "Node 0: (1,2.5)(2,3.1)", "Node 1: (2,1.0)", rule,
		rule, "DEBUG", "args " + strings.Join(args[1:], " "), rule,
		rule, "ROUTES_AFTER_LOOP", "Route #1: 1 2", "Cost 150.00", rule,
		rule, "ROUTES_AFTER_REFINEMENT", "Route #1: 2 1", "Cost " + cost, rule,
		rule, "FINAL_OUTPUT:", "file-name,time_till_loop,total_elapsed_time,minCost,correctness",
	}
	if !strings.Contains(content, MarkHeaderOnly) {
		lines = append(lines, base+".vrp,0.10,0.20,"+cost+",VALID", "Route #1: 2 1", "Cost "+cost)
	}
	lines = append(lines, rule)
	fmt.Fprintln(stdout, strings.Join(lines, "\n"))
	return 0
}

// Instance returns a three-node TSPLIB instance whose COMMENT carries the
// given markers.
func Instance(name string, markers ...string) string {
	return fmt.Sprintf(`NAME : %s
COMMENT : %s
TYPE : CVRP
DIMENSION : 3
CAPACITY : 10
NODE_COORD_SECTION
1 0 0
2 3 4
3 6 0
DEMAND_SECTION
1 0
2 5
3 5
DEPOT_SECTION
1
-1
EOF
`, name, strings.Join(markers, " "))
}

// Corpus writes instances (relative path to markers) under a fresh
// directory and returns it.
func Corpus(t *testing.T, instances map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	files := make(map[string]string, len(instances))
	for rel, markers := range instances {
		files[rel] = Instance(strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel)), markers...)
	}
	WriteFiles(t, root, files)
	return root
}

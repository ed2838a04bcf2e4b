package dispatch

import (
	"path/filepath"
	"sync/atomic"

	"github.com/specialistvlad/vrpbench/internal/fsutil"
	"github.com/specialistvlad/vrpbench/internal/sweep"
)

// File names inside a WorkItem directory.
const (
	CaptureExt  = ".exe_sol"
	SolutionExt = ".sol"
	ScratchDir  = "temp"
)

// WorkItem pairs one combination with one instance. It owns Dir exclusively.
type WorkItem struct {
	Combination sweep.Combination
	Instance    fsutil.Instance
	Dir         string

	group *group
}

// ItemDir returns <root>/<combination>/<relative instance dir>/<instance base>.
func ItemDir(root, combination string, inst fsutil.Instance) string {
	return filepath.Join(root, combination, inst.RelDir, inst.Base)
}

// CapturePath is where the solver's standard output is captured.
func (w *WorkItem) CapturePath() string {
	return filepath.Join(w.Dir, w.Instance.Base+CaptureExt)
}

// SolutionPath is where the FINAL_OUTPUT block is persisted.
func (w *WorkItem) SolutionPath() string {
	return filepath.Join(w.Dir, w.Instance.Base+SolutionExt)
}

// ScratchPath is the run's scratch workspace, removed after FINAL_OUTPUT.
func (w *WorkItem) ScratchPath() string {
	return filepath.Join(w.Dir, ScratchDir)
}

// group tracks the WorkItems of one combination. The worker that brings
// remaining to zero aggregates the combination.
type group struct {
	name      string
	dir       string
	items     []*WorkItem
	remaining atomic.Int32
	skipped   atomic.Bool
}

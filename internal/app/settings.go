package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specialistvlad/vrpbench/internal/config"
	"github.com/specialistvlad/vrpbench/internal/sweep"
)

// DefaultExtension is the instance extension used when none is configured.
const DefaultExtension = ".vrp"

// settings is the effective configuration of a sweep: the sweep file model
// with command-line overrides and defaults applied, paths made absolute.
type settings struct {
	Executable string
	Timeout    time.Duration
	Corpus     string
	Extension  string
	OutputRoot string
	Workers    int
	LaunchRate float64
	Sweep      *sweep.Sweep

	Snapshots     bool
	LiveURL       string
	LiveNamespace string
	LedgerPath    string
}

// resolve merges cfg over model. It does not touch the filesystem beyond
// making paths absolute.
func resolve(model *config.Model, cfg *Config) (*settings, error) {
	s := &settings{
		Executable:    pick(cfg.Solver, model.Solver.Executable),
		Timeout:       model.Solver.Timeout,
		Corpus:        pick(cfg.Corpus, model.Corpus.Root),
		Extension:     pick(cfg.Extension, model.Corpus.Extension),
		OutputRoot:    pick(cfg.OutputRoot, model.Output.Root),
		Workers:       model.Dispatch.Workers,
		LaunchRate:    model.Dispatch.LaunchRate,
		Snapshots:     cfg.Snapshots || model.Render.Snapshots,
		LiveURL:       pick(cfg.LiveURL, model.Render.LiveURL),
		LiveNamespace: pick(cfg.LiveNamespace, model.Render.LiveNamespace),
		LedgerPath:    pick(cfg.LedgerPath, model.Ledger.Path),
	}
	if cfg.Timeout > 0 {
		s.Timeout = cfg.Timeout
	}
	if cfg.Workers > 0 {
		s.Workers = cfg.Workers
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	if cfg.LaunchRate > 0 {
		s.LaunchRate = cfg.LaunchRate
	}
	if s.Extension == "" {
		s.Extension = DefaultExtension
	}
	if s.LiveNamespace == "" {
		s.LiveNamespace = "/"
	}

	var missing []error
	for name, v := range map[string]string{"solver executable": s.Executable, "corpus root": s.Corpus, "output root": s.OutputRoot} {
		if v == "" {
			missing = append(missing, fmt.Errorf("%s is not configured", name))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	for _, p := range []*string{&s.Executable, &s.Corpus, &s.OutputRoot} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, err
		}
		*p = abs
	}

	sw, err := buildSweep(model.Params, cfg.Params)
	if err != nil {
		return nil, err
	}
	s.Sweep = sw
	return s, nil
}

// buildSweep adds the file parameters in file order, replacing the
// candidates of any parameter overridden on the command line, then appends
// the command-line parameters the file does not name.
func buildSweep(params []*config.Param, overrides []string) (*sweep.Sweep, error) {
	flagSpecs := make(map[string][]string, len(overrides))
	var flagOrder []string
	for _, o := range overrides {
		name, spec, err := splitParam(o)
		if err != nil {
			return nil, err
		}
		if _, ok := flagSpecs[name]; !ok {
			flagOrder = append(flagOrder, name)
		}
		flagSpecs[name] = append(flagSpecs[name], spec)
	}

	sw := sweep.New()
	addFlag := func(name string) {
		for _, spec := range flagSpecs[name] {
			sw.Add(name, spec)
		}
		delete(flagSpecs, name)
	}
	for _, p := range params {
		if _, ok := flagSpecs[p.Name]; ok {
			addFlag(p.Name)
			continue
		}
		sw.AddValues(p.Name, p.Values)
		if p.Spec != "" {
			sw.Add(p.Name, p.Spec)
		}
	}
	for _, name := range flagOrder {
		if _, ok := flagSpecs[name]; ok {
			addFlag(name)
		}
	}
	return sw, nil
}

// check verifies the fatal preconditions of a sweep: an executable solver,
// and an output root that exists (or can be created) and is writable.
func (s *settings) check() error {
	info, err := os.Stat(s.Executable)
	if err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("solver %s is not an executable file", s.Executable)
	}

	if err := os.MkdirAll(s.OutputRoot, 0755); err != nil {
		return fmt.Errorf("output root: %w", err)
	}
	probe, err := os.CreateTemp(s.OutputRoot, ".write-probe-*")
	if err != nil {
		return fmt.Errorf("output root %s is not writable: %w", s.OutputRoot, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func pick(flag, file string) string {
	if flag != "" {
		return flag
	}
	return file
}

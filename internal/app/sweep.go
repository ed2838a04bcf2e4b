package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/specialistvlad/vrpbench/internal/aggregate"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/specialistvlad/vrpbench/internal/decoder"
	"github.com/specialistvlad/vrpbench/internal/dispatch"
	"github.com/specialistvlad/vrpbench/internal/fsutil"
	"github.com/specialistvlad/vrpbench/internal/ledger"
	"github.com/specialistvlad/vrpbench/internal/manifest"
	"github.com/specialistvlad/vrpbench/internal/report"
	"github.com/specialistvlad/vrpbench/internal/sweep"
)

// runSweep executes every combination over every instance. Precondition
// failures are returned before the solver runs; WorkItem failures are only
// logged, unless the run is strict.
func (a *App) runSweep(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	s, err := resolve(a.model, a.config)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instances, err := fsutil.WalkCorpus(s.Corpus, s.Extension)
	if err != nil {
		return err
	}
	if err := s.check(); err != nil {
		return err
	}
	combos := s.Sweep.Combinations()
	if err := sweep.CheckNames(combos); err != nil {
		return err
	}
	logger.Info("Sweep planned.",
		"combinations", len(combos),
		"instances", len(instances),
		"workItems", len(combos)*len(instances),
		"workers", s.Workers,
	)
	if len(instances) == 0 {
		logger.Warn("Corpus holds no instances.", "corpus", s.Corpus, "extension", s.Extension)
	}

	runID := manifest.NewRunID()
	started := time.Now().UTC()
	if err := a.writeManifest(s, runID, started, combos, len(instances)); err != nil {
		return err
	}

	rep := report.NewReport()
	var outcomes dispatch.OutcomeRecorder
	if s.LedgerPath != "" {
		lg, err := ledger.Open(s.LedgerPath)
		if err != nil {
			return err
		}
		defer lg.Close()
		err = lg.BeginRun(ctx, ledger.Run{
			ID:           runID,
			StartedAt:    started,
			Solver:       s.Executable,
			Corpus:       s.Corpus,
			Combinations: len(combos),
			WorkItems:    len(combos) * len(instances),
		})
		if err != nil {
			return err
		}
		outcomes = lg
		defer func() {
			// The ledger is finished even when the sweep was cancelled.
			if err := lg.FinishRun(context.WithoutCancel(ctx), runID, time.Now().UTC(), rep.Len()); err != nil {
				logger.Warn("Failed to finish run in ledger.", "error", err)
			}
		}()
	}

	sink, closeSink := a.renderer(ctx, s)
	defer closeSink()

	d := dispatch.New(dispatch.Options{
		Executable: s.Executable,
		OutputRoot: s.OutputRoot,
		Workers:    s.Workers,
		LaunchRate: s.LaunchRate,
		Metrics:    a.metrics,
		Ledger:     outcomes,
		RunID:      runID,
	}, dispatch.ExecInvoker{Timeout: s.Timeout}, decoder.New(sink), rep)

	logger.Info("🚀 Starting sweep...", "runID", runID, "outputRoot", s.OutputRoot)
	sum, runErr := d.Run(ctx, combos, instances)

	if sum != nil && len(sum.Aggregated) > 0 {
		if err := a.writeComparison(ctx, s.OutputRoot); err != nil {
			logger.Warn("Failed to write cost comparison.", "error", err)
		}
	}
	a.logReport(ctx, rep)
	if runErr != nil {
		return fmt.Errorf("sweep did not complete: %w", runErr)
	}

	logger.Info("🏁 Sweep finished.",
		"runID", runID,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"aggregated", len(sum.Aggregated),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	if a.config.Strict && rep.Len() > 0 {
		return fmt.Errorf("%w: %d failures", ErrWorkItemsFailed, rep.Len())
	}
	return nil
}

func (a *App) writeManifest(s *settings, runID string, started time.Time, combos []sweep.Combination, instances int) error {
	m := &manifest.Manifest{
		RunID:     runID,
		StartedAt: started,
		Solver:    s.Executable,
		Corpus:    s.Corpus,
		Extension: s.Extension,
		Workers:   s.Workers,
		Instances: instances,
		System:    manifest.CollectSysInfo(),
	}
	if s.Timeout > 0 {
		m.Timeout = s.Timeout.String()
	}
	for _, p := range s.Sweep.Parameters() {
		m.Parameters = append(m.Parameters, manifest.Parameter{Name: p.Name, Values: p.Candidates})
	}
	for _, c := range combos {
		m.Combinations = append(m.Combinations, c.CanonicalName())
	}
	return m.Write(s.OutputRoot)
}

// writeComparison lays out minCost of every combination found under root.
func (a *App) writeComparison(ctx context.Context, root string) error {
	combos, err := aggregate.DiscoverCombinations(root)
	if err != nil {
		return err
	}
	cmp, err := aggregate.Compare(root, combos)
	if err != nil {
		return err
	}
	path := filepath.Join(root, aggregate.ComparisonFile)
	if err := cmp.Write(path); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Cost comparison written.", "path", path, "combinations", len(combos), "instances", len(cmp.Instances))
	return nil
}

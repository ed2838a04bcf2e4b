package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/vrpbench/internal/aggregate"
	"github.com/specialistvlad/vrpbench/internal/artifact"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/specialistvlad/vrpbench/internal/decoder"
	"github.com/specialistvlad/vrpbench/internal/fsutil"
	"github.com/specialistvlad/vrpbench/internal/instance"
	"github.com/specialistvlad/vrpbench/internal/ledger"
	"github.com/specialistvlad/vrpbench/internal/metrics"
	"github.com/specialistvlad/vrpbench/internal/report"
	"github.com/specialistvlad/vrpbench/internal/sweep"
	"golang.org/x/time/rate"
)

// OutcomeRecorder receives the outcome of every WorkItem.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, o ledger.Outcome) error
}

// Options configures a Dispatcher.
type Options struct {
	Executable string
	OutputRoot string
	// Workers is the number of concurrent solver invocations. Values below
	// one mean one.
	Workers int
	// LaunchRate limits solver launches per second. Zero means unlimited.
	LaunchRate float64

	Metrics *metrics.Metrics
	Ledger  OutcomeRecorder
	RunID   string
}

// Summary describes a finished (or cancelled) dispatch.
type Summary struct {
	Combinations int
	WorkItems    int
	Succeeded    int
	Failed       int
	Skipped      int
	// Aggregated lists the combinations whose table was rebuilt, sorted.
	Aggregated []string
	// Tables holds the rebuilt table of each aggregated combination.
	Tables map[string]*aggregate.Table
}

// Dispatcher drives the solver over every (combination, instance) pair. A
// Dispatcher runs once.
type Dispatcher struct {
	opts    Options
	invoker Invoker
	decoder *decoder.Decoder
	report  *report.Report
	limiter *rate.Limiter

	succeeded atomic.Int32
	failed    atomic.Int32
	skipped   atomic.Int32

	mu         sync.Mutex
	aggregated map[string]*aggregate.Table
	errs       []error
}

// New creates a Dispatcher. Failures are collected in rep.
func New(opts Options, inv Invoker, dec *decoder.Decoder, rep *report.Report) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	d := &Dispatcher{
		opts:       opts,
		invoker:    inv,
		decoder:    dec,
		report:     rep,
		aggregated: make(map[string]*aggregate.Table),
	}
	if opts.LaunchRate > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(opts.LaunchRate), 1)
	}
	return d
}

// prepare creates each combination root, every WorkItem directory and an
// empty capture file, and returns the groups in dispatch order. Any error
// here means the output root is unusable.
func (d *Dispatcher) prepare(combos []sweep.Combination, instances []fsutil.Instance) ([]*group, error) {
	if len(combos) == 0 {
		combos = []sweep.Combination{{}}
	}
	groups := make([]*group, 0, len(combos))
	for _, c := range combos {
		name := c.CanonicalName()
		g := &group{name: name, dir: filepath.Join(d.opts.OutputRoot, name)}
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			return nil, fmt.Errorf("creating combination dir: %w", err)
		}
		for _, inst := range instances {
			item := &WorkItem{Combination: c, Instance: inst, Dir: ItemDir(d.opts.OutputRoot, name, inst), group: g}
			if err := os.MkdirAll(item.Dir, 0755); err != nil {
				return nil, fmt.Errorf("creating work item dir: %w", err)
			}
			f, err := os.Create(item.CapturePath())
			if err != nil {
				return nil, fmt.Errorf("creating capture file: %w", err)
			}
			f.Close()
			g.items = append(g.items, item)
		}
		g.remaining.Store(int32(len(g.items)))
		groups = append(groups, g)
	}
	return groups, nil
}

// Run invokes the solver for every WorkItem through a bounded worker pool,
// decodes each capture on the worker that produced it, and rebuilds a
// combination's table once its last WorkItem finishes. WorkItem failures go
// to the report; the returned error is for a cancelled context or a table
// that could not be written.
func (d *Dispatcher) Run(ctx context.Context, combos []sweep.Combination, instances []fsutil.Instance) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)

	groups, err := d.prepare(combos, instances)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, g := range groups {
		total += len(g.items)
	}
	readyChan := make(chan *WorkItem, total)
	for _, g := range groups {
		if len(g.items) == 0 {
			// Nothing to wait for: the table is rebuilt (empty) right away.
			d.aggregate(ctx, g)
			continue
		}
		for _, item := range g.items {
			readyChan <- item
		}
	}
	close(readyChan)

	var wg sync.WaitGroup
	logger.Debug("Starting worker pool.", "workers", d.opts.Workers, "workItems", total)
	for i := 0; i < d.opts.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			d.worker(ctx, readyChan, workerID)
		}(i)
	}
	wg.Wait()
	logger.Info("All work items finished.", "succeeded", d.succeeded.Load(), "failed", d.failed.Load(), "skipped", d.skipped.Load())

	d.mu.Lock()
	sum := &Summary{
		Combinations: len(groups),
		WorkItems:    total,
		Succeeded:    int(d.succeeded.Load()),
		Failed:       int(d.failed.Load()),
		Skipped:      int(d.skipped.Load()),
		Tables:       d.aggregated,
	}
	for name := range d.aggregated {
		sum.Aggregated = append(sum.Aggregated, name)
	}
	errs := append([]error(nil), d.errs...)
	d.mu.Unlock()
	sort.Strings(sum.Aggregated)

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return sum, errors.Join(errs...)
}

// worker is the core processing loop for a single concurrent worker.
func (d *Dispatcher) worker(ctx context.Context, readyChan <-chan *WorkItem, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for item := range readyChan {
		itemLogger := logger.With("workerID", workerID, "instance", item.Instance.Name(), "combination", item.group.name)

		if err := d.wait(ctx); err != nil {
			itemLogger.Warn("Context canceled, skipping work item.")
			item.group.skipped.Store(true)
			d.skipped.Add(1)
			d.opts.Metrics.WorkItemDone(item.group.name, metrics.OutcomeSkipped)
			d.done(ctx, item)
			continue
		}

		itemLogger.Debug("Worker picked up work item.")
		d.process(ctxlog.WithLogger(ctx, itemLogger), item)
		d.done(ctx, item)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

func (d *Dispatcher) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.limiter == nil {
		return nil
	}
	return d.limiter.Wait(ctx)
}

// done counts item down and aggregates its combination when it was the last
// one. A combination with skipped items, or finishing after cancellation,
// keeps its previous table.
func (d *Dispatcher) done(ctx context.Context, item *WorkItem) {
	g := item.group
	if g.remaining.Add(-1) != 0 {
		return
	}
	if g.skipped.Load() || ctx.Err() != nil {
		ctxlog.FromContext(ctx).Warn("Combination incomplete, keeping previous table.", "combination", g.name)
		return
	}
	d.aggregate(ctx, g)
}

func (d *Dispatcher) aggregate(ctx context.Context, g *group) {
	entries := make([]aggregate.Entry, 0, len(g.items))
	for _, item := range g.items {
		entries = append(entries, aggregate.Entry{Instance: item.Instance.Name(), Solution: item.SolutionPath()})
	}
	table, gaps, err := aggregate.Rebuild(ctx, g.name, g.dir, entries)
	for _, f := range gaps {
		d.report.Add(f)
		d.opts.Metrics.Failure(f.Kind.String())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		ctxlog.FromContext(ctx).Error("Failed to rebuild accumulated table.", "combination", g.name, "error", err)
		d.errs = append(d.errs, err)
		return
	}
	if d.opts.Metrics != nil {
		d.opts.Metrics.Aggregations.Inc()
	}
	d.aggregated[g.name] = table
	ctxlog.FromContext(ctx).Info("Combination aggregated.", "combination", g.name, "rows", len(table.Rows), "gaps", len(gaps))
}

// process runs one WorkItem: invoke and capture, then decode synchronously.
func (d *Dispatcher) process(ctx context.Context, item *WorkItem) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	outcome := ledger.Outcome{
		RunID:       d.opts.RunID,
		Combination: item.group.name,
		Instance:    item.Instance.Name(),
		Outcome:     metrics.OutcomeOK,
	}
	fail := func(kind report.Kind, err error) {
		f := report.New(kind, item.Instance.Name(), item.group.name, err)
		d.report.Add(f)
		d.failed.Add(1)
		d.opts.Metrics.Failure(kind.String())
		d.opts.Metrics.WorkItemDone(item.group.name, metrics.OutcomeFailed)
		logger.Error("Work item failed.", "kind", kind.String(), "error", err)
		outcome.Outcome, outcome.Kind, outcome.Cause = metrics.OutcomeFailed, kind.String(), err.Error()
	}
	defer func() {
		outcome.Duration = time.Since(start)
		d.recordOutcome(ctx, outcome)
	}()

	if err := d.invoke(ctx, item); err != nil {
		fail(report.InvocationFailure, err)
		return
	}

	res, err := d.decode(ctx, item)
	if err != nil {
		// A solution persisted before the failure must stay out of the table.
		if rmErr := os.Remove(item.SolutionPath()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("removing partial solution: %w", rmErr))
		}
		fail(report.DecodeFailure, err)
		return
	}
	if res.Final != nil {
		outcome.MinCost = res.Final.Plan.CostText
	}
	d.succeeded.Add(1)
	d.opts.Metrics.WorkItemDone(item.group.name, metrics.OutcomeOK)
	logger.Debug("Work item succeeded.", "blocks", res.Blocks, "duration", time.Since(start))
}

// invoke runs the solver with stdout going straight to the capture file.
func (d *Dispatcher) invoke(ctx context.Context, item *WorkItem) error {
	// A solution left by an earlier sweep must not stand in for this run.
	if err := os.Remove(item.SolutionPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale solution: %w", err)
	}
	capture, err := os.Create(item.CapturePath())
	if err != nil {
		return fmt.Errorf("opening capture file: %w", err)
	}
	instPath, err := filepath.Abs(item.Instance.Path)
	if err != nil {
		capture.Close()
		return err
	}
	inv := Invocation{
		Executable: d.opts.Executable,
		Instance:   instPath,
		Args:       item.Combination.Arguments(),
		Dir:        item.Dir,
	}

	if d.opts.Metrics != nil {
		d.opts.Metrics.InFlight.Inc()
		defer d.opts.Metrics.InFlight.Dec()
	}
	start := time.Now()
	runErr := d.invoker.Invoke(ctx, inv, capture)
	d.opts.Metrics.ObserveInvocation(item.group.name, time.Since(start))
	closeErr := capture.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func (d *Dispatcher) decode(ctx context.Context, item *WorkItem) (*decoder.Result, error) {
	logger := ctxlog.FromContext(ctx)

	var geo *artifact.Geometry
	if g, err := instance.Load(item.Instance.Path); err != nil {
		logger.Warn("Instance geometry unavailable, decoding without it.", "error", err)
	} else {
		geo = g
	}

	capture, err := os.Open(item.CapturePath())
	if err != nil {
		return nil, fmt.Errorf("reading capture file: %w", err)
	}
	defer capture.Close()

	return d.decoder.Ingest(ctx, capture, decoder.Target{
		Geometry: geo,
		Dir:      item.Dir,
		Base:     item.Instance.Base,
		Scratch:  item.ScratchPath(),
	})
}

func (d *Dispatcher) recordOutcome(ctx context.Context, o ledger.Outcome) {
	if d.opts.Ledger == nil {
		return
	}
	// Ledger errors never fail a WorkItem.
	if err := d.opts.Ledger.RecordOutcome(context.WithoutCancel(ctx), o); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record outcome in ledger.", "error", err)
	}
}

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/specialistvlad/vrpbench/internal/report"
)

// ErrWorkItemsFailed is returned by a --strict sweep that recorded failures.
var ErrWorkItemsFailed = errors.New("sweep finished with failures")

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	switch a.config.Command {
	case CommandRun:
		if a.config.HealthcheckPort > 0 {
			if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
				return err
			}
			defer a.closeHealthcheckServer()
		}
		return a.runSweep(ctx)
	case CommandDecode:
		return a.runDecode(ctx)
	case CommandCompare:
		return a.runCompare(ctx)
	}
	return fmt.Errorf("unknown command %q", a.config.Command)
}

// logReport logs every failure once, grouped by kind.
func (a *App) logReport(ctx context.Context, rep *report.Report) {
	logger := ctxlog.FromContext(ctx)
	if rep.Len() == 0 {
		logger.Info("No failures recorded.")
		return
	}
	for _, f := range rep.Failures() {
		logger.Warn("Failure.", "kind", f.Kind.String(), "instance", f.Instance, "combination", f.Combination, "cause", f.Cause)
	}
	logger.Warn("Failures recorded.",
		"invocation", rep.Count(report.InvocationFailure),
		"decode", rep.Count(report.DecodeFailure),
		"aggregationGap", rep.Count(report.AggregationGap),
	)
}

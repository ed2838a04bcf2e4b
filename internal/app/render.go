package app

import (
	"context"

	"github.com/specialistvlad/vrpbench/internal/artifact"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/specialistvlad/vrpbench/internal/render"
)

// renderer assembles the configured sinks. The returned func releases them.
func (a *App) renderer(ctx context.Context, s *settings) (render.Sink, func()) {
	logger := ctxlog.FromContext(ctx)
	var sinks []render.Sink
	closeFn := func() {}

	if s.Snapshots {
		sinks = append(sinks, render.Snapshot{})
	}
	if s.LiveURL != "" {
		live, err := render.DialLive(ctx, render.LiveOptions{URL: s.LiveURL, Namespace: s.LiveNamespace})
		if err != nil {
			logger.Warn("Live renderer unavailable, continuing without it.", "error", err)
		} else {
			sinks = append(sinks, bestEffort{sink: live})
			closeFn = func() { live.Close() }
		}
	}
	logger.Debug("Renderer configured.", "sinks", len(sinks))
	return render.NewMulti(sinks...), closeFn
}

// bestEffort logs the errors of sink and never returns them.
type bestEffort struct {
	sink render.Sink
}

func (b bestEffort) warn(ctx context.Context, err error) error {
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Live scene dropped.", "error", err)
	}
	return nil
}

func (b bestEffort) RenderGraph(ctx context.Context, s artifact.GraphScene) error {
	return b.warn(ctx, b.sink.RenderGraph(ctx, s))
}

func (b bestEffort) RenderRoutes(ctx context.Context, s artifact.RouteScene) error {
	return b.warn(ctx, b.sink.RenderRoutes(ctx, s))
}

func (b bestEffort) RenderCosts(ctx context.Context, s artifact.CostScene) error {
	return b.warn(ctx, b.sink.RenderCosts(ctx, s))
}

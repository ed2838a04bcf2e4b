package render

import (
	"context"

	"github.com/specialistvlad/vrpbench/internal/artifact"
	"golang.org/x/sync/errgroup"
)

// Multi fans every scene out to several sinks concurrently. The first error
// wins; the remaining sinks still receive the scene.
type Multi []Sink

// NewMulti drops nil sinks and collapses trivial cases.
func NewMulti(sinks ...Sink) Sink {
	var m Multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	}
	return m
}

func (m Multi) each(ctx context.Context, fn func(context.Context, Sink) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m {
		g.Go(func() error { return fn(gctx, s) })
	}
	return g.Wait()
}

func (m Multi) RenderGraph(ctx context.Context, s artifact.GraphScene) error {
	return m.each(ctx, func(ctx context.Context, sink Sink) error { return sink.RenderGraph(ctx, s) })
}

func (m Multi) RenderRoutes(ctx context.Context, s artifact.RouteScene) error {
	return m.each(ctx, func(ctx context.Context, sink Sink) error { return sink.RenderRoutes(ctx, s) })
}

func (m Multi) RenderCosts(ctx context.Context, s artifact.CostScene) error {
	return m.each(ctx, func(ctx context.Context, sink Sink) error { return sink.RenderCosts(ctx, s) })
}

package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/vrpbench/internal/artifact"
	"github.com/specialistvlad/vrpbench/internal/costs"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
)

// ErrEmptyFinal is returned when a FINAL_OUTPUT block has no content.
var ErrEmptyFinal = errors.New("FINAL_OUTPUT block is empty")

// Renderer is the sink for decoded scenes.
type Renderer interface {
	RenderGraph(ctx context.Context, scene artifact.GraphScene) error
	RenderRoutes(ctx context.Context, scene artifact.RouteScene) error
	costs.Chart
}

type nopRenderer struct{}

func (nopRenderer) RenderGraph(context.Context, artifact.GraphScene) error  { return nil }
func (nopRenderer) RenderRoutes(context.Context, artifact.RouteScene) error { return nil }
func (nopRenderer) RenderCosts(context.Context, artifact.CostScene) error   { return nil }

// Target describes where one run's artifacts go.
type Target struct {
	Geometry *artifact.Geometry
	// Dir is the WorkItem directory. The solution and cost table land here.
	Dir string
	// Base is the instance base name, used for file names.
	Base string
	// Scratch, when set, is recreated empty before decoding and removed once
	// FINAL_OUTPUT has been persisted.
	Scratch string
}

// SolutionFile returns the persisted solution path for a target.
func (t Target) SolutionFile() string {
	return filepath.Join(t.Dir, t.Base+".sol")
}

// Decoder applies the side effects of decoding: rendering, cost recording
// and persisting the final solution.
type Decoder struct {
	renderer Renderer
}

// New returns a Decoder that sends scenes to r. A nil renderer discards them.
func New(r Renderer) *Decoder {
	if r == nil {
		r = nopRenderer{}
	}
	return &Decoder{renderer: r}
}

// Ingest decodes r block by block. Scenes are rendered in block order; the
// cost table is flushed exactly once, at FINAL_OUTPUT or at end of input.
// The returned Result is populated up to the point of any error.
func (d *Decoder) Ingest(ctx context.Context, r io.Reader, t Target) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("instance", t.Base)

	if t.Scratch != "" {
		if err := os.RemoveAll(t.Scratch); err != nil {
			return nil, fmt.Errorf("resetting scratch dir: %w", err)
		}
		if err := os.MkdirAll(t.Scratch, 0755); err != nil {
			return nil, fmt.Errorf("creating scratch dir: %w", err)
		}
	}

	rec := costs.NewRecorder()
	res := &Result{}

	err := Scan(r, func(b Block) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ignored := res.Ignored
		res.add(b, t.Geometry)
		if res.Ignored > ignored {
			logger.Debug("Ignoring block after FINAL_OUTPUT.", "heading", b.Heading)
			return nil
		}

		switch b.Kind {
		case KindGraph:
			g := res.Graphs[len(res.Graphs)-1]
			logger.Debug("Rendering graph.", "heading", g.Heading, "edges", len(g.Edges))
			scene := artifact.GraphScene{Dir: t.Dir, Scratch: t.Scratch, Instance: t.Base, Geometry: t.Geometry, Graph: g}
			if err := d.renderer.RenderGraph(ctx, scene); err != nil {
				return fmt.Errorf("rendering %s: %w", g.Heading, err)
			}
		case KindRoutes:
			plan := res.Plans[len(res.Plans)-1]
			logger.Debug("Rendering routes.", "heading", plan.Heading, "routes", len(plan.Routes))
			scene := artifact.RouteScene{Dir: t.Dir, Scratch: t.Scratch, Instance: t.Base, Geometry: t.Geometry, Plan: plan}
			if err := d.renderer.RenderRoutes(ctx, scene); err != nil {
				return fmt.Errorf("rendering %s: %w", plan.Heading, err)
			}
			if plan.HasCost {
				if err := rec.Record(plan.Heading, plan.Cost, plan.CostText); err != nil {
					return err
				}
			}
		case KindFinalOutput:
			return d.finish(ctx, res.Final, t, rec)
		default:
			logger.Debug("Skipping unknown block.", "heading", b.Heading, "lines", len(b.Content))
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	if res.Empty() {
		logger.Warn("Capture contains no blocks.")
	}
	if !rec.Flushed() {
		if err := rec.Flush(ctx, t.Dir, t.Base, d.renderer); err != nil {
			return res, err
		}
	}
	if res.Skipped > 0 {
		logger.Debug("Skipped malformed lines.", "count", res.Skipped)
	}
	return res, nil
}

// finish persists the final block verbatim, tears down scratch space and
// flushes the cost trajectory.
func (d *Decoder) finish(ctx context.Context, final *artifact.FinalSolution, t Target, rec *costs.Recorder) error {
	if lastNonBlank(final.Lines) < 0 {
		return ErrEmptyFinal
	}
	var sb strings.Builder
	for _, l := range final.Lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(t.SolutionFile(), []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("persisting solution: %w", err)
	}
	if t.Scratch != "" {
		if err := os.RemoveAll(t.Scratch); err != nil {
			return fmt.Errorf("removing scratch dir: %w", err)
		}
	}
	return rec.Flush(ctx, t.Dir, t.Base, d.renderer)
}

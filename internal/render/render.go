// Package render provides sinks for decoded scenes: a snapshot writer that
// leaves JSON scenes and an HTML cost chart next to each run, a live
// socket.io emitter, and a fan-out over several sinks.
package render

import (
	"context"
	"strings"

	"github.com/specialistvlad/vrpbench/internal/artifact"
)

// Sink consumes the scenes of one run.
type Sink interface {
	RenderGraph(ctx context.Context, scene artifact.GraphScene) error
	RenderRoutes(ctx context.Context, scene artifact.RouteScene) error
	RenderCosts(ctx context.Context, scene artifact.CostScene) error
}

// Nop discards every scene.
type Nop struct{}

func (Nop) RenderGraph(context.Context, artifact.GraphScene) error  { return nil }
func (Nop) RenderRoutes(context.Context, artifact.RouteScene) error { return nil }
func (Nop) RenderCosts(context.Context, artifact.CostScene) error   { return nil }

// GraphPayload is the serialized form of a graph scene.
type GraphPayload struct {
	Instance string          `json:"instance"`
	Heading  string          `json:"heading"`
	Depot    int             `json:"depot"`
	Coords   [][2]float64    `json:"coords"`
	Edges    []artifact.Edge `json:"edges"`
}

// RoutesPayload is the serialized form of a route scene.
type RoutesPayload struct {
	Instance string       `json:"instance"`
	Heading  string       `json:"heading"`
	Depot    int          `json:"depot"`
	Coords   [][2]float64 `json:"coords"`
	Routes   [][]int      `json:"routes"`
	Cost     *float64     `json:"cost,omitempty"`
}

// CostsPayload is the serialized form of a cost trajectory.
type CostsPayload struct {
	Instance string    `json:"instance"`
	Steps    []string  `json:"steps"`
	Values   []float64 `json:"values"`
}

func graphPayload(s artifact.GraphScene) GraphPayload {
	p := GraphPayload{Instance: s.Instance, Heading: s.Graph.Heading, Edges: s.Graph.Edges}
	if s.Geometry != nil {
		p.Depot, p.Coords = s.Geometry.Depot, s.Geometry.Coords
	}
	if p.Edges == nil {
		p.Edges = []artifact.Edge{}
	}
	return p
}

func routesPayload(s artifact.RouteScene) RoutesPayload {
	p := RoutesPayload{Instance: s.Instance, Heading: s.Plan.Heading, Routes: s.Plan.Routes}
	if s.Geometry != nil {
		p.Depot, p.Coords = s.Geometry.Depot, s.Geometry.Coords
	}
	if s.Plan.HasCost {
		c := s.Plan.Cost
		p.Cost = &c
	}
	if p.Routes == nil {
		p.Routes = [][]int{}
	}
	return p
}

func costsPayload(s artifact.CostScene) CostsPayload {
	p := CostsPayload{
		Instance: s.Instance,
		Steps:    make([]string, len(s.Samples)),
		Values:   make([]float64, len(s.Samples)),
	}
	for i, sample := range s.Samples {
		p.Steps[i], p.Values[i] = sample.Step, sample.Value
	}
	return p
}

// fileName turns a heading into a file name that stays inside its directory.
func fileName(heading string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0, ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(heading))
	if name == "" || name == "." || name == ".." {
		return "block"
	}
	return name
}

package decoder

import (
	"strings"

	"github.com/specialistvlad/vrpbench/internal/artifact"
)

// Result is everything decoded from one capture.
type Result struct {
	Blocks  int
	Graphs  []artifact.Graph
	Plans   []artifact.RoutePlan
	Final   *artifact.FinalSolution
	Samples []artifact.CostSample
	// Unknown holds the headings of blocks that were consumed but not decoded.
	Unknown []string
	// Skipped counts malformed content lines inside GRAPH and ROUTES blocks.
	Skipped int
	// Ignored counts blocks that appeared after FINAL_OUTPUT.
	Ignored int
}

// Empty reports whether the capture contained no blocks at all.
func (r *Result) Empty() bool {
	return r == nil || r.Blocks == 0
}

// DecodeBlocks folds blocks into a Result. It has no side effects, so
// decoding the same blocks twice yields equal results. Edges that point
// outside a known geometry are dropped and counted as skipped.
func DecodeBlocks(blocks []Block, geometry *artifact.Geometry) *Result {
	res := &Result{}
	for _, b := range blocks {
		res.add(b, geometry)
	}
	return res
}

func (r *Result) add(b Block, geometry *artifact.Geometry) {
	r.Blocks++
	if b.Trailing || r.Final != nil {
		r.Ignored++
		return
	}

	switch b.Kind {
	case KindGraph:
		g, skipped := decodeGraph(b, geometry)
		r.Graphs = append(r.Graphs, g)
		r.Skipped += skipped
	case KindRoutes:
		plan, skipped := decodeRoutes(b)
		r.Plans = append(r.Plans, plan)
		r.Skipped += skipped
		if plan.HasCost {
			r.Samples = append(r.Samples, artifact.CostSample{
				Step:  plan.Heading,
				Value: plan.Cost,
				Text:  plan.CostText,
			})
		}
	case KindFinalOutput:
		r.Final = decodeFinal(b)
	default:
		r.Unknown = append(r.Unknown, b.Heading)
	}
}

func decodeGraph(b Block, geometry *artifact.Geometry) (artifact.Graph, int) {
	g := artifact.Graph{Heading: b.Heading}
	skipped := 0
	for _, line := range b.Content {
		if strings.TrimSpace(line) == "" {
			continue
		}
		from, targets, ok := ParseGraphLine(line)
		if !ok || !geometry.Contains(from) {
			skipped++
			continue
		}
		for _, to := range targets {
			if !geometry.Contains(to) {
				skipped++
				continue
			}
			g.Edges = append(g.Edges, artifact.Edge{From: from, To: to})
		}
	}
	return g, skipped
}

// decodeRoutes reads route lines and the cost. The cost only counts when it
// is the last non-blank content line.
func decodeRoutes(b Block) (artifact.RoutePlan, int) {
	plan := artifact.RoutePlan{Heading: b.Heading}
	skipped := 0
	last := lastNonBlank(b.Content)
	for i, line := range b.Content {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, nodes, ok := ParseRouteLine(line); ok {
			plan.Routes = append(plan.Routes, nodes)
			continue
		}
		if v, text, ok := ParseCostLine(line); ok && i == last {
			plan.Cost, plan.CostText, plan.HasCost = v, text, true
			continue
		}
		skipped++
	}
	return plan, skipped
}

// decodeFinal keeps the lines verbatim and reads back whatever routes and
// cost they contain. Header and data lines are not route lines, so they are
// not treated as malformed.
func decodeFinal(b Block) *artifact.FinalSolution {
	lines := make([]string, len(b.Content))
	copy(lines, b.Content)
	plan, _ := decodeRoutes(b)
	return &artifact.FinalSolution{Lines: lines, Plan: plan}
}

func lastNonBlank(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

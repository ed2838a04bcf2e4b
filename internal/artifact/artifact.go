package artifact

// Geometry is the subset of an instance file needed to validate and render
// decoded artifacts. Node indices are zero-based.
type Geometry struct {
	Name     string
	Coords   [][2]float64
	Demands  []float64
	Capacity float64
	Depot    int
}

// Dimension returns the number of nodes, or 0 when the geometry is unknown.
func (g *Geometry) Dimension() int {
	if g == nil {
		return 0
	}
	return len(g.Coords)
}

// Contains reports whether idx is a valid node index. A nil geometry accepts
// every non-negative index because nothing is known to check against.
func (g *Geometry) Contains(idx int) bool {
	if idx < 0 {
		return false
	}
	if g == nil || len(g.Coords) == 0 {
		return true
	}
	return idx < len(g.Coords)
}

// Edge is a directed edge between two zero-based node indices.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Graph is decoded from one GRAPH block.
type Graph struct {
	Heading string
	Edges   []Edge
}

// RoutePlan is decoded from one ROUTES block. CostText keeps the cost token
// exactly as the solver printed it.
type RoutePlan struct {
	Heading  string
	Routes   [][]int
	Cost     float64
	CostText string
	HasCost  bool
}

// FinalSolution is the FINAL_OUTPUT block. Lines is persisted verbatim; Plan
// holds whatever routes and cost could be read back from those lines.
type FinalSolution struct {
	Lines []string
	Plan  RoutePlan
}

// Header returns the first line of the final block, if any.
func (f *FinalSolution) Header() string {
	if f == nil || len(f.Lines) == 0 {
		return ""
	}
	return f.Lines[0]
}

// Data returns the first data line (the line after the header), if any.
func (f *FinalSolution) Data() string {
	if f == nil || len(f.Lines) < 2 {
		return ""
	}
	return f.Lines[1]
}

// CostSample is one point of a run's cost trajectory.
type CostSample struct {
	Step  string
	Value float64
	Text  string
}

// GraphScene is what a renderer receives for one GRAPH block. Scratch, when
// set, is a per-run directory a renderer may stage files in.
type GraphScene struct {
	Dir      string
	Scratch  string
	Instance string
	Geometry *Geometry
	Graph    Graph
}

// RouteScene is what a renderer receives for one ROUTES block.
type RouteScene struct {
	Dir      string
	Scratch  string
	Instance string
	Geometry *Geometry
	Plan     RoutePlan
}

// CostScene is a run's full cost trajectory, handed to a chart sink once.
type CostScene struct {
	Dir      string
	Instance string
	Samples  []CostSample
}

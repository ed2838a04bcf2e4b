package decoder

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/vrpbench/internal/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geometry(n int) *artifact.Geometry {
	return &artifact.Geometry{Name: "g", Coords: make([][2]float64, n)}
}

func mustSplit(t *testing.T, in string) []Block {
	t.Helper()
	blocks, err := Split(strings.NewReader(in))
	require.NoError(t, err)
	return blocks
}

func TestDecodeBlocks_GraphEdges(t *testing.T) {
	blocks := mustSplit(t, capture(rule, "GRAPH_G", "Node 0: (1,2.5)(2,3.1)", rule))

	res := DecodeBlocks(blocks, geometry(3))

	require.Len(t, res.Graphs, 1)
	assert.Equal(t, []artifact.Edge{{From: 0, To: 1}, {From: 0, To: 2}}, res.Graphs[0].Edges)
	assert.Zero(t, res.Skipped)
}

func TestDecodeBlocks_GraphEdgesOutsideGeometryAreSkipped(t *testing.T) {
	blocks := mustSplit(t, capture(rule, "GRAPH_G", "Node 0: (1,0)(9,0)", "Node 9: (0,0)", "garbage", rule))

	res := DecodeBlocks(blocks, geometry(3))

	require.Len(t, res.Graphs, 1)
	assert.Equal(t, []artifact.Edge{{From: 0, To: 1}}, res.Graphs[0].Edges)
	assert.Equal(t, 3, res.Skipped)

	// Without geometry nothing can be checked, so every edge survives.
	res = DecodeBlocks(blocks, nil)
	assert.Len(t, res.Graphs[0].Edges, 3)
}

func TestDecodeBlocks_RoutesAndCost(t *testing.T) {
	blocks := mustSplit(t, capture(rule, "ROUTES_AFTER_LOOP", "Route #1: 3 4 5", "Cost 123.45", rule))

	res := DecodeBlocks(blocks, nil)

	want := []artifact.RoutePlan{{
		Heading:  "ROUTES_AFTER_LOOP",
		Routes:   [][]int{{3, 4, 5}},
		Cost:     123.45,
		CostText: "123.45",
		HasCost:  true,
	}}
	if diff := cmp.Diff(want, res.Plans); diff != "" {
		t.Errorf("plans mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []artifact.CostSample{{Step: "ROUTES_AFTER_LOOP", Value: 123.45, Text: "123.45"}}, res.Samples)
}

func TestDecodeBlocks_CostOnlyCountsAsLastLine(t *testing.T) {
	blocks := mustSplit(t, capture(rule, "ROUTES", "Cost 10", "Route #1: 1 2", rule))

	res := DecodeBlocks(blocks, nil)

	require.Len(t, res.Plans, 1)
	assert.False(t, res.Plans[0].HasCost)
	assert.Empty(t, res.Samples)
	assert.Equal(t, 1, res.Skipped)
}

func TestDecodeBlocks_MissingCostAndTruncatedRoute(t *testing.T) {
	blocks := mustSplit(t, capture(rule, "ROUTES", "Route #1: 1 2", "Route #2:", rule))

	res := DecodeBlocks(blocks, nil)

	require.Len(t, res.Plans, 1)
	assert.Equal(t, [][]int{{1, 2}}, res.Plans[0].Routes)
	assert.False(t, res.Plans[0].HasCost)
	assert.Equal(t, 1, res.Skipped)
}

func TestDecodeBlocks_UnknownHeadingIsConsumed(t *testing.T) {
	blocks := mustSplit(t, capture(
		rule, "DEBUG", "Route #1: 9 9 9", "Cost 1", rule,
		rule, "ROUTES_X", "Route #1: 1", "Cost 2", rule,
	))

	res := DecodeBlocks(blocks, nil)

	assert.Equal(t, []string{"DEBUG"}, res.Unknown)
	require.Len(t, res.Plans, 1)
	assert.Equal(t, "ROUTES_X", res.Plans[0].Heading)
	require.Len(t, res.Samples, 1)
	assert.Equal(t, 2.0, res.Samples[0].Value)
}

func TestDecodeBlocks_Final(t *testing.T) {
	blocks := mustSplit(t, capture(
		rule, "FINAL_OUTPUT:",
		"file-name,minCost,correctness",
		"A-n5-k2,123.45,VALID",
		"Route #1: 3 4 5",
		"Cost 123.45",
		rule,
		rule, "ROUTES_LATE", "Cost 1", rule,
	))

	res := DecodeBlocks(blocks, nil)

	require.NotNil(t, res.Final)
	assert.Equal(t, "file-name,minCost,correctness", res.Final.Header())
	assert.Equal(t, "A-n5-k2,123.45,VALID", res.Final.Data())
	assert.Len(t, res.Final.Lines, 4)
	assert.Equal(t, [][]int{{3, 4, 5}}, res.Final.Plan.Routes)
	assert.True(t, res.Final.Plan.HasCost)
	assert.Equal(t, 1, res.Ignored)
	assert.Empty(t, res.Plans, "blocks after FINAL_OUTPUT are not decoded")
	assert.Equal(t, 2, res.Blocks)
}

func TestDecodeBlocks_NoBlocks(t *testing.T) {
	res := DecodeBlocks(nil, nil)
	assert.True(t, res.Empty())
	assert.Nil(t, res.Final)
}

func TestDecodeBlocks_Idempotent(t *testing.T) {
	blocks := mustSplit(t, capture(
		rule, "GRAPH_A", "Node 0: (1,0)", "Node 1: (0,0)", rule,
		rule, "ROUTES_A", "Route #1: 1", "Cost 5", rule,
		rule, "FINAL_OUTPUT", "h", "d", rule,
	))
	geo := geometry(2)

	first := DecodeBlocks(blocks, geo)
	second := DecodeBlocks(blocks, geo)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("decoding is not idempotent (-first +second):\n%s", diff)
	}
}

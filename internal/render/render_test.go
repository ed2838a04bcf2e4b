package render

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/vrpbench/internal/artifact"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var geo = &artifact.Geometry{Name: "A", Coords: [][2]float64{{0, 0}, {1, 1}, {2, 0}}, Depot: 0}

func TestSnapshot_GraphScene(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	scratch := filepath.Join(dir, "temp")
	require.NoError(t, os.Mkdir(scratch, 0755))
	scene := artifact.GraphScene{
		Dir:      dir,
		Scratch:  scratch,
		Instance: "A",
		Geometry: geo,
		Graph:    artifact.Graph{Heading: "GRAPH_G_AFTER_CONSTRUCTION", Edges: []artifact.Edge{{From: 0, To: 1}}},
	}

	// --- Act ---
	err := Snapshot{}.RenderGraph(testContext(), scene)

	// --- Assert ---
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(dir, "GRAPH_G_AFTER_CONSTRUCTION.json"))
	require.NoError(t, err)
	var got GraphPayload
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, graphPayload(scene), got)

	staged, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, staged, "staged files are moved out of scratch")
}

func TestSnapshot_RouteSceneWithoutScratch(t *testing.T) {
	dir := t.TempDir()
	scene := artifact.RouteScene{
		Dir:      dir,
		Instance: "A",
		Plan:     artifact.RoutePlan{Heading: "ROUTES/../x", Routes: [][]int{{1, 2}}, Cost: 4.5, HasCost: true},
	}

	require.NoError(t, Snapshot{}.RenderRoutes(testContext(), scene))

	raw, err := os.ReadFile(filepath.Join(dir, "ROUTES_.._x.json"))
	require.NoError(t, err)
	var got RoutesPayload
	require.NoError(t, json.Unmarshal(raw, &got))
	require.NotNil(t, got.Cost)
	assert.Equal(t, 4.5, *got.Cost)
	assert.Equal(t, [][]int{{1, 2}}, got.Routes)
}

func TestSnapshot_CostChart(t *testing.T) {
	dir := t.TempDir()
	scene := artifact.CostScene{
		Dir:      dir,
		Instance: "A",
		Samples: []artifact.CostSample{
			{Step: "ROUTES_AFTER_LOOP", Value: 130.5, Text: "130.5"},
			{Step: "ROUTES_AFTER_REFINEMENT", Value: 123.45, Text: "123.45"},
		},
	}

	require.NoError(t, Snapshot{}.RenderCosts(testContext(), scene))

	raw, err := os.ReadFile(filepath.Join(dir, "A_costs.html"))
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "Plotly.newPlot")
	assert.Contains(t, html, `"ROUTES_AFTER_LOOP"`)
	assert.Contains(t, html, "123.45")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "ROUTES_AFTER_LOOP", fileName(" ROUTES_AFTER_LOOP "))
	assert.Equal(t, "a_b", fileName("a/b"))
	assert.Equal(t, "block", fileName(".."))
	assert.Equal(t, "block", fileName(""))
}

type countingSink struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingSink) hit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingSink) RenderGraph(context.Context, artifact.GraphScene) error  { return c.hit() }
func (c *countingSink) RenderRoutes(context.Context, artifact.RouteScene) error { return c.hit() }
func (c *countingSink) RenderCosts(context.Context, artifact.CostScene) error   { return c.hit() }

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	sink := NewMulti(a, nil, b)

	require.NoError(t, sink.RenderGraph(testContext(), artifact.GraphScene{}))
	require.NoError(t, sink.RenderRoutes(testContext(), artifact.RouteScene{}))
	require.NoError(t, sink.RenderCosts(testContext(), artifact.CostScene{}))

	assert.Equal(t, 3, a.calls)
	assert.Equal(t, 3, b.calls)
}

func TestMulti_ReturnsError(t *testing.T) {
	boom := errors.New("boom")
	ok, bad := &countingSink{}, &countingSink{err: boom}

	err := NewMulti(ok, bad).RenderGraph(testContext(), artifact.GraphScene{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.calls)
}

func TestNewMulti_Collapses(t *testing.T) {
	assert.Equal(t, Nop{}, NewMulti())
	only := &countingSink{}
	assert.Same(t, only, NewMulti(nil, only))
}

func TestLive_NotConnected(t *testing.T) {
	l := &Live{}
	err := l.RenderGraph(testContext(), artifact.GraphScene{})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, l.Close())
}

func TestDialLive_BadURL(t *testing.T) {
	_, err := DialLive(testContext(), LiveOptions{URL: "not a url"})
	assert.Error(t, err)
}

func TestDialLive_NoServer(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	ctx, cancel := context.WithTimeout(testContext(), 3*time.Second)
	defer cancel()

	_, err := DialLive(ctx, LiveOptions{URL: "http://127.0.0.1:1/socket.io/", ConnectTimeout: 2 * time.Second})

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "socket.io"), err.Error())
}

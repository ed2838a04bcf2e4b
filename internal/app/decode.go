package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/vrpbench/internal/artifact"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/specialistvlad/vrpbench/internal/decoder"
	"github.com/specialistvlad/vrpbench/internal/dispatch"
	"github.com/specialistvlad/vrpbench/internal/instance"
	"github.com/specialistvlad/vrpbench/internal/render"
)

// runDecode decodes one captured solver output offline, writing the same
// artifacts a sweep would.
func (a *App) runDecode(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var geo *artifact.Geometry
	if g, err := instance.Load(a.config.Instance); err != nil {
		logger.Warn("Instance geometry unavailable, decoding without it.", "instance", a.config.Instance, "error", err)
	} else {
		geo = g
	}

	capture, err := os.Open(a.config.Capture)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	defer capture.Close()

	dir := a.config.DecodeOut
	if dir == "" {
		dir = filepath.Dir(a.config.Capture)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	var sink render.Sink
	if a.config.Snapshots {
		sink = render.Snapshot{}
	}
	base := strings.TrimSuffix(filepath.Base(a.config.Instance), filepath.Ext(a.config.Instance))
	res, err := decoder.New(sink).Ingest(ctx, capture, decoder.Target{
		Geometry: geo,
		Dir:      dir,
		Base:     base,
		Scratch:  filepath.Join(dir, dispatch.ScratchDir),
	})
	if err != nil {
		return fmt.Errorf("decode %s: %w", a.config.Capture, err)
	}

	logger.Info("Capture decoded.",
		"blocks", res.Blocks,
		"graphs", len(res.Graphs),
		"routes", len(res.Plans),
		"costSamples", len(res.Samples),
		"unknown", len(res.Unknown),
		"final", res.Final != nil,
	)
	return nil
}

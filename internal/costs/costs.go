// Package costs records the cost trajectory of one solver run and flushes it
// as a step,value table plus a chart.
package costs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/specialistvlad/vrpbench/internal/artifact"
)

// ErrFlushed is returned when a recorder is flushed or written to a second time.
var ErrFlushed = errors.New("cost trajectory already flushed")

// Chart receives the complete trajectory of a run.
type Chart interface {
	RenderCosts(ctx context.Context, scene artifact.CostScene) error
}

// Recorder accumulates cost samples in encounter order.
type Recorder struct {
	mu      sync.Mutex
	samples []artifact.CostSample
	flushed bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a sample. Text is the value exactly as the solver printed it.
func (r *Recorder) Record(step string, value float64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flushed {
		return ErrFlushed
	}
	r.samples = append(r.samples, artifact.CostSample{Step: step, Value: value, Text: text})
	return nil
}

// Samples returns a copy of the recorded samples.
func (r *Recorder) Samples() []artifact.CostSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]artifact.CostSample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Flushed reports whether Flush has already run.
func (r *Recorder) Flushed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushed
}

// FileName returns the cost table name for an instance base name.
func FileName(base string) string {
	return base + "_costs.csv"
}

// Flush writes <base>_costs.csv into dir and hands the series to chart, which
// may be nil. It runs at most once; with no samples nothing is written.
func (r *Recorder) Flush(ctx context.Context, dir, base string, chart Chart) error {
	r.mu.Lock()
	if r.flushed {
		r.mu.Unlock()
		return ErrFlushed
	}
	r.flushed = true
	samples := r.samples
	r.mu.Unlock()

	if len(samples) == 0 {
		return nil
	}
	if err := WriteTable(filepath.Join(dir, FileName(base)), samples); err != nil {
		return err
	}
	if chart == nil {
		return nil
	}
	scene := artifact.CostScene{Dir: dir, Instance: base, Samples: samples}
	if err := chart.RenderCosts(ctx, scene); err != nil {
		return fmt.Errorf("rendering cost chart for %s: %w", base, err)
	}
	return nil
}

// WriteTable writes samples as a step,value CSV.
func WriteTable(path string, samples []artifact.CostSample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cost table: %w", err)
	}
	w := csv.NewWriter(f)
	rows := make([][]string, 0, len(samples)+1)
	rows = append(rows, []string{"step", "value"})
	for _, s := range samples {
		rows = append(rows, []string{s.Step, s.Text})
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing cost table: %w", err)
	}
	return f.Close()
}

// ReadTable parses a step,value CSV written by WriteTable.
func ReadTable(path string) ([]artifact.CostSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading cost table %s: %w", path, err)
	}
	var out []artifact.CostSample
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("cost table %s line %d: %w", path, i+1, err)
		}
		out = append(out, artifact.CostSample{Step: row[0], Value: v, Text: row[1]})
	}
	return out, nil
}

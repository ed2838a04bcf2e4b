// Package aggregate reduces persisted per-instance solutions into one sorted
// summary table per combination, and compares those tables across
// combinations.
package aggregate

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrNoSolution is returned when a solution file is missing or has no data line.
var ErrNoSolution = errors.New("no persisted solution")

// Column names of the accumulated table.
const (
	ColInstance     = "file-name"
	ColTimeToLoop   = "time_till_loop"
	ColTotalElapsed = "total_elapsed_time"
	ColMinCost      = "minCost"
	ColCorrectness  = "correctness"
)

// Header is the fixed header of every accumulated table.
var Header = []string{ColInstance, ColTimeToLoop, ColTotalElapsed, ColMinCost, ColCorrectness}

// SummaryRow is the reduced result of one instance.
type SummaryRow struct {
	Instance     string
	TimeToLoop   string
	TotalElapsed string
	MinCost      string
	Correctness  string
}

// Record returns the row in Header order.
func (r SummaryRow) Record() []string {
	return []string{r.Instance, r.TimeToLoop, r.TotalElapsed, r.MinCost, r.Correctness}
}

// aliases maps header spellings seen in solver output to table columns.
// Only explicit column names are listed; a bare "cost" or "time" from
// another method's header is not a column of this table.
var aliases = map[string]string{
	"time_till_loop":     ColTimeToLoop,
	"time_to_loop":       ColTimeToLoop,
	"total_elapsed_time": ColTotalElapsed,
	"total_elapsed":      ColTotalElapsed,
	"mincost":            ColMinCost,
	"min_cost":           ColMinCost,
	"correctness":        ColCorrectness,
}

// schema maps table columns to field positions in the data line.
type schema map[string]int

// positional is the schema used when a full-width header names no known
// column: the instance name followed by the four table fields.
var positional = schema{
	ColTimeToLoop:   1,
	ColTotalElapsed: 2,
	ColMinCost:      3,
	ColCorrectness:  4,
}

func schemaFor(header string) schema {
	s := schema{}
	names := splitFields(header)
	for i, name := range names {
		if col, ok := aliases[strings.ToLower(name)]; ok {
			if _, dup := s[col]; !dup {
				s[col] = i
			}
		}
	}
	if len(s) == 0 && len(names) >= len(Header) {
		return positional
	}
	return s
}

func (s schema) row(instance string, fields []string) SummaryRow {
	get := func(col string) string {
		i, ok := s[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	return SummaryRow{
		Instance:     instance,
		TimeToLoop:   get(ColTimeToLoop),
		TotalElapsed: get(ColTotalElapsed),
		MinCost:      get(ColMinCost),
		Correctness:  get(ColCorrectness),
	}
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ReadSummary reads the header and first data line of a persisted solution
// and reduces them to a row for instance. Undersized lines yield empty
// fields rather than an error.
func ReadSummary(path, instance string) (SummaryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SummaryRow{}, fmt.Errorf("%s: %w", path, ErrNoSolution)
		}
		return SummaryRow{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for len(lines) < 2 && sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return SummaryRow{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(lines) < 2 {
		return SummaryRow{}, fmt.Errorf("%s has fewer than two lines: %w", path, ErrNoSolution)
	}
	return schemaFor(lines[0]).row(instance, splitFields(lines[1])), nil
}

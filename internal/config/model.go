package config

import (
	"strings"
	"time"
)

// Model is the unified, format-agnostic representation of a sweep file.
type Model struct {
	Solver   Solver
	Corpus   Corpus
	Output   Output
	Dispatch Dispatch
	Render   Render
	Ledger   Ledger
	// Params keep their file order; it fixes the combination order.
	Params []*Param
}

// Solver describes the executable under test.
type Solver struct {
	Executable string
	// Timeout bounds one invocation. Zero means unbounded.
	Timeout time.Duration
}

// Corpus locates the instance files.
type Corpus struct {
	Root      string
	Extension string
}

// Output locates the output root.
type Output struct {
	Root string
}

// Dispatch tunes the worker pool.
type Dispatch struct {
	Workers    int
	LaunchRate float64
}

// Render selects the renderer sinks.
type Render struct {
	Snapshots     bool
	LiveURL       string
	LiveNamespace string
}

// Ledger configures the optional results ledger.
type Ledger struct {
	Path string
}

// Param is one sweep dimension. Values holds already split candidates, Spec a
// raw "{a,b}" candidate list; both may be set and are combined.
type Param struct {
	Name   string
	Values []string
	Spec   string
}

// Merge folds other into m. Non-zero scalars of other win; params with a
// name already in m extend it, new ones are appended.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	setString(&m.Solver.Executable, other.Solver.Executable)
	if other.Solver.Timeout != 0 {
		m.Solver.Timeout = other.Solver.Timeout
	}
	setString(&m.Corpus.Root, other.Corpus.Root)
	setString(&m.Corpus.Extension, other.Corpus.Extension)
	setString(&m.Output.Root, other.Output.Root)
	if other.Dispatch.Workers != 0 {
		m.Dispatch.Workers = other.Dispatch.Workers
	}
	if other.Dispatch.LaunchRate != 0 {
		m.Dispatch.LaunchRate = other.Dispatch.LaunchRate
	}
	m.Render.Snapshots = m.Render.Snapshots || other.Render.Snapshots
	setString(&m.Render.LiveURL, other.Render.LiveURL)
	setString(&m.Render.LiveNamespace, other.Render.LiveNamespace)
	setString(&m.Ledger.Path, other.Ledger.Path)

	for _, p := range other.Params {
		if existing := m.Param(p.Name); existing != nil {
			existing.Values = append(existing.Values, p.Values...)
			existing.Spec = joinSpec(existing.Spec, p.Spec)
			continue
		}
		cp := *p
		cp.Values = append([]string(nil), p.Values...)
		m.Params = append(m.Params, &cp)
	}
}

// Param returns the parameter called name, or nil.
func (m *Model) Param(name string) *Param {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func joinSpec(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return unbrace(a) + "," + unbrace(b)
}

func unbrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s[1 : len(s)-1]
	}
	return s
}

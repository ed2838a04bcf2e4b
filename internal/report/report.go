// Package report defines the WorkItem-local failure taxonomy and a
// concurrency-safe collector for it. None of these failures abort a sweep.
package report

import (
	"fmt"
	"sort"
	"sync"
)

// Kind classifies a WorkItem failure.
type Kind int

const (
	// InvocationFailure means the solver failed to launch, exited non-zero or timed out.
	InvocationFailure Kind = iota
	// DecodeFailure means captured output could not be decoded or persisted.
	DecodeFailure
	// AggregationGap means no persisted solution existed when aggregating.
	AggregationGap
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case InvocationFailure:
		return "invocation_failure"
	case DecodeFailure:
		return "decode_failure"
	case AggregationGap:
		return "aggregation_gap"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is one reported WorkItem failure.
type Failure struct {
	Kind        Kind
	Instance    string
	Combination string
	Cause       error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: instance %q, combination %q: %v", f.Kind, f.Instance, f.Combination, f.Cause)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// New is a convenience constructor for a Failure.
func New(kind Kind, instance, combination string, cause error) *Failure {
	return &Failure{Kind: kind, Instance: instance, Combination: combination, Cause: cause}
}

// Report collects failures from concurrent workers.
type Report struct {
	mu       sync.Mutex
	failures []*Failure
	counts   map[Kind]int
}

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{counts: make(map[Kind]int)}
}

// Add records a failure.
func (r *Report) Add(f *Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
	r.counts[f.Kind]++
}

// Count returns how many failures of the given kind were recorded.
func (r *Report) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}

// Len returns the total number of recorded failures.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

// Failures returns a copy of all failures ordered by combination, instance and kind,
// so the result does not depend on worker interleaving.
func (r *Report) Failures() []*Failure {
	r.mu.Lock()
	out := make([]*Failure, len(r.failures))
	copy(out, r.failures)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Combination != out[j].Combination {
			return out[i].Combination < out[j].Combination
		}
		if out[i].Instance != out[j].Instance {
			return out[i].Instance < out[j].Instance
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

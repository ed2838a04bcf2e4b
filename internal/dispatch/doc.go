// Package dispatch runs the solver over a sweep.
//
// Every (combination, instance) pair is a WorkItem with its own directory
// under the output root:
//
//	<output root>/<combination>/<relative instance dir>/<instance base>/
//	    <base>.exe_sol    captured standard output
//	    <base>.sol        persisted FINAL_OUTPUT block
//	    <base>_costs.csv  cost trajectory
//
// WorkItems flow through a bounded worker pool fed by a ready channel. A
// worker invokes the solver, captures its output and decodes it before
// taking the next item. Each combination keeps an atomic countdown of its
// outstanding items; the worker that brings it to zero rebuilds the
// combination's accumulated table. Cancelling the context skips the items
// not yet started, and a combination with skipped items keeps the table it
// had before.
package dispatch

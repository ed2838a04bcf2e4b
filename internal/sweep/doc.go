// Package sweep expands named parameter candidate lists into the Cartesian
// product of combinations that drive a benchmark sweep.
//
// # Ordering
//
// Parameters keep the order in which they were added. Combinations are
// produced with the rightmost parameter varying fastest, so for
//
//	a: {1,2}
//	b: {x,y}
//
// the sequence is a-1_b-x, a-1_b-y, a-2_b-x, a-2_b-y.
//
// # Naming
//
// Every combination derives two things from its non-empty selections: the
// argument list handed to the solver (name=value tokens) and the canonical
// directory name (name-value pairs joined by "_", or "noargs"). Both are pure
// functions of the selected values. Empty selections come from the sentinel
// value that keeps a parameter with no candidates in the product without
// contributing an argument.
package sweep

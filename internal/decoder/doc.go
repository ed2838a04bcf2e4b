// Package decoder turns a solver's captured standard output into typed
// artifacts.
//
// Capture text is a flat sequence of blocks. A block opens with a heading
// line and runs until the next delimiter (a line of at least four dashes):
//
//	----------------------------------------------
//	ROUTES_AFTER_LOOP
//	Route #1: 3 4 5
//	Cost 123.45
//	----------------------------------------------
//
// The tokenizer is a small state machine (seeking, in block, terminal). The
// grammar parses the three line shapes the solver prints inside blocks:
// graph adjacency ("Node u: (v,w)..."), routes ("Route #k: ...") and the
// cost line ("Cost x").
//
// DecodeBlocks is the pure half: it folds blocks into a Result and never
// touches the filesystem. Decoder.Ingest is the side-effecting half used by
// the dispatcher: it streams blocks to a Renderer, records cost samples,
// persists the FINAL_OUTPUT block and tears down the run's scratch space.
package decoder

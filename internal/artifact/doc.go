// Package artifact holds the typed values decoded from a solver run: the
// directed graph, intermediate route plans, the final solution and the cost
// trajectory, together with the instance geometry the renderer needs.
package artifact

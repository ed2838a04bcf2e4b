package config

import "context"

// Loader is the interface for a format-specific sweep file loader.
type Loader interface {
	// Load reads every file in paths in order and merges them into one
	// Model. Later files override scalar settings of earlier ones.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

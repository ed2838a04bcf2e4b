package app

import (
	"context"
	"fmt"
)

// runCompare rebuilds the comparison table of an existing output root.
func (a *App) runCompare(ctx context.Context) error {
	if err := a.writeComparison(ctx, a.config.OutputRoot); err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	return nil
}

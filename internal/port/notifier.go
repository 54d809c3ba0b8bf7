package port

import (
	"context"

	"freightx/internal/domain"
)

// RunNotifier delivers the summary of a finished extraction run.
type RunNotifier interface {
	SendRunSummary(ctx context.Context, summary domain.RunSummary) error
}

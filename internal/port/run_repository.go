package port

import (
	"context"

	"freightx/internal/domain"
)

// RunRepository keeps a history of completed pipeline runs.
type RunRepository interface {
	Save(ctx context.Context, summary domain.RunSummary) error
}

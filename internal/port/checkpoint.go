package port

import (
	"context"

	"freightx/internal/domain"
)

// CheckpointStore persists processed emails so an interrupted run can resume.
// Append must be atomic: after a crash the store holds either the previous
// entries or the previous entries plus the appended ones.
type CheckpointStore interface {
	Load(ctx context.Context) ([]domain.CheckpointEntry, error)
	Append(ctx context.Context, entries []domain.CheckpointEntry) error
	Clear(ctx context.Context) error
}

package postgres

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"freightx/internal/domain"
	"freightx/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Save(ctx context.Context, s domain.RunSummary) error {
	failedIDs := s.FailedIDs
	if failedIDs == nil {
		failedIDs = []string{}
	}
	ids, err := json.Marshal(failedIDs)
	if err != nil {
		return fmt.Errorf("encoding failed ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO extraction_runs
		 (run_id, run_name, total, processed, skipped, succeeded, failed, failed_ids, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.RunID, s.RunName, s.Total, s.Processed, s.Skipped, s.Succeeded, s.Failed, ids, s.StartedAt, s.FinishedAt)
	if err != nil {
		return fmt.Errorf("inserting run summary: %w", err)
	}
	return nil
}

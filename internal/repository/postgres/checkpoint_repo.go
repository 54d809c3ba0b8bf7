package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"freightx/internal/domain"
	"freightx/internal/port"
)

type checkpointRepo struct {
	db      *sqlx.DB
	runName string
}

// NewCheckpointRepo creates a PostgreSQL-backed CheckpointStore scoped to one
// run name.
func NewCheckpointRepo(db *sqlx.DB, runName string) port.CheckpointStore {
	return &checkpointRepo{db: db, runName: runName}
}

type checkpointRow struct {
	EmailID     string    `db:"email_id"`
	Status      string    `db:"status"`
	Stage       string    `db:"stage"`
	Error       string    `db:"error"`
	Record      []byte    `db:"record"`
	ProcessedAt time.Time `db:"processed_at"`
}

func (r *checkpointRepo) Load(ctx context.Context) ([]domain.CheckpointEntry, error) {
	var rows []checkpointRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT email_id, status, stage, error, record, processed_at
		 FROM checkpoint_entries
		 WHERE run_name = $1
		 ORDER BY seq`, r.runName)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint entries: %w", err)
	}

	entries := make([]domain.CheckpointEntry, 0, len(rows))
	for _, row := range rows {
		var rec domain.ShipmentRecord
		if err := json.Unmarshal(row.Record, &rec); err != nil {
			return nil, fmt.Errorf("%w: record for %s: %v", domain.ErrCheckpointCorrupt, row.EmailID, err)
		}
		entries = append(entries, domain.CheckpointEntry{
			EmailID:     row.EmailID,
			Status:      domain.ExtractionStatus(row.Status),
			Stage:       domain.Stage(row.Stage),
			Error:       row.Error,
			Record:      rec,
			ProcessedAt: row.ProcessedAt,
		})
	}
	return entries, nil
}

// Append inserts entries in one transaction. An email already recorded for
// the run keeps its first outcome.
func (r *checkpointRepo) Append(ctx context.Context, entries []domain.CheckpointEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning checkpoint tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		record, err := json.Marshal(e.Record)
		if err != nil {
			return fmt.Errorf("encoding record for %s: %w", e.EmailID, err)
		}
		processedAt := e.ProcessedAt
		if processedAt.IsZero() {
			processedAt = time.Now().UTC()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO checkpoint_entries (run_name, email_id, status, stage, error, record, processed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (run_name, email_id) DO NOTHING`,
			r.runName, e.EmailID, string(e.Status), string(e.Stage), e.Error, record, processedAt)
		if err != nil {
			return fmt.Errorf("inserting checkpoint entry %s: %w", e.EmailID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing checkpoint tx: %w", err)
	}
	return nil
}

func (r *checkpointRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checkpoint_entries WHERE run_name = $1`, r.runName)
	if err != nil {
		return fmt.Errorf("clearing checkpoint entries: %w", err)
	}
	return nil
}

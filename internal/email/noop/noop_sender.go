package noop

import (
	"context"

	"github.com/rs/zerolog"

	"freightx/internal/domain"
	"freightx/internal/email"
	"freightx/internal/port"
)

type noopSender struct {
	log zerolog.Logger
}

// NewNoopSender creates a RunNotifier that only logs the summary.
func NewNoopSender(log zerolog.Logger) port.RunNotifier {
	return &noopSender{log: log}
}

func (s *noopSender) SendRunSummary(_ context.Context, summary domain.RunSummary) error {
	s.log.Info().
		Str("run_id", summary.RunID).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Strs("failed_ids", summary.FailedIDs).
		Msg("[NOOP EMAIL] " + email.Subject(summary))
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"freightx/internal/config"
	"freightx/internal/domain"
	"freightx/internal/parser"
	"freightx/internal/port"
	"freightx/internal/validator"
)

// PromptBuilder renders the extraction prompt for one email.
type PromptBuilder interface {
	Build(email domain.Email) (string, error)
}

// RecordNormalizer turns a parsed candidate into a final record.
type RecordNormalizer interface {
	Normalize(c *parser.Candidate, email domain.Email) (domain.ShipmentRecord, []validator.Anomaly)
}

// Outcome is the terminal result of one email. Record is always usable: a
// failed email carries the degraded record.
type Outcome struct {
	Record    domain.ShipmentRecord
	Status    domain.ExtractionStatus
	Stage     domain.Stage
	Err       error
	Anomalies []validator.Anomaly
}

// Failed reports whether the email ended in the degraded state.
func (o Outcome) Failed() bool { return o.Status == domain.ExtractionStatusFailed }

// Entry converts the outcome into a checkpoint entry.
func (o Outcome) Entry(processedAt time.Time) domain.CheckpointEntry {
	e := domain.CheckpointEntry{
		EmailID:     o.Record.EmailID,
		Status:      o.Status,
		Stage:       o.Stage,
		Record:      o.Record,
		ProcessedAt: processedAt.UTC(),
	}
	if o.Err != nil {
		e.Error = o.Err.Error()
	}
	return e
}

// Option configures an ExtractionService.
type Option func(*ExtractionService)

// WithCheckpointStore enables resumable runs.
func WithCheckpointStore(store port.CheckpointStore) Option {
	return func(s *ExtractionService) { s.checkpoint = store }
}

// WithNotifier sends the run summary when a run completes.
func WithNotifier(n port.RunNotifier) Option {
	return func(s *ExtractionService) { s.notifier = n }
}

// WithRunRepository records every completed run.
func WithRunRepository(r port.RunRepository) Option {
	return func(s *ExtractionService) { s.runs = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ExtractionService) { s.now = now }
}

// ExtractionService drives each email through prompt, LLM, parse and
// normalize, one email at a time, and guarantees one record per email.
type ExtractionService struct {
	prompts    PromptBuilder
	llm        port.LLMClient
	normalizer RecordNormalizer
	checkpoint port.CheckpointStore
	notifier   port.RunNotifier
	runs       port.RunRepository
	limiter    *rate.Limiter
	cfg        config.PipelineConfig
	log        zerolog.Logger
	now        func() time.Time
}

// NewExtractionService creates a new ExtractionService. cfg.EmailDelay paces
// consecutive LLM-bound emails; zero disables pacing.
func NewExtractionService(
	prompts PromptBuilder,
	llm port.LLMClient,
	normalizer RecordNormalizer,
	cfg config.PipelineConfig,
	log zerolog.Logger,
	opts ...Option,
) *ExtractionService {
	limit := rate.Inf
	if cfg.EmailDelay > 0 {
		limit = rate.Every(cfg.EmailDelay)
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = 1
	}
	s := &ExtractionService{
		prompts:    prompts,
		llm:        llm,
		normalizer: normalizer,
		limiter:    rate.NewLimiter(limit, 1),
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractOne runs the per-email state machine. It never returns without a
// record; any failing stage short-circuits to the degraded record.
func (s *ExtractionService) ExtractOne(ctx context.Context, email domain.Email) Outcome {
	log := s.log.With().Str("email_id", email.ID).Logger()

	fail := func(stage domain.Stage, err error) Outcome {
		log.Warn().Err(err).Str("stage", string(stage)).Msg("extraction failed, emitting degraded record")
		return Outcome{
			Record: validator.Degraded(email.ID),
			Status: domain.ExtractionStatusFailed,
			Stage:  stage,
			Err:    err,
		}
	}

	log.Debug().Str("stage", string(domain.StagePrompting)).Msg("building prompt")
	prompt, err := s.prompts.Build(email)
	if err != nil {
		return fail(domain.StagePrompting, fmt.Errorf("building prompt: %w", err))
	}

	log.Debug().Str("stage", string(domain.StageAwaitingLLM)).Int("prompt_len", len(prompt)).Msg("calling llm")
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return fail(domain.StageAwaitingLLM, fmt.Errorf("llm completion: %w", err))
	}

	log.Debug().Str("stage", string(domain.StageParsing)).Int("response_len", len(raw)).Msg("parsing response")
	candidate, err := parser.Parse(raw)
	if err != nil {
		var pf *parser.ParseFailure
		if errors.As(err, &pf) {
			log.Debug().Str("raw", truncate(pf.Raw, 500)).Msg("unparseable llm output")
		}
		return fail(domain.StageParsing, err)
	}

	log.Debug().Str("stage", string(domain.StageNormalizing)).Int("fields", candidate.Len()).Msg("normalizing")
	record, anomalies := s.normalizer.Normalize(candidate, email)
	for _, a := range anomalies {
		log.Debug().Str("field", a.Field).Str("value", a.Value).Str("reason", a.Reason).Msg("field normalized")
	}

	return Outcome{
		Record:    record,
		Status:    domain.ExtractionStatusDone,
		Stage:     domain.StageDone,
		Anomalies: anomalies,
	}
}

// Run processes emails in order and returns one record per input email, in
// input order. Emails already in the checkpoint are not sent to the LLM again;
// their recorded result is reused. On cancellation, completed emails are
// checkpointed, the interrupted one is not, and ctx.Err() is returned.
func (s *ExtractionService) Run(ctx context.Context, emails []domain.Email) ([]domain.ShipmentRecord, domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID:     uuid.NewString(),
		RunName:   s.cfg.RunName,
		Total:     len(emails),
		StartedAt: s.now().UTC(),
	}
	log := s.log.With().Str("run_id", summary.RunID).Logger()

	recorded, err := s.loadCheckpoint(ctx)
	if err != nil {
		return nil, summary, err
	}
	if len(recorded) > 0 {
		log.Info().Int("entries", len(recorded)).Msg("resuming from checkpoint")
	}

	var pending []domain.CheckpointEntry
	flush := func(ctx context.Context) {
		if s.checkpoint == nil || len(pending) == 0 {
			return
		}
		if err := s.checkpoint.Append(ctx, pending); err != nil {
			log.Error().Err(err).Int("entries", len(pending)).Msg("checkpoint write failed, will retry")
			return
		}
		pending = nil
	}

	records := make([]domain.ShipmentRecord, 0, len(emails))
	for i, email := range emails {
		if rec, ok := recorded[email.ID]; ok {
			records = append(records, rec)
			summary.Skipped++
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			flush(context.WithoutCancel(ctx))
			return nil, s.finish(summary), fmt.Errorf("run interrupted before %s: %w", email.ID, err)
		}

		out := s.ExtractOne(ctx, email)
		if ctx.Err() != nil {
			flush(context.WithoutCancel(ctx))
			return nil, s.finish(summary), fmt.Errorf("run interrupted at %s: %w", email.ID, ctx.Err())
		}

		records = append(records, out.Record)
		recorded[email.ID] = out.Record
		summary.Processed++
		if out.Failed() {
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, email.ID)
		} else {
			summary.Succeeded++
		}

		pending = append(pending, out.Entry(s.now()))
		if len(pending) >= s.cfg.CheckpointEvery {
			flush(ctx)
		}

		log.Info().
			Str("email_id", email.ID).
			Str("status", string(out.Status)).
			Int("n", i+1).
			Int("total", len(emails)).
			Msg("email processed")
	}
	flush(ctx)

	if s.checkpoint != nil && s.cfg.ClearCheckpoint && len(pending) == 0 {
		if err := s.checkpoint.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("clearing checkpoint failed")
		}
	}

	summary = s.finish(summary)
	log.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("elapsed", summary.Elapsed).
		Msg("run complete")

	if s.runs != nil {
		if err := s.runs.Save(ctx, summary); err != nil {
			log.Warn().Err(err).Msg("saving run summary failed")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.SendRunSummary(ctx, summary); err != nil {
			log.Warn().Err(err).Msg("sending run summary failed")
		}
	}
	return records, summary, nil
}

func (s *ExtractionService) loadCheckpoint(ctx context.Context) (map[string]domain.ShipmentRecord, error) {
	recorded := make(map[string]domain.ShipmentRecord)
	if s.checkpoint == nil {
		return recorded, nil
	}
	entries, err := s.checkpoint.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	for _, e := range entries {
		if _, dup := recorded[e.EmailID]; !dup {
			recorded[e.EmailID] = e.Record
		}
	}
	return recorded, nil
}

func (s *ExtractionService) finish(summary domain.RunSummary) domain.RunSummary {
	summary.FinishedAt = s.now().UTC()
	summary.Elapsed = summary.FinishedAt.Sub(summary.StartedAt)
	return summary
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

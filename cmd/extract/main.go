package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"freightx/internal/config"
	"freightx/internal/dataset"
	"freightx/internal/email/noop"
	"freightx/internal/email/ses"
	"freightx/internal/export"
	"freightx/internal/llm"
	"freightx/internal/llm/bedrock"
	"freightx/internal/llm/claude"
	"freightx/internal/llm/gemini"
	"freightx/internal/llm/openai"
	"freightx/internal/logger"
	"freightx/internal/port"
	"freightx/internal/portref"
	"freightx/internal/prompt"
	"freightx/internal/repository/postgres"
	"freightx/internal/service"
	filestore "freightx/internal/storage/file"
	s3storage "freightx/internal/storage/s3"
	"freightx/internal/validator"
)

type options struct {
	configFile     string
	input          string
	output         string
	runName        string
	format         string
	keepCheckpoint bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "extract",
		Short:        "Extract shipment records from freight enquiry emails",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "config file (yaml, json or toml)")
	f.StringVarP(&opts.input, "input", "i", "", "input emails JSON (overrides pipeline.input)")
	f.StringVarP(&opts.output, "output", "o", "", "output file (overrides pipeline.output)")
	f.StringVar(&opts.runName, "run-name", "", "checkpoint run name (overrides pipeline.run_name)")
	f.StringVar(&opts.format, "format", "", "output format: json, csv or xlsx (default from output extension)")
	f.BoolVar(&opts.keepCheckpoint, "keep-checkpoint", false, "keep the checkpoint after a completed run")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	cfg, err := config.LoadFile(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg, opts)

	log := logger.Component(logger.New(cfg.Log), "extract")

	format := export.FormatForPath(cfg.Pipeline.Output)
	if cfg.Export.Format != "" {
		if format, err = export.ParseFormat(cfg.Export.Format); err != nil {
			return err
		}
	}

	emails, err := dataset.LoadEmails(cfg.Pipeline.Input)
	if err != nil {
		return fmt.Errorf("failed to load emails: %w", err)
	}

	ports, err := portref.Load(cfg.Reference.PortsFile, cfg.Reference.OverridesFile)
	if err != nil {
		return fmt.Errorf("failed to load port reference: %w", err)
	}
	log.Info().Int("ports", ports.Len()).Int("skipped", ports.Skipped()).Msg("port reference loaded")

	prompts, err := prompt.NewBuilder(ports)
	if err != nil {
		return fmt.Errorf("failed to build prompt template: %w", err)
	}

	registerProviders(ctx)
	chain, err := llm.NewChain(cfg.LLM.Providers(),
		llm.WithFallbackLogger(logger.Component(log, "llm")))
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	client := llm.NewRetryingClient(chain, llm.PolicyFromConfig(cfg.Retry), llm.SystemClock, logger.Component(log, "retry"))

	svcOpts, closeStore, err := checkpointOptions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	notifier, err := newNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	svcOpts = append(svcOpts, service.WithNotifier(notifier))

	svc := service.NewExtractionService(
		prompts,
		client,
		validator.NewNormalizer(ports),
		cfg.Pipeline,
		logger.Component(log, "pipeline"),
		svcOpts...,
	)

	log.Info().
		Int("emails", len(emails)).
		Str("input", cfg.Pipeline.Input).
		Str("checkpoint_store", cfg.Pipeline.CheckpointStore).
		Msg("starting run")

	records, summary, err := svc.Run(ctx, emails)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Int("processed", summary.Processed).Msg("run interrupted, rerun to resume from checkpoint")
		}
		return err
	}

	if err := export.WriteFile(cfg.Pipeline.Output, format, records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info().
		Str("output", cfg.Pipeline.Output).
		Str("format", string(format)).
		Int("records", len(records)).
		Msg("output written")
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	if opts.input != "" {
		cfg.Pipeline.Input = opts.input
	}
	if opts.output != "" {
		cfg.Pipeline.Output = opts.output
	}
	if opts.runName != "" {
		cfg.Pipeline.RunName = opts.runName
	}
	if opts.format != "" {
		cfg.Export.Format = opts.format
	}
	if cmd.Flags().Changed("keep-checkpoint") {
		cfg.Pipeline.ClearCheckpoint = !opts.keepCheckpoint
	}
}

func registerProviders(ctx context.Context) {
	chat := func(cfg *config.LLMProviderConfig) (port.LLMClient, error) {
		return openai.NewClient(cfg), nil
	}
	llm.RegisterProvider("groq", chat)
	llm.RegisterProvider("openai", chat)
	llm.RegisterProvider("claude", func(cfg *config.LLMProviderConfig) (port.LLMClient, error) {
		return claude.NewClient(cfg), nil
	})
	llm.RegisterProvider("gemini", func(cfg *config.LLMProviderConfig) (port.LLMClient, error) {
		c, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	llm.RegisterProvider("bedrock", func(cfg *config.LLMProviderConfig) (port.LLMClient, error) {
		c, err := bedrock.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// checkpointOptions wires the configured checkpoint store. The returned func
// releases any connection it opened.
func checkpointOptions(ctx context.Context, cfg *config.Config) ([]service.Option, func(), error) {
	noClose := func() {}
	switch cfg.Pipeline.CheckpointStore {
	case "", "file":
		store := filestore.NewCheckpointStore(cfg.Pipeline.CheckpointPath)
		return []service.Option{service.WithCheckpointStore(store)}, noClose, nil
	case "s3":
		objects, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, noClose, fmt.Errorf("failed to create S3 client: %w", err)
		}
		store := s3storage.NewCheckpointStore(objects, cfg.S3.Bucket, cfg.S3.Prefix, cfg.Pipeline.RunName)
		return []service.Option{service.WithCheckpointStore(store)}, noClose, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return nil, noClose, fmt.Errorf("failed to connect to database: %w", err)
		}
		return []service.Option{
			service.WithCheckpointStore(postgres.NewCheckpointRepo(db, cfg.Pipeline.RunName)),
			service.WithRunRepository(postgres.NewRunRepo(db)),
		}, func() { _ = db.Close() }, nil
	case "none":
		return nil, noClose, nil
	}
	return nil, noClose, fmt.Errorf("unknown checkpoint store %q", cfg.Pipeline.CheckpointStore)
}

func newNotifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (port.RunNotifier, error) {
	switch cfg.Email.Provider {
	case "ses":
		n, err := ses.NewSESSender(ctx, &cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES sender: %w", err)
		}
		return n, nil
	case "", "noop":
		return noop.NewNoopSender(logger.Component(log, "notifier")), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
}

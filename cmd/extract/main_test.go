package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/config"
)

func TestApplyFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"-i", "in.json", "-o", "out.xlsx", "--run-name", "adhoc", "--keep-checkpoint"}))

	cfg := &config.Config{Pipeline: config.PipelineConfig{Input: "emails_input.json", ClearCheckpoint: true}}
	applyFlags(cmd, cfg, options{input: "in.json", output: "out.xlsx", runName: "adhoc", keepCheckpoint: true})

	assert.Equal(t, "in.json", cfg.Pipeline.Input)
	assert.Equal(t, "out.xlsx", cfg.Pipeline.Output)
	assert.Equal(t, "adhoc", cfg.Pipeline.RunName)
	assert.False(t, cfg.Pipeline.ClearCheckpoint)
}

func TestApplyFlags_UnsetKeepsConfig(t *testing.T) {
	cmd := newRootCmd()
	cfg := &config.Config{Pipeline: config.PipelineConfig{Input: "emails_input.json", ClearCheckpoint: true}}
	applyFlags(cmd, cfg, options{})

	assert.Equal(t, "emails_input.json", cfg.Pipeline.Input)
	assert.True(t, cfg.Pipeline.ClearCheckpoint)
}

func TestCheckpointOptions(t *testing.T) {
	cfg := &config.Config{Pipeline: config.PipelineConfig{CheckpointStore: "file", CheckpointPath: t.TempDir() + "/cp.json"}}
	opts, closeStore, err := checkpointOptions(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()
	assert.Len(t, opts, 1)

	cfg.Pipeline.CheckpointStore = "none"
	opts, _, err = checkpointOptions(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, opts)

	cfg.Pipeline.CheckpointStore = "redis"
	_, _, err = checkpointOptions(context.Background(), cfg)
	assert.ErrorContains(t, err, `unknown checkpoint store "redis"`)
}

func TestNewNotifier(t *testing.T) {
	n, err := newNotifier(context.Background(), &config.Config{Email: config.EmailConfig{Provider: "noop"}}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, n)

	_, err = newNotifier(context.Background(), &config.Config{Email: config.EmailConfig{Provider: "smtp"}}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown email provider")
}

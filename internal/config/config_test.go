package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLM.Primary.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Primary.DefaultModel)
	assert.Len(t, cfg.LLM.Providers(), 1)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, "emails_input.json", cfg.Pipeline.Input)
	assert.Equal(t, "file", cfg.Pipeline.CheckpointStore)
	assert.Equal(t, 1, cfg.Pipeline.CheckpointEvery)
	assert.True(t, cfg.Pipeline.ClearCheckpoint)
	assert.Equal(t, time.Second, cfg.Pipeline.EmailDelay)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Empty(t, cfg.Export.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FREIGHTX_PIPELINE_INPUT", "batch.json")
	t.Setenv("FREIGHTX_PIPELINE_EMAIL_DELAY", "250ms")
	t.Setenv("FREIGHTX_PIPELINE_CHECKPOINT_EVERY", "0")
	t.Setenv("FREIGHTX_LLM_SECONDARY_PROVIDER", "gemini")
	t.Setenv("FREIGHTX_EXPORT_FORMAT", "xlsx")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "batch.json", cfg.Pipeline.Input)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.EmailDelay)
	assert.Equal(t, 1, cfg.Pipeline.CheckpointEvery, "non-positive cadence falls back to every email")
	assert.Equal(t, "xlsx", cfg.Export.Format)

	providers := cfg.LLM.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "gemini", providers[1].Provider)
}

func TestLoad_GroqAPIKeyFallback(t *testing.T) {
	t.Setenv("FREIGHTX_LLM_PRIMARY_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk_test")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "gsk_test", cfg.LLM.Primary.APIKey)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freightx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  run_name: nightly
  checkpoint_store: s3
retry:
  max_attempts: 3
s3:
  bucket: runs
`), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "nightly", cfg.Pipeline.RunName)
	assert.Equal(t, "s3", cfg.Pipeline.CheckpointStore)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "runs", cfg.S3.Bucket)
	assert.Equal(t, "checkpoints", cfg.S3.Prefix)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=require", db.DSN())
}

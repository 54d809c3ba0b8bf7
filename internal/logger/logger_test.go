package logger_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/config"
	"freightx/internal/logger"
)

func TestNewWithWriter_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Component(logger.NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, &buf), "pipeline")

	log.Debug().Str("email_id", "EMAIL_001").Msg("calling llm")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "pipeline", line["component"])
	assert.Equal(t, "EMAIL_001", line["email_id"])
	assert.Contains(t, line, "time")
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(config.LogConfig{Level: "WARN", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(config.LogConfig{Level: "chatty", Format: "json"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(config.LogConfig{Level: "info", Format: "console"}, &buf)
	log.Info().Msg("run complete")
	assert.Contains(t, buf.String(), "run complete")
	assert.NotContains(t, buf.String(), `"message"`)
}

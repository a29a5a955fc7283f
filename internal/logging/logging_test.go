package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("json to buffer", func(t *testing.T) {
		var buf bytes.Buffer
		result := NewLoggerWithPath(Config{Level: "warn", Format: FormatJSON, Output: &buf})
		defer result.Close()

		result.Logger.Info().Msg("hidden")
		result.Logger.Warn().Msg("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"message":"shown"`)
		assert.False(t, result.UsingFile)
	})

	t.Run("auto format on non-terminal is json", func(t *testing.T) {
		var buf bytes.Buffer
		result := NewLoggerWithPath(Config{Format: FormatAuto, Output: &buf})
		result.Logger.Info().Msg("hello")
		assert.Contains(t, buf.String(), `"level":"info"`)
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		result := NewLoggerWithPath(Config{Level: "loud", Output: &bytes.Buffer{}})
		assert.Equal(t, zerolog.InfoLevel, result.Logger.GetLevel())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "econreport.log")
		result := NewLoggerWithPath(Config{File: path, Output: &bytes.Buffer{}})
		require.True(t, result.UsingFile)
		result.Logger.Info().Msg("to file")
		require.NoError(t, result.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	t.Run("file fallback", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		var buf bytes.Buffer
		result := NewLoggerWithPath(Config{File: filepath.Join(blocker, "x.log"), Format: FormatJSON, Output: &buf})
		assert.False(t, result.UsingFile)
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)

		result.Logger.Info().Msg("still logged")
		assert.Contains(t, buf.String(), "still logged")
	})
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := ComponentLogger(zerolog.New(&buf), "fred")
	logger.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"fred"`)
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunIDFromContext(ctx))

	id := GetOrGenerateRunID(ctx)
	assert.Len(t, id, 26)

	ctx = ContextWithRunID(ctx, id)
	assert.Equal(t, id, RunIDFromContext(ctx))
	assert.Equal(t, id, GetOrGenerateRunID(ctx))
	assert.NotEqual(t, id, NewRunID())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Info().Msg("via ctx")
	assert.Contains(t, buf.String(), "via ctx")
}

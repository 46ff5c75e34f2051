package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "GRPC_ADDR", "APP_TEMP_DIR", "APP_MAX_UPLOAD_SIZE",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_TEMPERATURE",
		"OPENAI_MAX_TOKENS", "OPENAI_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg := LoadConfigFrom(viper.New())

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Empty(t, cfg.Server.GRPCAddr)
	assert.NotEmpty(t, cfg.App.TempDir)
	assert.Equal(t, int64(10*1024*1024), cfg.App.MaxUploadSize)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, CodeConfig, ErrorCode(err))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("GRPC_ADDR", ":9091")
	t.Setenv("APP_MAX_UPLOAD_SIZE", "2048")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1/")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("OPENAI_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfigFrom(viper.New())

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, ":9091", cfg.Server.GRPCAddr)
	assert.Equal(t, int64(2048), cfg.App.MaxUploadSize)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "ftp://example.com")
	t.Setenv("APP_MAX_UPLOAD_SIZE", "0")

	err := LoadConfigFrom(viper.New()).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_BASE_URL")
	assert.Contains(t, err.Error(), "APP_MAX_UPLOAD_SIZE")
}

func TestErrorCodeAndWrap(t *testing.T) {
	base := NewAppError(CodeUpload, "too big", ErrTooLarge)
	wrapped := WrapError(base, "handle upload")

	assert.Equal(t, CodeUpload, ErrorCode(wrapped))
	assert.ErrorIs(t, wrapped, ErrTooLarge)
	assert.Equal(t, "handle upload: UPLOAD_ERROR: too big: upload exceeds size limit", wrapped.Error())
	assert.Empty(t, ErrorCode(errors.New("plain")))
	assert.Nil(t, WrapError(nil, "noop"))
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.NotNil(t, LoggerFromContext(ctx, nil))

	fallback := zap.NewNop()
	assert.Same(t, fallback, LoggerFromContext(ctx, fallback))

	l := zap.NewExample()
	ctx = WithLogger(WithRequestID(ctx, "rid-1"), l)
	assert.Equal(t, "rid-1", RequestIDFromContext(ctx))
	assert.Same(t, l, LoggerFromContext(ctx, fallback))
}

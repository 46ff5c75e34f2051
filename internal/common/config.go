package common

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/portfolio-grader/constants"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	App    AppConfig
	LLM    LLMConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
	GRPCAddr string // empty disables the gRPC health endpoint
}

// AppConfig holds upload handling configuration
type AppConfig struct {
	TempDir       string
	MaxUploadSize int64
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables on top of defaults.
func LoadConfig() *Config {
	return LoadConfigFrom(viper.New())
}

// LoadConfigFrom is LoadConfig over a caller-provided viper instance.
func LoadConfigFrom(v *viper.Viper) *Config {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", "")
	v.SetDefault("APP_TEMP_DIR", filepath.Join(os.TempDir(), "portfolio-grader"))
	v.SetDefault("APP_MAX_UPLOAD_SIZE", constants.DefaultMaxUploadBytes)
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_TEMPERATURE", 0.0)
	v.SetDefault("OPENAI_MAX_TOKENS", 1000)
	v.SetDefault("OPENAI_TIMEOUT", 45*time.Second)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			HTTPAddr: v.GetString("HTTP_ADDR"),
			GRPCAddr: v.GetString("GRPC_ADDR"),
		},
		App: AppConfig{
			TempDir:       v.GetString("APP_TEMP_DIR"),
			MaxUploadSize: v.GetInt64("APP_MAX_UPLOAD_SIZE"),
		},
		LLM: LLMConfig{
			BaseURL:     strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
			Model:       v.GetString("OPENAI_MODEL"),
			APIKey:      v.GetString("OPENAI_API_KEY"),
			Temperature: float32(v.GetFloat64("OPENAI_TEMPERATURE")),
			MaxTokens:   v.GetInt("OPENAI_MAX_TOKENS"),
			Timeout:     v.GetDuration("OPENAI_TIMEOUT"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validator := NewValidator().
		Field("OPENAI_API_KEY", c.LLM.APIKey, Required).
		Field("OPENAI_BASE_URL", c.LLM.BaseURL, Required, HTTPURL).
		Field("OPENAI_MODEL", c.LLM.Model, Required).
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("APP_TEMP_DIR", c.App.TempDir, Required).
		Field("APP_MAX_UPLOAD_SIZE", c.App.MaxUploadSize, Positive).
		Field("OPENAI_MAX_TOKENS", c.LLM.MaxTokens, Positive)

	if validator.HasErrors() {
		return NewAppError(CodeConfig, validator.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

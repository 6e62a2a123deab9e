package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nextcv/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port                string    `yaml:"port"`
	Env                 string    `yaml:"env"`
	CORSAllowOrigin     []string  `yaml:"cors_allow_origins"`
	LLM                 LLMConfig `yaml:"llm"`
	MaxUploadBytes      int64     `yaml:"max_upload_bytes"`
	RateLimitRPS        float64   `yaml:"rate_limit_rps"`
	RateLimitBurst      int       `yaml:"rate_limit_burst"`
	AnalysisMaxAttempts int       `yaml:"analysis_max_attempts"`
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider        string  `yaml:"provider"`
	Model           string  `yaml:"model"`
	ContextModel    string  `yaml:"context_model"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	BaseURL         string  `yaml:"base_url"`
	OpenAIAPIKey    string  `yaml:"openai_api_key"`
	AnthropicAPIKey string  `yaml:"anthropic_api_key"`
	GeminiAPIKey    string  `yaml:"gemini_api_key"`
}

// APIKey returns the server-side credential for the selected provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// Timeout is the transport deadline applied around each analysis.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:            "8080",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4.1-mini",
			Temperature:    0.2,
			TimeoutSeconds: 120,
		},
		MaxUploadBytes:      10 << 20,
		RateLimitRPS:        2,
		RateLimitBurst:      10,
		AnalysisMaxAttempts: 1,
	}
}

// Load reads configuration from environment variables with sensible defaults.
// A YAML file named by NEXTCV_CONFIG is applied first; the environment wins.
func Load() Config {
	cfg, err := LoadFile(os.Getenv("NEXTCV_CONFIG"))
	if err != nil {
		telemetry.Error("config.file_failed", map[string]any{"err": err.Error()})
		cfg = fromEnv(Defaults())
	}
	return cfg
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, f := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(f)
	}

	cfg := Defaults()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return fromEnv(cfg), nil
}

func fromEnv(cfg Config) Config {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = normalizeEnv(getEnv("ENV", cfg.Env))
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		cfg.CORSAllowOrigin = splitAndTrim(raw)
	}

	cfg.LLM.Provider = NormalizeProvider(getEnv("LLM_PROVIDER", cfg.LLM.Provider))
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.ContextModel = getEnv("LLM_CONTEXT_MODEL", cfg.LLM.ContextModel)
	cfg.LLM.Temperature = getFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.MaxTokens = getInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.TimeoutSeconds = getInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.LLM.AnthropicAPIKey)
	cfg.LLM.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.LLM.GeminiAPIKey)

	cfg.MaxUploadBytes = int64(getInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.RateLimitRPS = getFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.AnalysisMaxAttempts = getInt("ANALYSIS_MAX_ATTEMPTS", cfg.AnalysisMaxAttempts)
	if cfg.AnalysisMaxAttempts < 1 {
		cfg.AnalysisMaxAttempts = 1
	}
	return cfg
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key})
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// NormalizeProvider maps provider aliases to a supported name. Unknown values
// fall back to openai.
func NormalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "anthropic", "claude":
		return "anthropic"
	case "gemini", "google":
		return "gemini"
	default:
		return "openai"
	}
}

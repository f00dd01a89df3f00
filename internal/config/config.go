package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Server
	Port     string `validate:"required,numeric"`
	LogLevel slog.Level

	// Completion service
	Provider        string `validate:"oneof=gemini openai"`
	GeminiAPIKey    string `validate:"required_if=Provider gemini"`
	OpenAIAPIKey    string `validate:"required_if=Provider openai"`
	PreferredModels []string

	// Storage
	UploadDir       string        `validate:"required"`
	OutputDir       string        `validate:"required"`
	OutputRetention time.Duration `validate:"gt=0"`
	CleanupSchedule string        `validate:"required"`

	// Limits
	MaxUploadBytes  int `validate:"gt=0"`
	MaxPayloadBytes int `validate:"gt=0"`

	// Rendering
	ChromePath    string
	RenderTimeout time.Duration `validate:"gt=0"`
}

// fileConfig is the optional YAML fallback for API credentials.
type fileConfig struct {
	GeminiAPIKey string `yaml:"GEMINI_API_KEY"`
	OpenAIAPIKey string `yaml:"OPENAI_API_KEY"`
}

// Load reads .env (if present), then the environment. API keys missing from
// the environment are looked up in the YAML file named by CONFIG_PATH.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg := Config{
		Port:     envStr("PORT", "8000"),
		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		Provider:     strings.ToLower(envStr("AI_PROVIDER", ProviderGemini)),
		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),
		OpenAIAPIKey: envStr("OPENAI_API_KEY", ""),

		UploadDir:       envStr("UPLOAD_DIR", "__DATA__"),
		OutputDir:       envStr("OUTPUT_DIR", "__OUTPUT__"),
		OutputRetention: envDur("OUTPUT_RETENTION", 24*time.Hour),
		CleanupSchedule: envStr("CLEANUP_SCHEDULE", "@every 1h"),

		MaxUploadBytes:  envInt("MAX_UPLOAD_BYTES", 10<<20),
		MaxPayloadBytes: envInt("MAX_PAYLOAD_BYTES", 64<<10),

		ChromePath:    envStr("CHROME_PATH", ""),
		RenderTimeout: envDur("RENDER_TIMEOUT", 60*time.Second),
	}
	cfg.PreferredModels = envList("PREFERRED_MODELS")

	if err := cfg.loadFileFallback(envStr("CONFIG_PATH", "config.yaml")); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadFileFallback(path string) error {
	if c.GeminiAPIKey != "" && c.OpenAIAPIKey != "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = strings.TrimSpace(fc.GeminiAPIKey)
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = strings.TrimSpace(fc.OpenAIAPIKey)
	}
	return nil
}

func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// APIKey returns the credential of the selected provider.
func (c Config) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return l
}

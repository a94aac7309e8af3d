// Package config assembles the server configuration from defaults, an
// optional .env file, process environment and credentials.yml.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// FallbackSessionSecret signs session cookies when no secret is configured.
const FallbackSessionSecret = "fallback-secret-key"

type Config struct {
	Port            string          `koanf:"port" validate:"required,numeric"`
	CredentialsFile string          `koanf:"credentials_file" validate:"required"`
	Log             LogConfig       `koanf:"log"`
	Search          SearchConfig    `koanf:"search"`
	LLM             LLMConfig       `koanf:"llm"`
	Session         SessionConfig   `koanf:"session"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`

	// Credentials is populated from CredentialsFile, not from koanf.
	Credentials Credentials `koanf:"-"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	File  string `koanf:"file"`
}

type SearchConfig struct {
	BaseURL    string        `koanf:"base_url" validate:"required,url"`
	Engine     string        `koanf:"engine" validate:"required"`
	Timeout    time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries uint64        `koanf:"max_retries" validate:"lte=10"`
	CacheSize  int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL   time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	APIKey     string        `koanf:"-"`
}

type LLMConfig struct {
	DefaultModel    string `koanf:"default_model" validate:"required"`
	MaxTokens       int    `koanf:"max_tokens" validate:"gt=0"`
	MaxContextChars int    `koanf:"max_context_chars" validate:"gt=0"`
	PrependContext  bool   `koanf:"prepend_context"`
	OpenAIBaseURL   string `koanf:"openai_base_url" validate:"omitempty,url"`
	GeminiBaseURL   string `koanf:"gemini_base_url" validate:"omitempty,url"`
	OpenAIKey       string `koanf:"-"`
	GeminiKey       string `koanf:"-"`
}

type SessionConfig struct {
	TTL      time.Duration `koanf:"ttl" validate:"gt=0"`
	Store    string        `koanf:"store" validate:"oneof=memory redis"`
	RedisURL string        `koanf:"redis_url" validate:"required_if=Store redis"`
	Secure   bool          `koanf:"secure_cookie"`
	Secret   string        `koanf:"-"`
}

// RateLimitConfig holds limiter rates in "<limit>-<period>" form, e.g. "5-M".
// An empty rate disables limiting for that route group.
type RateLimitConfig struct {
	Login   string `koanf:"login"`
	Analyze string `koanf:"analyze"`
}

// Default returns the configuration used before any environment is applied.
func Default() *Config {
	return &Config{
		Port:            "3000",
		CredentialsFile: "credentials.yml",
		Log: LogConfig{
			Level: "info",
			File:  "app.log",
		},
		Search: SearchConfig{
			BaseURL:    "https://serpapi.com",
			Engine:     "google",
			Timeout:    15 * time.Second,
			MaxRetries: 3,
			CacheSize:  128,
			CacheTTL:   10 * time.Minute,
		},
		LLM: LLMConfig{
			DefaultModel:    "gpt-4o",
			MaxTokens:       4000,
			MaxContextChars: 12000,
			PrependContext:  true,
		},
		Session: SessionConfig{
			TTL:   24 * time.Hour,
			Store: "memory",
		},
		RateLimit: RateLimitConfig{
			Login:   "10-M",
			Analyze: "30-M",
		},
	}
}

// envToPath maps recognised environment variables to koanf paths. Anything
// not listed here is ignored.
var envToPath = map[string]string{
	"PORT":                  "port",
	"CREDENTIALS_FILE":      "credentials_file",
	"LOG_LEVEL":             "log.level",
	"LOG_FILE":              "log.file",
	"SEARCH_BASE_URL":       "search.base_url",
	"SEARCH_ENGINE":         "search.engine",
	"SEARCH_TIMEOUT":        "search.timeout",
	"SEARCH_MAX_RETRIES":    "search.max_retries",
	"LLM_DEFAULT_MODEL":     "llm.default_model",
	"LLM_MAX_TOKENS":        "llm.max_tokens",
	"LLM_MAX_CONTEXT_CHARS": "llm.max_context_chars",
	"LLM_PREPEND_CONTEXT":   "llm.prepend_context",
	"OPENAI_BASE_URL":       "llm.openai_base_url",
	"GEMINI_BASE_URL":       "llm.gemini_base_url",
	"SEARCH_CACHE_SIZE":     "search.cache_size",
	"SEARCH_CACHE_TTL":      "search.cache_ttl",
	"SESSION_TTL":           "session.ttl",
	"SESSION_STORE":         "session.store",
	"REDIS_URL":             "session.redis_url",
	"SESSION_SECURE_COOKIE": "session.secure_cookie",
	"RATE_LIMIT_LOGIN":      "rate_limit.login",
	"RATE_LIMIT_ANALYZE":    "rate_limit.analyze",
}

// Options tune Load. The zero value reads ".env" if it exists and uses the
// real process environment.
type Options struct {
	EnvFile string
	// Environ replaces os.Environ, mainly for tests.
	Environ func() []string
	// Getenv replaces os.Getenv for credential overrides.
	Getenv func(string) string
}

// Load builds a validated Config. A missing .env file is not an error; a
// missing credentials file is.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", opts.EnvFile, err)
	}

	cfg, err := loadSettings(opts.Environ)
	if err != nil {
		return nil, err
	}

	creds, err := LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	creds.ApplyEnv(opts.Getenv)
	cfg.SetCredentials(*creds)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSettings(environ func() []string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	err := k.Load(env.Provider(".", env.Opt{
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envToPath[key]
			if !ok || value == "" {
				return "", nil
			}
			return path, value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// SetCredentials copies API keys and the session secret out of creds.
func (c *Config) SetCredentials(creds Credentials) {
	c.Credentials = creds
	c.Search.APIKey = creds.APIKeys.SerpAPIKey
	c.LLM.OpenAIKey = creds.APIKeys.OpenAIKey
	c.LLM.GeminiKey = creds.APIKeys.GeminiKey
	c.Session.Secret = creds.APIKeys.SessionSecret
	if c.Session.Secret == "" {
		c.Session.Secret = FallbackSessionSecret
	}
}

var validate = validator.New()

// Validate checks the struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

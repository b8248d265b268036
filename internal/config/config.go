// Package config loads the service configuration from a yaml file with
// HELPLINE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log          Log          `yaml:"log"`
	Store        Store        `yaml:"store"`
	LLM          LLM          `yaml:"llm"`
	Conversation Conversation `yaml:"conversation"`
	HTTP         HTTP         `yaml:"http"`
}

type Log struct {
	// Minimum level: debug, info, warn or error
	Level string `yaml:"level" example:"info"`
}

type Store struct {
	// Checkpoint backend: memory, sqlite or redis
	Backend string `yaml:"backend" example:"memory" validate:"required,oneof=memory sqlite redis"`
	// Sqlite database path, used when backend is sqlite
	Path string `yaml:"path" example:"helpline.db"`
	// Redis address, used when backend is redis
	RedisAddr string `yaml:"redis_addr" example:"localhost:6379"`
	// Redis checkpoint TTL, zero keeps checkpoints forever
	RedisTTL time.Duration `yaml:"redis_ttl" example:"72h"`
}

type LLM struct {
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1"`
	// API token, overridable via HELPLINE_LLM_TOKEN
	Token string `yaml:"token" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"gpt-4o-mini" validate:"required"`
	// Per-call timeout
	Timeout time.Duration `yaml:"timeout" example:"30s"`
}

type Conversation struct {
	// Default conversation language: lt or en
	DefaultLanguage string `yaml:"default_language" validate:"required,oneof=lt en"`
	// Troubleshooting attempts before escalation
	MaxRetries int `yaml:"max_retries" validate:"gte=1"`
}

type HTTP struct {
	// Listen address for the API server
	Addr string `yaml:"addr" example:":8080"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	applyDefaults(&result)
	applyEnvOverrides(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "helpline.db"
	}
	if cfg.Store.RedisAddr == "" {
		cfg.Store.RedisAddr = "localhost:6379"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.Conversation.DefaultLanguage == "" {
		cfg.Conversation.DefaultLanguage = "lt"
	}
	if cfg.Conversation.MaxRetries <= 0 {
		cfg.Conversation.MaxRetries = 3
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
}

// applyEnvOverrides lets HELPLINE_* variables override the file, so secrets
// and per-deployment knobs stay out of it. Overridden values still pass
// through validation.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HELPLINE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HELPLINE_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("HELPLINE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("HELPLINE_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("HELPLINE_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("HELPLINE_LLM_TOKEN"); v != "" {
		cfg.LLM.Token = v
	}
	if v := os.Getenv("HELPLINE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("HELPLINE_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
}

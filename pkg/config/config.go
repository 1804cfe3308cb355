package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for pitchlens-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// LLM completion endpoint used for assumption extraction
	LLM LLMConfig `yaml:"llm"`

	// Upload limits for deck PDFs
	Upload UploadConfig `yaml:"upload"`

	// Optional archival of original PDFs
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"pitchlens"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"pitchlens_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// LLMConfig holds the completion endpoint used for assumption extraction.
// Provider selects the client implementation: "openai" covers any
// OpenAI-compatible endpoint (including local vLLM), "anthropic" uses the
// Anthropic Messages API.
type LLMConfig struct {
	Provider            string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint            string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model               string  `yaml:"model" env:"LLM_MODEL" env-default:"gpt-5-mini"`
	APIKey              string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	MaxCompletionTokens int     `yaml:"max_completion_tokens" env:"LLM_MAX_COMPLETION_TOKENS" env-default:"8192"`
	Temperature         float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.3"`

	// StrictResponseShape disables the first-array-valued-field fallback
	// when locating assumption records in the model response. With strict
	// parsing only the named "assumptions" field and a bare top-level array
	// are accepted.
	StrictResponseShape bool `yaml:"strict_response_shape" env:"LLM_STRICT_RESPONSE_SHAPE" env-default:"false"`
}

// UploadConfig holds limits applied to deck uploads.
type UploadConfig struct {
	// MaxFileBytes caps the accepted PDF size.
	MaxFileBytes int64 `yaml:"max_file_bytes" env:"UPLOAD_MAX_FILE_BYTES" env-default:"20971520"`
	// MinTextChars is the minimum extractable text length for a deck to be
	// analyzable at all.
	MinTextChars int `yaml:"min_text_chars" env:"UPLOAD_MIN_TEXT_CHARS" env-default:"50"`
}

// ObjectStoreConfig holds MinIO settings for archiving original PDFs.
// Archival is off unless Enabled is set; the pipeline works without it.
type ObjectStoreConfig struct {
	Enabled   bool   `yaml:"enabled" env:"OBJECT_STORE_ENABLED" env-default:"false"`
	Endpoint  string `yaml:"endpoint" env:"OBJECT_STORE_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"OBJECT_STORE_ACCESS_KEY" env-default:""`
	SecretKey string `yaml:"-" env:"OBJECT_STORE_SECRET_KEY"` // Secret - not in YAML
	Bucket    string `yaml:"bucket" env:"OBJECT_STORE_BUCKET" env-default:"deck-uploads"`
	UseSSL    bool   `yaml:"use_ssl" env:"OBJECT_STORE_USE_SSL" env-default:"false"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. Secrets (PGPASSWORD, LLM_API_KEY, OBJECT_STORE_SECRET_KEY)
// must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown llm provider %q (want openai or anthropic)", c.LLM.Provider)
	}
	if c.Upload.MaxFileBytes <= 0 {
		return fmt.Errorf("upload.max_file_bytes must be positive")
	}
	if c.Upload.MinTextChars <= 0 {
		return fmt.Errorf("upload.min_text_chars must be positive")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the portal.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Institution InstitutionConfig `yaml:"institution"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	SES         SESConfig         `yaml:"ses"`
	Directory   DirectoryConfig   `yaml:"directory"`
	Reference   ReferenceConfig   `yaml:"reference"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// InstitutionConfig names the university and the email suffix that gates
// access to generation and submission.
type InstitutionConfig struct {
	Name        string `yaml:"name"`
	EmailSuffix string `yaml:"email_suffix"`
}

// GeneratorConfig holds language-model collaborator configuration.
// Provider is "gemini" or "bedrock".
type GeneratorConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	Region         string `yaml:"region"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	FallbackLetter bool   `yaml:"fallback_letter"`
}

// Timeout returns the bound applied around each generation call.
func (c GeneratorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig selects the issue store. Type is "postgres" or "dynamodb".
type StorageConfig struct {
	Type          string `yaml:"type"`
	DatabaseURL   string `yaml:"database_url"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
}

// RedisConfig holds the optional read cache for issue listings and notices.
type RedisConfig struct {
	URL        string `yaml:"url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the cache entry lifetime.
func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// SESConfig holds optional direct outbound mail settings. When disabled the
// portal only returns compose links and the student's own mail client sends.
type SESConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	From      string `yaml:"from"`
}

// RecipientConfig is one department's routing entry.
type RecipientConfig struct {
	To  []string `yaml:"to"`
	CC  []string `yaml:"cc"`
	BCC []string `yaml:"bcc"`
}

// DirectoryConfig maps department names to recipient entries. Lookup misses
// fall back to Default, never an error.
type DirectoryConfig struct {
	Default    string                     `yaml:"default"`
	Recipients map[string]RecipientConfig `yaml:"recipients"`
}

// ReferenceConfig holds the static issue lists and the optional campus
// notices feed.
type ReferenceConfig struct {
	AdminIssues     []string `yaml:"admin_issues"`
	InfraIssues     []string `yaml:"infra_issues"`
	NoticesFeedURL  string   `yaml:"notices_feed_url"`
	FeedTimeoutSecs int      `yaml:"feed_timeout_seconds"`
}

// FeedTimeout bounds the notices feed fetch.
func (c ReferenceConfig) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutSecs) * time.Second
}

// LogConfig controls log verbosity and PII redaction.
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// RedactionEnabled defaults to true when unset.
func (c LogConfig) RedactionEnabled() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./web/dist"
	}
	if c.Institution.Name == "" {
		c.Institution.Name = "Shri Vishwakarma Skill University"
	}
	if c.Institution.EmailSuffix == "" {
		c.Institution.EmailSuffix = "@svsu.ac.in"
	}
	if c.Generator.Provider == "" {
		c.Generator.Provider = "gemini"
	}
	if c.Generator.Model == "" {
		switch c.Generator.Provider {
		case "bedrock":
			c.Generator.Model = "anthropic.claude-3-sonnet-20240229-v1:0"
		default:
			c.Generator.Model = "gemini-1.5-flash"
		}
	}
	if c.Generator.TimeoutSeconds == 0 {
		c.Generator.TimeoutSeconds = 30
	}
	if c.Generator.Region == "" {
		c.Generator.Region = "us-east-1"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "postgres"
	}
	if c.Storage.AWSRegion == "" {
		c.Storage.AWSRegion = "us-east-1"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 30
	}
	if c.SES.Region == "" {
		c.SES.Region = "us-east-1"
	}
	if c.Reference.FeedTimeoutSecs == 0 {
		c.Reference.FeedTimeoutSecs = 10
	}
	if c.Directory.Default == "" {
		c.Directory.Default = "grievance" + c.Institution.EmailSuffix
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.Generator.APIKey = apiKey
	}
	if provider := os.Getenv("GENERATOR_PROVIDER"); provider != "" {
		cfg.Generator.Provider = provider
	}
	if model := os.Getenv("GENERATOR_MODEL"); model != "" {
		cfg.Generator.Model = model
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Storage.DatabaseURL = dbURL
		if cfg.Storage.Type == "" {
			cfg.Storage.Type = "postgres"
		}
	}
	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		cfg.Storage.DynamoDBTable = table
		cfg.Storage.Type = "dynamodb"
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.SES.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.SES.SecretKey = secretKey
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		cfg.SES.From = from
	}
	if feed := os.Getenv("NOTICES_FEED_URL"); feed != "" {
		cfg.Reference.NoticesFeedURL = feed
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

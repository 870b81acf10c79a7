// Package config loads the process-wide configuration for the Zantara
// agentic core: database/vector-store/cache endpoints, LLM tier
// credentials, and the tunables that govern retrieval, memory, and the
// reasoning loop.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig points at the Postgres instance backing the memory
// orchestrator and document store.
type DatabaseConfig struct {
	ConnectionString string `yaml:"connection_string"`
	MaxConns         int32  `yaml:"max_conns"`
}

// VectorDBConfig points at Qdrant.
type VectorDBConfig struct {
	Host    string `yaml:"host"`
	APIKey  string `yaml:"api_key,omitempty"`
	UseTLS  bool   `yaml:"use_tls"`
	Timeout int    `yaml:"timeout_seconds"`
}

// EmbeddingConfig describes both embedding providers. The remote
// provider fills RemoteHost/RemoteAPIKey; the local provider is always
// available as a fallback and needs no credentials.
type EmbeddingConfig struct {
	RemoteHost       string `yaml:"remote_host"`
	RemoteAPIKey     string `yaml:"remote_api_key,omitempty"`
	RemoteModel      string `yaml:"remote_model"`
	RemoteDimensions int    `yaml:"remote_dimensions"`
	LocalDimensions  int    `yaml:"local_dimensions"`
	EmbedPrefix      string `yaml:"embed_prefix"`
	SearchPrefix     string `yaml:"search_prefix"`
}

// RerankerConfig points at the cross-encoder reranking endpoint.
type RerankerConfig struct {
	Host    string `yaml:"host"`
	Model   string `yaml:"model"`
	Enabled bool   `yaml:"enabled"`
}

// CacheConfig configures the Redis-backed semantic/prompt caches.
type CacheConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password,omitempty"`
	DB            int    `yaml:"db"`
	PromptTTLSecs int    `yaml:"prompt_ttl_seconds"`
	SemanticTTL   int    `yaml:"semantic_ttl_seconds"`
}

// KafkaConfig configures the background task runner used for
// fire-and-forget memory persistence.
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

// ClickHouseConfig configures the observability analytics sink that
// retrieval health diagnostics and orchestrator cascade/tier usage
// counters are published to.
type ClickHouseConfig struct {
	DSN            string `yaml:"dsn"`
	MetricsTable   string `yaml:"metrics_table"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// S3Config points at the object store backing the vision_analysis tool.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

// LLMTierConfig describes one tier of the LLM cascade.
type LLMTierConfig struct {
	Name    string  `yaml:"name"`
	Model   string  `yaml:"model"`
	APIKey  string  `yaml:"api_key,omitempty"`
	BaseURL string  `yaml:"base_url,omitempty"`
	Timeout float64 `yaml:"timeout_seconds"`
}

// LLMConfig holds the ordered cascade and the Anthropic key used by the
// vision tool.
type LLMConfig struct {
	Cascade      []LLMTierConfig `yaml:"cascade"`
	AnthropicKey string          `yaml:"anthropic_key,omitempty"`
}

// ReasoningConfig tunes the ReAct loop.
type ReasoningConfig struct {
	MaxSteps               int `yaml:"max_steps"`
	MaxToolCallsPerRequest int `yaml:"max_tool_calls_per_request"`
	VectorObservationCap   int `yaml:"vector_observation_char_cap"`
}

// Config is the top-level process configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogPath   string `yaml:"log_path"`
	SingleNode bool  `yaml:"single_node_instance,omitempty"`

	Database   DatabaseConfig   `yaml:"database"`
	VectorDB   VectorDBConfig   `yaml:"vector_db"`
	Embeddings EmbeddingConfig  `yaml:"embeddings"`
	Reranker   RerankerConfig   `yaml:"reranker"`
	Cache      CacheConfig      `yaml:"cache"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	S3         S3Config         `yaml:"s3"`
	LLM        LLMConfig        `yaml:"llm"`
	Reasoning  ReasoningConfig  `yaml:"reasoning"`
}

// ConfigError signals a missing production credential or required value.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Msg)
}

// Load reads the configuration from filename, applies .env overrides via
// godotenv, and fills in defaults the way the original loader did.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load() // best-effort; absence is not fatal

	data, err := os.ReadFile(filename)
	if err != nil {
		pterm.Error.Printf("Error reading config file: %v\n", err)
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		pterm.Error.Printf("Error unmarshaling config: %v\n", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateProduction(&cfg); err != nil {
		return nil, err
	}

	pterm.Success.Println("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Embeddings.RemoteDimensions <= 0 {
		cfg.Embeddings.RemoteDimensions = 1536
	}
	if cfg.Embeddings.LocalDimensions <= 0 {
		cfg.Embeddings.LocalDimensions = 384
	}
	if cfg.Embeddings.RemoteModel == "" {
		cfg.Embeddings.RemoteModel = "text-embedding-3-small"
	}
	if cfg.Cache.PromptTTLSecs <= 0 {
		cfg.Cache.PromptTTLSecs = 300
	}
	if cfg.Cache.SemanticTTL <= 0 {
		cfg.Cache.SemanticTTL = 600
	}
	if cfg.Reasoning.MaxSteps <= 0 {
		cfg.Reasoning.MaxSteps = 6
	}
	if cfg.Reasoning.MaxToolCallsPerRequest <= 0 {
		cfg.Reasoning.MaxToolCallsPerRequest = 10
	}
	if cfg.Reasoning.VectorObservationCap <= 0 {
		cfg.Reasoning.VectorObservationCap = 500
	}
	if cfg.Reranker.Model == "" {
		cfg.Reranker.Model = "bge-reranker-v2-m3"
	}
	if cfg.ClickHouse.MetricsTable == "" {
		cfg.ClickHouse.MetricsTable = "zantara_query_metrics"
	}
	if cfg.ClickHouse.TimeoutSeconds <= 0 {
		cfg.ClickHouse.TimeoutSeconds = 5
	}
}

// validateProduction rejects configurations missing credentials that are
// only optional when running against the local deterministic providers.
func validateProduction(cfg *Config) error {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env != "production" {
		return nil
	}
	if cfg.Embeddings.RemoteHost != "" && cfg.Embeddings.RemoteAPIKey == "" {
		return &ConfigError{Field: "embeddings.remote_api_key", Msg: "required in production when remote_host is set"}
	}
	if len(cfg.LLM.Cascade) == 0 {
		return &ConfigError{Field: "llm.cascade", Msg: "at least one tier is required in production"}
	}
	for _, tier := range cfg.LLM.Cascade {
		if tier.APIKey == "" && tier.BaseURL == "" {
			return &ConfigError{Field: "llm.cascade[" + tier.Name + "]", Msg: "requires api_key or base_url in production"}
		}
	}
	return nil
}

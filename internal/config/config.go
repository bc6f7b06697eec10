package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/code-warden/internal/logger"
	"github.com/spf13/viper"
)

// Config represents the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Database  DBConfig        `mapstructure:"database"`
	Blob      BlobConfig      `mapstructure:"blob"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Index     IndexConfig     `mapstructure:"index"`
	RAG       RAGConfig       `mapstructure:"rag"`
	Logging   logger.Config   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port       string `mapstructure:"port"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

// GitHubConfig carries the forge client's configuration (spec.md §6:
// GITHUB_TOKEN, GITHUB_ORG, GITHUB_REPOS).
type GitHubConfig struct {
	Token string   `mapstructure:"token"`
	Org   string   `mapstructure:"org"`
	Repos []string `mapstructure:"repos"`
}

// DBConfig configures the Postgres-backed Document Store Gateway (C2).
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// BlobConfig configures the content-addressed Blob Store (C3).
type BlobConfig struct {
	StorageRoot string `mapstructure:"storage_root"` // LOCAL_STORAGE_PATH
	BaseURL     string `mapstructure:"base_url"`     // BASE_URL
}

// EmbeddingConfig configures the EmbeddingBackend (§6 capability contract).
type EmbeddingConfig struct {
	Model      string `mapstructure:"model"` // EMBEDDING_MODEL
	OllamaHost string `mapstructure:"ollama_host"`
	Dimension  int    `mapstructure:"dimension"`
}

// ChunkingConfig holds the chunking keys. Only DefaultTagsN is read (as
// the metadata generator's tag count); ChunkSize, Overlap and MinChunkSize
// are loaded but not passed to the chunking strategies (C6), which apply
// their own defaults. The mapstructure key is deliberately "chunk_size",
// not the source's typo'd "chunkz_size" — see DESIGN.md Open Question #3.
type ChunkingConfig struct {
	ChunkSize     int `mapstructure:"chunk_size"`
	Overlap       int `mapstructure:"overlap"`
	MinChunkSize  int `mapstructure:"min_chunk_size"`
	DefaultTagsN  int `mapstructure:"default_tags_n"`
}

// IndexConfig configures the Vector Index Manager's artifact root (C8).
type IndexConfig struct {
	Root string `mapstructure:"root"`
}

// RAGConfig configures the RAG Engine and Query Recorder (C9).
type RAGConfig struct {
	MaxContextTokens int    `mapstructure:"max_context_tokens"`
	TopK             int    `mapstructure:"top_k"`
	QueryLogPath     string `mapstructure:"query_log_path"`
}

// LoadConfig loads the configuration using Viper with the hierarchy:
// Flags (handled by caller) > Env Vars > Config File > Defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.ragforge")

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded configuration", "file", v.ConfigFileUsed())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 5)

	// Registered so AutomaticEnv resolves GITHUB_TOKEN/GITHUB_ORG/GITHUB_REPOS
	// during Unmarshal.
	v.SetDefault("github.token", "")
	v.SetDefault("github.org", "")
	v.SetDefault("github.repos", []string{})

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.name", "ragforge")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("blob.storage_root", "./data/blobs")
	v.SetDefault("blob.base_url", "http://localhost:8090")

	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("embedding.ollama_host", "http://localhost:11434")
	v.SetDefault("embedding.dimension", 768)

	v.SetDefault("chunking.chunk_size", 500)
	v.SetDefault("chunking.overlap", 50)
	v.SetDefault("chunking.min_chunk_size", 300)
	v.SetDefault("chunking.default_tags_n", 10)

	v.SetDefault("index.root", "./data/index")

	v.SetDefault("rag.max_context_tokens", 2000)
	v.SetDefault("rag.top_k", 5)
	v.SetDefault("rag.query_log_path", "./data/query_log.jsonl")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

// ValidateForServer checks the configuration required to run the full
// ingestion + query service.
func (c *Config) ValidateForServer() error {
	if c.GitHub.Token == "" {
		return errors.New("github.token is required")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Embedding.Dimension <= 0 {
		return errors.New("embedding.dimension must be positive")
	}
	return nil
}

// ValidateForIngest checks the minimal configuration required to run a
// one-shot ingestion pass without the HTTP surface.
func (c *Config) ValidateForIngest() error {
	if c.GitHub.Token == "" {
		return errors.New("github.token is required")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	return nil
}

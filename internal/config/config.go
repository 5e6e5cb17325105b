package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures one model endpoint, either the chat model or the
// embedding model.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" (any OpenAI-compatible API) or "ollama"
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

// StoreConfig selects the vector index backend.
type StoreConfig struct {
	Type string `yaml:"type"` // "chromem" or "postgres"
	Path string `yaml:"path"` // chromem persistence dir; empty for in-memory
}

// DatabaseConfig holds Postgres connection details for the pgvector
// backend.
type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Password   string `yaml:"password"`
	VectorSize int    `yaml:"vector_size"`
	Debug      bool   `yaml:"debug"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
	UploadTempDir string `yaml:"upload_temp_dir"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	RAG      RAGConfig      `yaml:"rag"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
}

// Defaults: Groq's OpenAI-compatible API for chat, a local Ollama
// embedding model, 5000/500 character chunking and top-4 retrieval.
const (
	DefaultAddr         = ":8000"
	DefaultMaxUploadMB  = 32
	DefaultLLMBaseURL   = "https://api.groq.com/openai/v1"
	DefaultLLMModel     = "openai/gpt-oss-20b"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 4048
	DefaultEmbedBaseURL = "http://localhost:11434"
	DefaultEmbedModel   = "nomic-embed-text"
	DefaultTimeoutSecs  = 60
	DefaultChunkSize    = 5000
	DefaultChunkOverlap = 500
	DefaultTopK         = 4
	DefaultVectorSize   = 768
)

// LoadConfig reads the YAML file at path and applies environment
// overrides on top. Unmarshalling happens into a pre-filled default
// config, so fields the file sets explicitly survive even when the
// value is zero (chunk_overlap: 0, temperature: 0). A missing file is
// not an error; the defaults plus environment are enough to run.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        DefaultAddr,
			MaxUploadMB: DefaultMaxUploadMB,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			BaseURL:     DefaultLLMBaseURL,
			Model:       DefaultLLMModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		EmbedLLM: LLMConfig{
			Provider:    "ollama",
			BaseURL:     DefaultEmbedBaseURL,
			Model:       DefaultEmbedModel,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		RAG: RAGConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			TopK:         DefaultTopK,
		},
		Store: StoreConfig{
			Type: "chromem",
		},
		Database: DatabaseConfig{
			VectorSize: DefaultVectorSize,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.LLM.Key = v
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.EmbedLLM.Model = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.EmbedLLM.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.EmbedLLM.Key = v
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RAG.ChunkSize = n
		}
	}
	if v := os.Getenv("CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RAG.ChunkOverlap = n
		}
	}
	if v := os.Getenv("TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RAG.TopK = n
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
}

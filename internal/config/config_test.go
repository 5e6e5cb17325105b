package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.LLM.BaseURL != DefaultLLMBaseURL || cfg.LLM.Model != DefaultLLMModel {
		t.Fatalf("expected default llm settings, got %+v", cfg.LLM)
	}
	if cfg.RAG.ChunkSize != DefaultChunkSize || cfg.RAG.ChunkOverlap != DefaultChunkOverlap || cfg.RAG.TopK != DefaultTopK {
		t.Fatalf("expected default rag settings, got %+v", cfg.RAG)
	}
	if cfg.Store.Type != "chromem" {
		t.Fatalf("expected chromem store by default, got %q", cfg.Store.Type)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: ":9999"
llm:
  model: some/model
rag:
  chunk_size: 1234
  chunk_overlap: 56
  top_k: 7
store:
  type: postgres
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("addr not read from file: %q", cfg.Server.Addr)
	}
	if cfg.LLM.Model != "some/model" {
		t.Fatalf("model not read from file: %q", cfg.LLM.Model)
	}
	if cfg.RAG.ChunkSize != 1234 || cfg.RAG.ChunkOverlap != 56 || cfg.RAG.TopK != 7 {
		t.Fatalf("rag settings not read from file: %+v", cfg.RAG)
	}
	if cfg.Store.Type != "postgres" {
		t.Fatalf("store type not read from file: %q", cfg.Store.Type)
	}
	// Unset fields still get defaults.
	if cfg.LLM.BaseURL != DefaultLLMBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.LLM.BaseURL)
	}
}

func TestLoadConfig_ExplicitZerosSurvive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  temperature: 0
  max_tokens: 0
rag:
  chunk_size: 1000
  chunk_overlap: 0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RAG.ChunkOverlap != 0 {
		t.Fatalf("explicit chunk_overlap: 0 was overridden to %d", cfg.RAG.ChunkOverlap)
	}
	if cfg.LLM.Temperature != 0 {
		t.Fatalf("explicit temperature: 0 was overridden to %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 0 {
		t.Fatalf("explicit max_tokens: 0 was overridden to %d", cfg.LLM.MaxTokens)
	}
	// Keys the file does not mention keep their defaults.
	if cfg.LLM.TimeoutSecs != DefaultTimeoutSecs {
		t.Fatalf("unset timeout lost its default: %d", cfg.LLM.TimeoutSecs)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "sk-test")
	t.Setenv("GROQ_MODEL", "env/model")
	t.Setenv("EMBEDDING_MODEL", "env-embed")
	t.Setenv("CHUNK_SIZE", "777")
	t.Setenv("TOP_K", "9")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.Key != "sk-test" {
		t.Fatalf("api key not taken from env: %q", cfg.LLM.Key)
	}
	if cfg.LLM.Model != "env/model" {
		t.Fatalf("model not taken from env: %q", cfg.LLM.Model)
	}
	if cfg.EmbedLLM.Model != "env-embed" {
		t.Fatalf("embedding model not taken from env: %q", cfg.EmbedLLM.Model)
	}
	if cfg.RAG.ChunkSize != 777 || cfg.RAG.TopK != 9 {
		t.Fatalf("rag settings not taken from env: %+v", cfg.RAG)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/easyops/agentmem-go/pkg/core/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Memory.MaxTurns != 5 {
		t.Fatalf("expected default max_turns 5, got %d", cfg.Memory.MaxTurns)
	}
	if cfg.Memory.MaxTokens != 2500 {
		t.Fatalf("expected default max_tokens 2500, got %d", cfg.Memory.MaxTokens)
	}
	if cfg.Memory.SearchTopK != 5 {
		t.Fatalf("expected default search_top_k 5, got %d", cfg.Memory.SearchTopK)
	}
	if cfg.Memory.SummaryMaxChars != 1400 {
		t.Fatalf("expected default summary_max_chars 1400, got %d", cfg.Memory.SummaryMaxChars)
	}
	if cfg.Store.Type != "memory" {
		t.Fatalf("expected default store type memory, got %q", cfg.Store.Type)
	}
	if cfg.Summarizer.Model != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %q", cfg.Summarizer.Model)
	}
	if cfg.Summarizer.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", cfg.Summarizer.Timeout)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("AGENTMEM_MEMORY__MAX_TURNS", "10")
	t.Setenv("AGENTMEM_STORE__TYPE", "jsonl")
	t.Setenv("AGENTMEM_STORE__PATH", "/tmp/history")
	t.Setenv("AGENTMEM_SUMMARIZER__MODEL", "gpt-4o")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Memory.MaxTurns != 10 {
		t.Fatalf("expected max_turns 10 from env, got %d", cfg.Memory.MaxTurns)
	}
	if cfg.Store.Type != "jsonl" || cfg.Store.Path != "/tmp/history" {
		t.Fatalf("expected store config from env, got %+v", cfg.Store)
	}
	if cfg.Summarizer.Model != "gpt-4o" {
		t.Fatalf("expected model from env, got %q", cfg.Summarizer.Model)
	}
	// 未设置的键仍取默认值
	if cfg.Memory.MaxTokens != 2500 {
		t.Fatalf("expected default max_tokens preserved, got %d", cfg.Memory.MaxTokens)
	}
}

func TestLoad_ExplicitZeroTopK(t *testing.T) {
	t.Setenv("AGENTMEM_MEMORY__SEARCH_TOP_K", "0")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 显式 0 表示禁用检索，不能被默认值覆盖
	if cfg.Memory.SearchTopK != 0 {
		t.Fatalf("expected explicit search_top_k 0 kept, got %d", cfg.Memory.SearchTopK)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("AGENTMEM_MEMORY__MAX_TURNS", "-3")

	_, err := config.Load()
	if !errors.Is(err, config.ErrInvalidMaxTurns) {
		t.Fatalf("expected ErrInvalidMaxTurns, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"negative top k", func(c *config.Config) { c.Memory.SearchTopK = -1 }, config.ErrInvalidSearchTopK},
		{"zero max tokens", func(c *config.Config) { c.Memory.MaxTokens = 0 }, config.ErrInvalidMaxTokens},
		{"zero summary chars", func(c *config.Config) { c.Memory.SummaryMaxChars = 0 }, config.ErrInvalidSummaryMaxChars},
		{"negative retries", func(c *config.Config) { c.Summarizer.MaxRetries = -1 }, config.ErrInvalidMaxRetries},
		{"bad sample rate", func(c *config.Config) { c.Observability.SampleRate = 2 }, config.ErrInvalidSampleRate},
	}

	for _, c := range cases {
		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
}

func TestLoader_Getters(t *testing.T) {
	t.Setenv("AGENTMEM_STORE__TYPE", "sqlite")
	t.Setenv("AGENTMEM_MEMORY__MAX_TURNS", "7")

	loader := config.NewLoader()
	if err := loader.LoadEnv("AGENTMEM_"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := loader.GetString("store.type"); got != "sqlite" {
		t.Fatalf("expected sqlite, got %q", got)
	}
	if got := loader.GetInt("memory.max_turns"); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if !loader.Exists("store.type") {
		t.Fatal("expected store.type to exist")
	}
	if loader.Exists("store.missing") {
		t.Fatal("expected store.missing to not exist")
	}
}

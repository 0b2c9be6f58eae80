package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/docshard/internal/types"
)

func TestNewManager(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cm, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		cfg := cm.Get()
		if cfg.Chunking.Strategy != types.StrategyHybrid {
			t.Errorf("strategy = %q, want hybrid", cfg.Chunking.Strategy)
		}
		if cfg.Chunking.PageThreshold != 100 {
			t.Errorf("pageThreshold = %d", cfg.Chunking.PageThreshold)
		}
		if cfg.Provider.Type != "openai" {
			t.Errorf("provider type = %q", cfg.Provider.Type)
		}
		if cfg.Server.Addr != ":8583" {
			t.Errorf("server addr = %q", cfg.Server.Addr)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
chunking:
  strategy: fixed-pages
  chunk_size: 25
provider:
  model: gpt-4o
server:
  addr: ":9000"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cm, err := NewManager(path)
		if err != nil {
			t.Fatal(err)
		}
		cfg := cm.Get()
		if cfg.Chunking.Strategy != types.StrategyFixedPages || cfg.Chunking.ChunkSize != 25 {
			t.Errorf("chunking = %s/%d", cfg.Chunking.Strategy, cfg.Chunking.ChunkSize)
		}
		if cfg.Chunking.OverlapPages != 5 {
			t.Errorf("overlapPages = %d, default should survive", cfg.Chunking.OverlapPages)
		}
		if cfg.Provider.Model != "gpt-4o" {
			t.Errorf("model = %q", cfg.Provider.Model)
		}
		if cfg.Server.Addr != ":9000" {
			t.Errorf("addr = %q", cfg.Server.Addr)
		}
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("DOCSHARD_CHUNKING_STRATEGY", "token-based")
		t.Setenv("DOCSHARD_PROVIDER_MODEL", "gpt-4.1")

		cm, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		cfg := cm.Get()
		if cfg.Chunking.Strategy != types.StrategyTokenBased {
			t.Errorf("strategy = %q, want token-based", cfg.Chunking.Strategy)
		}
		if cfg.Provider.Model != "gpt-4.1" {
			t.Errorf("model = %q", cfg.Provider.Model)
		}
	})

	t.Run("malformed file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("chunking: [not a map"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewManager(path); err == nil {
			t.Error("expected error")
		}
	})
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("DOCSHARD_TEST_KEY", "secret123")

	cases := []struct {
		in, want string
	}{
		{"${DOCSHARD_TEST_KEY}", "secret123"},
		{"prefix-${DOCSHARD_TEST_KEY}", "prefix-secret123"},
		{"no-vars", "no-vars"},
		{"", ""},
		{"${UNSET_VAR_XYZ}", ""},
	}
	for _, tc := range cases {
		if got := ResolveEnvVars(tc.in); got != tc.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := cm.Get()
	if cfg.Chunking.Strategy != types.StrategyHybrid {
		t.Errorf("round-tripped strategy = %q", cfg.Chunking.Strategy)
	}
	if cfg.Provider.APIKey != "${OPENAI_API_KEY}" {
		t.Errorf("api_key = %q", cfg.Provider.APIKey)
	}
}

func TestOnChange(t *testing.T) {
	cm, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	called := false
	cm.OnChange(func(*Config) { called = true })
	if len(cm.callbacks) != 1 {
		t.Fatal("callback not registered")
	}
	cm.callbacks[0](cm.Get())
	if !called {
		t.Error("callback not invoked")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Neo4j.URI != "bolt://localhost:7687" {
		t.Errorf("Neo4j.URI = %q", cfg.Neo4j.URI)
	}
	if cfg.Gemini.Model != "flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Inference.MatchThreshold != 0.3 {
		t.Errorf("MatchThreshold = %v", cfg.Inference.MatchThreshold)
	}
	if cfg.Inference.CategoryValueLimit != 20 {
		t.Errorf("CategoryValueLimit = %d", cfg.Inference.CategoryValueLimit)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		// A path given explicitly must exist.
		t.Fatal("expected an error for an explicit missing config file")
	}
	_ = cfg

	// With no explicit path and no file in the working directory, defaults
	// apply.
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Neo4j.Database != "neo4j" {
		t.Errorf("Neo4j.Database = %q", cfg.Neo4j.Database)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablegraph.yaml")
	content := []byte(`source:
  path: /data/company.db
neo4j:
  uri: bolt://graph:7687
  password: secret
inference:
  match_threshold: 0.5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Path != "/data/company.db" {
		t.Errorf("Source.Path = %q", cfg.Source.Path)
	}
	if cfg.Neo4j.URI != "bolt://graph:7687" {
		t.Errorf("Neo4j.URI = %q", cfg.Neo4j.URI)
	}
	if cfg.Neo4j.Password != "secret" {
		t.Errorf("Neo4j.Password = %q", cfg.Neo4j.Password)
	}
	if cfg.Inference.MatchThreshold != 0.5 {
		t.Errorf("MatchThreshold = %v", cfg.Inference.MatchThreshold)
	}
	// Untouched keys keep their defaults.
	if cfg.Neo4j.Username != "neo4j" {
		t.Errorf("Neo4j.Username = %q", cfg.Neo4j.Username)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TABLEGRAPH_NEO4J_PASSWORD", "from-env")
	t.Setenv("TABLEGRAPH_GEMINI_API_KEY", "key-from-env")
	t.Setenv("TABLEGRAPH_SOURCE_PATH", "/env/path.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Neo4j.Password != "from-env" {
		t.Errorf("Neo4j.Password = %q", cfg.Neo4j.Password)
	}
	if cfg.Gemini.APIKey != "key-from-env" {
		t.Errorf("Gemini.APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Source.Path != "/env/path.db" {
		t.Errorf("Source.Path = %q", cfg.Source.Path)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"TABLEGRAPH_NEO4J_URI", "neo4j.uri"},
		{"TABLEGRAPH_GEMINI_API_KEY", "gemini.api_key"},
		{"TABLEGRAPH_SOURCE_PATH", "source.path"},
		{"TABLEGRAPH_INFERENCE_MATCH_THRESHOLD", "inference.match_threshold"},
	}
	for _, tt := range tests {
		if got := envKey(tt.input); got != tt.expected {
			t.Errorf("envKey(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInferConfig(t *testing.T) {
	cfg := Default()
	cfg.Inference.SampleLimit = 7
	inf := cfg.InferConfig()
	if inf.SampleLimit != 7 {
		t.Errorf("SampleLimit = %d, want 7", inf.SampleLimit)
	}
	if inf.FallbackSampleLimit != 5 {
		t.Errorf("FallbackSampleLimit = %d", inf.FallbackSampleLimit)
	}
}

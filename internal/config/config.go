// Package config loads tablegraph configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"tablegraph/internal/infer"
)

// ConfigFileName is the default config file looked up in the working directory.
const ConfigFileName = "tablegraph.yaml"

// envPrefix maps TABLEGRAPH_NEO4J_URI to neo4j.uri.
const envPrefix = "TABLEGRAPH_"

// SourceConfig configures the relational source.
type SourceConfig struct {
	Path          string `koanf:"path"`
	Threads       int    `koanf:"threads"`
	MemoryLimitGB int    `koanf:"memory_limit_gb"`
}

// Neo4jConfig configures the graph store connection.
type Neo4jConfig struct {
	URI      string `koanf:"uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
}

// GeminiConfig configures the text-generation service.
type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// InferenceConfig exposes the detection tunables.
type InferenceConfig struct {
	SampleLimit         int     `koanf:"sample_limit"`
	FallbackSampleLimit int     `koanf:"fallback_sample_limit"`
	MatchThreshold      float64 `koanf:"match_threshold"`
	CardinalityRatio    float64 `koanf:"cardinality_ratio"`
	CategoryValueLimit  int     `koanf:"category_value_limit"`
}

// Config is the full application configuration.
type Config struct {
	Source    SourceConfig    `koanf:"source"`
	Neo4j     Neo4jConfig     `koanf:"neo4j"`
	Gemini    GeminiConfig    `koanf:"gemini"`
	Inference InferenceConfig `koanf:"inference"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	inf := infer.DefaultConfig()
	return Config{
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Gemini: GeminiConfig{
			Model: "flash",
		},
		Inference: InferenceConfig{
			SampleLimit:         inf.SampleLimit,
			FallbackSampleLimit: inf.FallbackSampleLimit,
			MatchThreshold:      inf.MatchThreshold,
			CardinalityRatio:    inf.CardinalityRatio,
			CategoryValueLimit:  inf.CategoryValueLimit,
		},
	}
}

// Load reads configuration from the given file path (or ConfigFileName in
// the working directory when empty), then applies TABLEGRAPH_* environment
// overrides. A missing config file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		if _, err := os.Stat(ConfigFileName); err == nil {
			path = ConfigFileName
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// envKey maps TABLEGRAPH_NEO4J_PASSWORD to "neo4j.password". Only the first
// underscore separates the section from the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// InferConfig converts the loaded tunables into the engine's config type.
func (c *Config) InferConfig() infer.Config {
	return infer.Config{
		SampleLimit:         c.Inference.SampleLimit,
		FallbackSampleLimit: c.Inference.FallbackSampleLimit,
		MatchThreshold:      c.Inference.MatchThreshold,
		CardinalityRatio:    c.Inference.CardinalityRatio,
		CategoryValueLimit:  c.Inference.CategoryValueLimit,
	}
}

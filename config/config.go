// Copyright 2025 Chorus Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"fmt"
	"os"
	"time"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/pipeline"
	"gopkg.in/yaml.v3"
)

// Config is the file-level configuration: where the archive lives,
// how to reach the oracle, and the pipeline tuning knobs. CLI flags
// override whatever the file says.
type Config struct {
	// DBPath is the BadgerDB directory.
	DBPath string `yaml:"db_path"`

	// Sources are the default sources queried when the caller names none.
	// Empty means every source present in storage.
	Sources []string `yaml:"sources"`

	Oracle   OracleConfig   `yaml:"oracle"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// OracleConfig configures the LLM inference endpoint.
// RequestTimeout is a time.ParseDuration string like "90s".
type OracleConfig struct {
	Host           string  `yaml:"host"`
	Model          string  `yaml:"model"`
	Token          string  `yaml:"token"`
	RequestTimeout string  `yaml:"request_timeout"`
	Temperature    float64 `yaml:"temperature"`
}

// RequestTimeoutDuration parses the timeout, returning 0 when unset or
// unparseable.
func (o OracleConfig) RequestTimeoutDuration() time.Duration {
	if o.RequestTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(o.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

// PipelineConfig exposes the per-stage knobs worth tuning from a file.
// Zero values fall back to the pipeline defaults.
type PipelineConfig struct {
	Persona          string  `yaml:"persona"`
	PrimaryLanguage  string  `yaml:"primary_language"`
	FallbackLanguage string  `yaml:"fallback_language"`
	RecentLimit      int     `yaml:"recent_limit"`
	ChunkSize        int     `yaml:"chunk_size"`
	Parallelism      int     `yaml:"parallelism"`
	ScoreThreshold   float64 `yaml:"score_threshold"`
	TopK             int     `yaml:"top_k"`
	EventBuffer      int     `yaml:"event_buffer"`
}

// Default returns the default configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		DBPath: "./archive_db",
		Oracle: OracleConfig{
			Host:           aiDefaults.Host,
			Model:          aiDefaults.Model,
			Token:          aiDefaults.Token,
			RequestTimeout: aiDefaults.RequestTimeout.String(),
			Temperature:    aiDefaults.Temperature,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// OracleOptions converts the oracle section to ai config options.
func (c *Config) OracleOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithHost(c.Oracle.Host),
		ai.WithModel(c.Oracle.Model),
	}
	if c.Oracle.Token != "" {
		opts = append(opts, ai.WithToken(c.Oracle.Token))
	}
	if d := c.Oracle.RequestTimeoutDuration(); d > 0 {
		opts = append(opts, ai.WithRequestTimeout(d))
	}
	if c.Oracle.Temperature > 0 {
		opts = append(opts, ai.WithTemperature(c.Oracle.Temperature))
	}
	return opts
}

// PipelineConfig builds the pipeline configuration, applying the file's
// overrides on top of the stage defaults.
func (c *Config) PipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()

	p := c.Pipeline
	cfg.Persona = p.Persona
	if p.PrimaryLanguage != "" {
		cfg.Language.Primary = p.PrimaryLanguage
	}
	if p.FallbackLanguage != "" {
		cfg.Language.Fallback = p.FallbackLanguage
	}
	if p.RecentLimit > 0 {
		cfg.RecentLimit = p.RecentLimit
	}
	if p.ChunkSize > 0 {
		cfg.Classifier.ChunkSize = p.ChunkSize
		cfg.Matcher.ChunkSize = p.ChunkSize
	}
	if p.Parallelism > 0 {
		cfg.Classifier.Parallelism = p.Parallelism
		cfg.Matcher.Parallelism = p.Parallelism
	}
	if p.ScoreThreshold > 0 {
		cfg.Reranker.Threshold = p.ScoreThreshold
	}
	if p.TopK > 0 {
		cfg.Reranker.TopK = p.TopK
	}
	if p.EventBuffer > 0 {
		cfg.EventBuffer = p.EventBuffer
	}
	return cfg
}

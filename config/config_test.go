package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chorus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
db_path: /var/lib/chorus
sources: [expert_a, expert_b]
oracle:
  host: http://oracle:8080
  model: some-model
  request_timeout: 30s
pipeline:
  primary_language: en
  fallback_language: ru
  top_k: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/chorus", cfg.DBPath)
	assert.Equal(t, []string{"expert_a", "expert_b"}, cfg.Sources)
	assert.Equal(t, "http://oracle:8080", cfg.Oracle.Host)
	assert.Equal(t, "some-model", cfg.Oracle.Model)
	assert.Equal(t, 30*time.Second, cfg.Oracle.RequestTimeoutDuration())

	pc := cfg.PipelineConfig()
	assert.Equal(t, 3, pc.Reranker.TopK)
	assert.Equal(t, "en", pc.Language.Primary)
	assert.Equal(t, 30, pc.Classifier.ChunkSize, "untouched knobs keep stage defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "db_path: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault_PipelineConfigMatchesStageDefaults(t *testing.T) {
	cfg := Default()
	pc := cfg.PipelineConfig()
	assert.Equal(t, 0.7, pc.Reranker.Threshold)
	assert.Equal(t, 100, pc.EventBuffer)
	assert.Equal(t, "./archive_db", cfg.DBPath)
}

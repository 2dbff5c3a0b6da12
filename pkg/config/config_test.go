package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "arxiv-lemm-single-tfidf", cfg.Engine.Variant)
	assert.Equal(t, "fs", cfg.Engine.Backend)
	assert.Equal(t, 10, cfg.Engine.TopK)
	assert.Equal(t, 50, cfg.Engine.SummaryLimit)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
  requestTimeout: 5s
engine:
  variant: medical-sentences-jina-faiss
  backend: badger
redis:
  addr: cache:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SP_SERVER_PORT", "9100")
	t.Setenv("SP_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "medical-sentences-jina-faiss", cfg.Engine.Variant)
	assert.Equal(t, "badger", cfg.Engine.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	// untouched defaults survive a partial file
	assert.Equal(t, 50, cfg.Engine.SummaryLimit)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SP_ENGINE_BACKEND", "s3")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.backend")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestModelNamesResolve(t *testing.T) {
	m := ModelNames{"jina": "jinaai/jina-embeddings-v2-base-en"}
	assert.Equal(t, "jinaai/jina-embeddings-v2-base-en", m.Resolve("jina"))
	assert.Equal(t, "bert", m.Resolve("bert"))
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("SP_ENGINE_TOP_K", "ten")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SP_ENGINE_TOP_K")
}

func TestPostgresTableFromEnv(t *testing.T) {
	t.Setenv("SP_POSTGRES_TABLE", "medical_docs")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "medical_docs", cfg.Postgres.Table)
}

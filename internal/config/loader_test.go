package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvToKey(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"DOCVECTOR_SPLITTER_CHUNK_SIZE", "splitter.chunk_size"},
		{"DOCVECTOR_EMBEDDINGS_BASE_URL", "embeddings.base_url"},
		{"DOCVECTOR_STORE_PROVIDER", "store.provider"},
		{"DOCVECTOR_STORE_PGVECTOR_URL", "store.pgvector.url"},
		{"DOCVECTOR_STORE_CHROMEM_PATH", "store.chromem.path"},
		{"DOCVECTOR_LOGGING_LEVEL", "logging.level"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envToKey(tt.env), tt.env)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("DOCVECTOR_STORE_PROVIDER", "chromem")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "chromem", cfg.Store.Provider)
	assert.Equal(t, 1000, cfg.Splitter.ChunkSize)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	clearLegacyEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
source:
  root: /srv/docs
splitter:
  chunk_size: 500
  chunk_overlap: 100
store:
  provider: chromem
  chromem:
    path: ""
metadata:
  framework: Next.js
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Environment wins over the file.
	t.Setenv("DOCVECTOR_SPLITTER_CHUNK_SIZE", "750")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docs", cfg.Source.Root)
	assert.Equal(t, 750, cfg.Splitter.ChunkSize)
	assert.Equal(t, 100, cfg.Splitter.ChunkOverlap)
	assert.Equal(t, "chromem", cfg.Store.Provider)
	assert.Equal(t, map[string]string{"framework": "Next.js"}, cfg.Metadata)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	clearLegacyEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("splitter:\n  mode: sentence\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "splitter mode")
}

func TestWriteDefaultTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := WriteDefaultTemplate(path)
	require.NoError(t, err)
	assert.True(t, created)

	// Second call is a no-op.
	created, err = WriteDefaultTemplate(path)
	require.NoError(t, err)
	assert.False(t, created)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "chunk_size: 1000")
}

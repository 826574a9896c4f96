package clicfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanumlabs/codelens/internal/clicfg"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := clicfg.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, clicfg.Default().StorePath, cfg.StorePath)
	assert.Equal(t, clicfg.Default().Workers, cfg.Workers)
}

func TestLoad_MergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "store_path: custom.db\nworkers: 8\nmetrics_addr: :9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codelens.yaml"), []byte(content), 0o644))

	cfg, err := clicfg.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.StorePath)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilthomass/kowari/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 16, cfg.HNSW.M)
	assert.Equal(t, 16, cfg.LSHNumHyperplanes)
	assert.Equal(t, 4, cfg.LSHNumTables)
}

func TestLoadFileMissingReturnsDefault(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFileOverlaysFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kowari.yaml")
	contents := `
hnsw:
  m: 24
  m_max0: 48
  ef_construction: 64
seed: 99
lsh_num_hyperplanes: 32
lsh_num_tables: 8
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.HNSW.M)
	assert.Equal(t, 48, cfg.HNSW.MMax0)
	assert.Equal(t, 64, cfg.HNSW.EfConstruction)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 32, cfg.LSHNumHyperplanes)
	assert.Equal(t, 8, cfg.LSHNumTables)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("KOWARI_HNSW_M", "20")
	t.Setenv("KOWARI_SEED", "7")
	t.Setenv("KOWARI_LSH_NUM_TABLES", "6")

	cfg := config.LoadEnv("")
	assert.Equal(t, 20, cfg.HNSW.M)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, int64(7), cfg.HNSW.Seed)
	assert.Equal(t, 6, cfg.LSHNumTables)
}

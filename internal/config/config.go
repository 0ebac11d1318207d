// Package config resolves the build-time defaults for every index variant
// (M, EfConstruction, EfSearch, hyperplane count, table count, seed).
// Default returns the built-in values; LoadEnv overlays environment
// variables (optionally loaded from a .env file) onto them, and LoadFile
// overlays a YAML config file onto them. The two loaders are independent:
// neither reads the other's source. This is
// ambient plumbing, not a spec feature — it is carried the way the
// teacher's config layer is, regardless of the core engine's "no CLI"
// scope.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/neilthomass/kowari/internal/index/hnsw"
)

// Config holds the resolved build parameters for the HNSW and LSH index
// variants. Brute-force takes no configuration.
type Config struct {
	// HNSW holds the defaults passed to hnsw.New.
	HNSW hnsw.Config `yaml:"hnsw"`

	// LSHNumHyperplanes is the LSH signature width (H). Default 16.
	LSHNumHyperplanes int `yaml:"lsh_num_hyperplanes"`
	// LSHNumTables is the number of independent LSH hash tables (T).
	// Default 4.
	LSHNumTables int `yaml:"lsh_num_tables"`
	// Seed seeds both LSH hyperplane generation and HNSW level sampling
	// when their own seeds are left at zero.
	Seed int64 `yaml:"seed"`
}

// Default returns the spec's documented defaults: HNSW M=16,
// EfConstruction=32; LSH H=16, T=4.
func Default() Config {
	return Config{
		HNSW:              hnsw.DefaultConfig(),
		LSHNumHyperplanes: 16,
		LSHNumTables:      4,
	}
}

// LoadEnv loads a .env file (if present) into the process environment and
// overlays environment variables onto Default(). envFile may be empty, in
// which case no .env file is read and only variables already in the
// process environment apply.
func LoadEnv(envFile string) Config {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := Default()
	cfg.HNSW.M = getEnvInt("KOWARI_HNSW_M", cfg.HNSW.M)
	cfg.HNSW.MMax0 = getEnvInt("KOWARI_HNSW_M_MAX0", cfg.HNSW.MMax0)
	cfg.HNSW.EfConstruction = getEnvInt("KOWARI_HNSW_EF_CONSTRUCTION", cfg.HNSW.EfConstruction)
	cfg.HNSW.EfSearch = getEnvInt("KOWARI_HNSW_EF_SEARCH", cfg.HNSW.EfSearch)
	cfg.HNSW.Seed = getEnvInt64("KOWARI_SEED", cfg.HNSW.Seed)
	cfg.LSHNumHyperplanes = getEnvInt("KOWARI_LSH_NUM_HYPERPLANES", cfg.LSHNumHyperplanes)
	cfg.LSHNumTables = getEnvInt("KOWARI_LSH_NUM_TABLES", cfg.LSHNumTables)
	cfg.Seed = getEnvInt64("KOWARI_SEED", cfg.Seed)
	return cfg
}

// LoadFile reads a YAML config file, overlaying its fields onto
// Default(). A missing file is not an error; Default() is returned
// unchanged.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result int64
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

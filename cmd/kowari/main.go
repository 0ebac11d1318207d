package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/neilthomass/kowari/internal/config"
	"github.com/neilthomass/kowari/internal/index"
	"github.com/neilthomass/kowari/internal/index/hnsw"
	"github.com/neilthomass/kowari/internal/obslog"
	"github.com/neilthomass/kowari/internal/query"
	"github.com/neilthomass/kowari/internal/storage"
	"github.com/neilthomass/kowari/internal/vector"
)

const version = "0.1.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "kowari: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	algo := flag.String("index", "bruteforce", "index algorithm: bruteforce, lsh, hnsw")
	dim := flag.Int("dim", 32, "dimension of the generated demo corpus")
	n := flag.Int("n", 1000, "number of vectors in the demo corpus")
	k := flag.Int("k", 5, "number of nearest neighbors to return")
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	obslog.Init(obslog.DefaultConfig())
	log := obslog.Get()
	log.Info("kowari starting", "version", version, "index", *algo)

	backend := storage.NewMemory()
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < *n; i++ {
		v, err := vector.New(fmt.Sprintf("v%06d", i), randVec(rng, *dim))
		if err != nil {
			return err
		}
		if err := backend.Insert(ctx, v); err != nil {
			return err
		}
	}

	idx, err := newIndex(*algo, cfg)
	if err != nil {
		return err
	}

	engine := query.NewEngine(backend, idx)
	if err := engine.Build(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	results, err := engine.Search(ctx, randVec(rng, *dim), *k)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func newIndex(algo string, cfg config.Config) (index.Index, error) {
	switch algo {
	case "bruteforce":
		return index.NewBruteForce(), nil
	case "lsh":
		return index.NewLSH(index.LSHConfig{
			NumHyperplanes: cfg.LSHNumHyperplanes,
			NumTables:      cfg.LSHNumTables,
			Seed:           cfg.Seed,
		}), nil
	case "hnsw":
		hc := cfg.HNSW
		if hc.Seed == 0 {
			hc.Seed = cfg.Seed
		}
		return hnsw.New(hc), nil
	default:
		return nil, fmt.Errorf("unknown index algorithm %q", algo)
	}
}

func randVec(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rng.Float32()
	}
	return v
}

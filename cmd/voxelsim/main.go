// Command voxelsim runs the voxel simulation headless: it streams terrain
// around a falling player, meshes it and persists edits, exposing
// prometheus metrics while it runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"voxelcore/internal/atlas"
	"voxelcore/internal/config"
	"voxelcore/internal/entity"
	"voxelcore/internal/logging"
	"voxelcore/internal/metrics"
	"voxelcore/internal/registry"
	"voxelcore/internal/sim"
	"voxelcore/internal/storage"
	"voxelcore/internal/world"
)

type flags struct {
	configPath string
	seed       int64
	viewRadius int
	generator  string
	backend    string
	dataDir    string
	metrics    string
	logLevel   string
	atlasDir   string
	atlasOut   string
	duration   time.Duration
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "YAML config file (default $VOXEL_CONFIG)")
	flag.Int64Var(&f.seed, "seed", 0, "world seed")
	flag.IntVar(&f.viewRadius, "view-radius", 0, "streaming radius in chunks")
	flag.StringVar(&f.generator, "generator", "", "terrain generator: default, flat or empty")
	flag.StringVar(&f.backend, "storage", "", "chunk storage: none, memory or badger")
	flag.StringVar(&f.dataDir, "data", "", "badger directory")
	flag.StringVar(&f.metrics, "metrics-addr", "", "serve /metrics on this address")
	flag.StringVar(&f.logLevel, "log-level", "", "log level")
	flag.StringVar(&f.atlasDir, "atlas-dir", "", "directory of block tile PNGs")
	flag.StringVar(&f.atlasOut, "atlas-out", "", "write the packed atlas PNG here and continue")
	flag.DurationVar(&f.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := applyFlags(cfg, &f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if f.duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.duration)
		defer cancel()
	}

	if err := run(ctx, cfg, f.atlasOut, log); err != nil {
		log.Error("voxelsim failed", zap.Error(err))
		os.Exit(1)
	}
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cfg *config.Config, f *flags) error {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "seed":
			cfg.World.Seed = f.seed
		case "view-radius":
			cfg.World.ViewRadius = f.viewRadius
		case "generator":
			cfg.World.Generator = f.generator
		case "storage":
			cfg.Storage.Backend = f.backend
		case "data":
			cfg.Storage.Dir = f.dataDir
		case "metrics-addr":
			cfg.Metrics.Addr = f.metrics
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "atlas-dir":
			cfg.Atlas.Dir = f.atlasDir
		}
	})
	return cfg.Normalize()
}

func run(ctx context.Context, cfg *config.Config, atlasOut string, log *zap.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)
	reg := registry.Default()

	tiles, err := atlas.Build(reg, cfg.Atlas.TileSize, cfg.Atlas.Dir)
	if err != nil {
		return err
	}
	log.Info("atlas built", zap.Int("tiles", reg.Len()), zap.Int("textured", tiles.Textured()))
	if atlasOut != "" {
		if err := writePNG(atlasOut, tiles); err != nil {
			return err
		}
	}

	persister, err := openPersister(cfg.Storage, log, m)
	if err != nil {
		return err
	}
	if persister != nil {
		defer func() {
			if err := persister.Close(); err != nil {
				log.Warn("closing storage", zap.Error(err))
			}
		}()
	}

	gen, err := cfg.World.NewGenerator()
	if err != nil {
		return err
	}
	wopts := world.Options{
		Size:       cfg.World.ChunkSize,
		ViewRadius: cfg.World.ViewRadius,
		Generator:  gen,
		Logger:     log.Named("world"),
		Metrics:    m,
	}
	if persister != nil {
		wopts.Persister = persister
	}
	w := world.New(wopts)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.FlushEdits(flushCtx); err != nil {
			log.Warn("edits still waiting on storage reads", zap.Error(err))
		}
	}()

	s := sim.New(sim.Options{
		World:       w,
		Registry:    reg,
		Tiles:       tiles,
		Gravity:     cfg.Physics.Gravity,
		MaxStep:     cfg.Physics.MaxStep,
		Reach:       cfg.Physics.Reach,
		MeshWorkers: cfg.Sim.MeshWorkers,
		SlowTick:    cfg.Sim.SlowTick,
		Renderer:    newStatsReporter(log.Named("stats"), time.Second),
		Logger:      log.Named("sim"),
		Metrics:     m,
	})
	defer s.Close()

	spawnY := 64.0
	if h := w.SurfaceHeightAt(0, 0); h > -1000 {
		spawnY = float64(h) + 3
	}
	p := entity.NewPlayer(mgl64.Vec3{0.5, spawnY, 0.5})
	s.Spawn(p)
	s.SetFocus(p.ID)

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: promhttp.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics listener", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}

	fps := cfg.Sim.FPSLimit
	if fps == 0 {
		fps = int(cfg.Sim.TickRate)
	}
	loop := sim.NewLoop(s, cfg.Sim.TickDuration(), cfg.Sim.MaxFrame, sim.NewFrameLimiter(fps))

	log.Info("simulation started",
		zap.Int64("seed", cfg.World.Seed),
		zap.String("generator", cfg.World.Generator),
		zap.Int("view_radius", cfg.World.ViewRadius),
		zap.String("storage", cfg.Storage.Backend),
	)
	if err := loop.Run(ctx); err != nil {
		return err
	}
	log.Info("simulation stopped", zap.Uint64("ticks", s.Ticks()), zap.Int("chunks", w.LoadedCount()))
	return nil
}

func openPersister(cfg config.StorageConfig, log *zap.Logger, m *metrics.Metrics) (*storage.AsyncPersister, error) {
	var store storage.Store
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "memory":
		store = storage.NewMemoryStore()
	case "badger":
		bs, err := storage.OpenBadger(cfg.Dir)
		if err != nil {
			return nil, err
		}
		store = bs
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	return storage.NewAsyncPersister(store, storage.PersisterOptions{
		Workers:        cfg.Workers,
		SavesPerSecond: cfg.SavesPerSecond,
		Burst:          cfg.Burst,
		Logger:         log,
		Metrics:        m,
	}), nil
}

func writePNG(path string, a *atlas.Atlas) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("atlas: create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, a.Image()); err != nil {
		return fmt.Errorf("atlas: encode %s: %w", path, err)
	}
	return nil
}

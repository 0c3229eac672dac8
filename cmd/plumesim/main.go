package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/wrplume/plumesim/internal/catalog"
	"github.com/wrplume/plumesim/internal/health"
	"github.com/wrplume/plumesim/internal/metrics"
	"github.com/wrplume/plumesim/internal/plume"
	"github.com/wrplume/plumesim/internal/render"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	var (
		system     = flag.String("system", "apep", "catalog system name ("+strings.Join(catalog.Names(), ", ")+")")
		configPath = flag.String("config", "", "TOML file of parameter overrides")
		outPath    = flag.String("out", "plume.png", "output PNG path")
		size       = flag.Int("size", 256, "image side in pixels")
		gradient   = flag.String("gradient", "", "parameter to differentiate with respect to")
		stars      = flag.Bool("stars", false, "overlay stellar point sources")
		lightcurve = flag.Int("lightcurve", 0, "emit a lightcurve with this many phase samples instead of an image")
	)
	flag.Parse()

	p, ok := catalog.Lookup(*system)
	if !ok {
		logger.Error("unknown system", "system", *system, "known", catalog.Names())
		os.Exit(1)
	}
	if *configPath != "" {
		var err error
		p, err = loadOverrides(*configPath, p)
		if err != nil {
			logger.Error("invalid config file", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if err := p.Validate(); err != nil {
		logger.Error("invalid parameters", "error", err)
		os.Exit(1)
	}

	cfg := loadSimConfig(logger)
	cfg.Gradient = *gradient

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obsAddr := os.Getenv("PLUMESIM_METRICS_ADDR")
	var srv *http.Server
	if obsAddr != "" {
		srv = observabilityServer(obsAddr, logger)
	}
	health.SetReady()

	r := render.New(logger)
	start := time.Now()

	if *lightcurve > 0 {
		phases := make([]float64, *lightcurve)
		for i := range phases {
			phases[i] = float64(i) / float64(*lightcurve)
		}
		flux, err := r.Lightcurve(ctx, p, cfg, phases, *size)
		if err != nil {
			logger.Error("lightcurve failed", "error", err)
			os.Exit(1)
		}
		for i, f := range flux {
			if *gradient != "" {
				fmt.Printf("%.6f\t%.8g\t%.8g\n", phases[i], f.V, f.D)
			} else {
				fmt.Printf("%.6f\t%.8g\n", phases[i], f.V)
			}
		}
	} else {
		im, err := r.Render(ctx, p, cfg, render.Options{Size: *size, Stars: *stars})
		if err != nil {
			logger.Error("render failed", "error", err)
			os.Exit(1)
		}
		if err := writePNG(*outPath, im); err != nil {
			logger.Error("writing image failed", "path", *outPath, "error", err)
			os.Exit(1)
		}
		logger.Info("image written",
			"path", *outPath,
			"system", *system,
			"size", *size,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if srv == nil {
		return
	}
	logger.Info("serving observability endpoints until interrupted", "addr", obsAddr)
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("observability server shutdown error", "error", err)
		os.Exit(1)
	}
}

// observabilityServer exposes metrics and probes on a side listener.
func observabilityServer(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", health.Healthz)
	mux.HandleFunc("/readyz", health.Readyz)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("observability listener starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("observability listener error", "error", err)
			os.Exit(1)
		}
	}()
	return srv
}

func loadSimConfig(logger *slog.Logger) plume.Config {
	cfg := plume.Config{
		OrbitShells:      1,
		RingsPerOrbit:    1000,
		ParticlesPerRing: 500,
		Workers:          runtime.NumCPU(),
	}

	if v := os.Getenv("PLUMESIM_SHELLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid PLUMESIM_SHELLS value, using default", "value", v, "default", cfg.OrbitShells)
		} else {
			cfg.OrbitShells = n
		}
	}

	if v := os.Getenv("PLUMESIM_RINGS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 {
			logger.Warn("invalid PLUMESIM_RINGS value, using default", "value", v, "default", cfg.RingsPerOrbit)
		} else {
			cfg.RingsPerOrbit = n
		}
	}

	if v := os.Getenv("PLUMESIM_PARTICLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 {
			logger.Warn("invalid PLUMESIM_PARTICLES value, using default", "value", v, "default", cfg.ParticlesPerRing)
		} else {
			cfg.ParticlesPerRing = n
		}
	}

	if v := os.Getenv("PLUMESIM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid PLUMESIM_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	logger.Info("simulation config",
		"shells", cfg.OrbitShells,
		"rings", cfg.RingsPerOrbit,
		"particles", cfg.ParticlesPerRing,
		"workers", cfg.Workers,
	)

	return cfg
}

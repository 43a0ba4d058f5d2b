// Command bench drives a memoized workload through a chosen store backend
// and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/sitememo/memo"
	pmet "github.com/IvanBrykalov/sitememo/metrics/prom"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("bench failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg config, logger *zap.Logger) error {
	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			logger.Info("pprof: serving", zap.String("addr", cfg.PprofAddr))
			logger.Warn("pprof: stopped", zap.Error(http.ListenAndServe(cfg.PprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	var metrics *pmet.Adapter
	opts := []memo.Option{memo.WithLogger(logger)}
	if cfg.MetricsAddr != "" {
		metrics = pmet.New(nil, "sitememo", "bench", nil)
		opts = append(opts, memo.WithMetrics(metrics))
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics: serving", zap.String("addr", cfg.MetricsAddr))
			logger.Warn("metrics: stopped", zap.Error(http.ListenAndServe(cfg.MetricsAddr, nil)))
		}()
	}

	// ---- Memoized entry point ----
	site := memo.NewRegistry(opts...).At("bench.collatz")
	m, err := newMemoized(cfg, site, metrics)
	if err != nil {
		return err
	}
	defer m.Close()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	keysMax := uint64(cfg.Keys - 1)

	logger.Info("bench: starting",
		zap.String("backend", cfg.Backend),
		zap.Int("capacity", cfg.Capacity),
		zap.Bool("once", cfg.Once),
		zap.Int("workers", workers),
		zap.Int("keys", cfg.Keys),
		zap.Duration("duration", cfg.Duration),
		zap.Int64("seed", cfg.Seed))

	// ---- Load generation ----
	var calls atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(cfg.Seed + int64(id)*9973))
			zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, keysMax)
			for ctx.Err() == nil {
				// keys start at 1: collatz(0) is degenerate
				if _, err := m.call(ctx, zipf.Uint64()+1); err != nil && ctx.Err() == nil {
					return err
				}
				calls.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- Report ----
	st := site.Stats()
	ops := calls.Load()
	logger.Info("bench: done",
		zap.Duration("elapsed", elapsed),
		zap.Uint64("calls", ops),
		zap.Float64("calls_per_sec", float64(ops)/elapsed.Seconds()),
		zap.Int64("hits", st.Hits),
		zap.Int64("misses", st.Misses),
		zap.Int64("inserts", st.Inserts),
		zap.Float64("hit_ratio", st.HitRatio()))

	fmt.Printf("backend=%s cap=%d once=%v workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Backend, cfg.Capacity, cfg.Once, workers, cfg.Keys, elapsed, cfg.Seed)
	fmt.Printf("calls=%d (%.0f calls/s)\n", ops, float64(ops)/elapsed.Seconds())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", st.Hits, st.Misses, st.HitRatio()*100)
	return nil
}

// Command tpcreplay replays recorded TPC events through the tracker.
//
// It reads a settings file and a file of concatenated events from a local
// directory or object store, reconstructs every event into a bounded
// result buffer, and optionally archives inputs and results into a blob
// store and records per-event summaries in a SQLite catalog.
//
// Usage:
//
//	tpcreplay -input ./data -archive s3://bucket/replays -catalog runs.db \
//	    -trackers 4 -workers 9 -refit -metrics-addr :2112
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "tpcreplay:", err)
		os.Exit(2)
	}
	logger := cfg.logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mc := newPromCollector(reg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	if err := run(ctx, cfg, logger, mc, os.Stdout); err != nil {
		logger.Error("replay failed", "error", err)
		stop()
		os.Exit(1)
	}
}

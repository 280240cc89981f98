package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	persistlog "github.com/psy7604/CodeCraft-2023-Lyingflat/internal/persistence/log"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/catalogs"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/tuning"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/transport/observer"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: built-in constants)")
		catDir     = flag.String("catalogs", "", "directory with items.json and stations.json (default: embedded)")
		traceDir   = flag.String("trace", "", "write a zstd JSONL frame trace to this directory")
		observe    = flag.String("observe", "", "serve the observer websocket on this loopback address, e.g. 127.0.0.1:8091")
		debug      = flag.Bool("debug", false, "log per-agent task decisions")
	)
	flag.Parse()

	// stdout carries the judge protocol.
	logger := log.New(os.Stderr, "[robot] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	cats := catalogs.Default()
	if dir := strings.TrimSpace(*catDir); dir != "" {
		if cats, err = catalogs.Load(dir); err != nil {
			logger.Fatalf("load catalogs: %v", err)
		}
	}

	cfg := runConfig{
		Tuning: tune,
		Cats:   cats,
		RunID:  uuid.NewString(),
	}
	if *debug {
		cfg.Debug = logger
	}
	logger.Printf("run %s items=%s stations=%s", cfg.RunID, cats.Items.Digest, cats.Stations.Digest)

	os.Exit(serve(cfg, strings.TrimSpace(*traceDir), strings.TrimSpace(*observe), logger))
}

// serve owns the optional trace file and observer server for the duration of
// one run and returns the process exit code.
func serve(cfg runConfig, traceDir, observeAddr string, logger *log.Logger) int {
	if traceDir != "" {
		tl := persistlog.NewFrameLogger(traceDir, cfg.RunID)
		defer func() {
			if err := tl.Close(); err != nil {
				logger.Printf("close trace: %v", err)
			}
		}()
		cfg.Trace = tl
		logger.Printf("trace: %s", tl.Path())
	}

	if observeAddr != "" {
		obs := observer.NewServer(logger)
		srv := &http.Server{
			Addr:              observeAddr,
			Handler:           obs.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("observer: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		cfg.Observer = obs
		logger.Printf("observer listening on %s", observeAddr)
	}

	stats, err := run(os.Stdin, os.Stdout, cfg)
	if err != nil {
		logger.Printf("run: %v (after %d frames)", err, stats.Frames)
		return 1
	}
	logger.Printf("done: frames=%d money=%d", stats.Frames, stats.Money)
	return 0
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ns1-tools/ns1-sync/api/ns1"
	"github.com/ns1-tools/ns1-sync/config"
	"github.com/ns1-tools/ns1-sync/logger"
	"github.com/ns1-tools/ns1-sync/metrics"
	"github.com/ns1-tools/ns1-sync/reconcile"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Configure(cfg.Log)

	m := metrics.New()

	var server *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		server = &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: mux,
		}
		go func() {
			slog.Info("Starting metrics server", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	client, err := ns1.New(cfg.NS1, m)
	if err != nil {
		slog.Error("Failed to initialize NS1 client", "error", err)
		os.Exit(1)
	}
	engine := reconcile.NewEngine(client, cfg, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("Starting ns1-sync", "declarations", cfg.Declarations, "dryRun", cfg.Reconcile.DryRun)

	// One-shot mode: apply the declarations once and exit.
	if cfg.SyncInterval == 0 {
		results, err := performSync(ctx, engine, cfg.Declarations, m)
		if err != nil {
			slog.Error("Sync failed", "error", err)
			os.Exit(1)
		}
		if results.Failures > 0 {
			os.Exit(1)
		}
		return
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go runSyncLoop(ctx, wg, engine, cfg, m)

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("Shutdown signal received")
	cancel()

	if server != nil {
		shutdownCtx, cancelServer := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelServer()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}

	wg.Wait()
	slog.Info("Service shutdown complete")
}

func runSyncLoop(ctx context.Context, wg *sync.WaitGroup, engine *reconcile.Engine, cfg *config.Config, m *metrics.Metrics) {
	defer wg.Done()
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	for {
		if _, err := performSync(ctx, engine, cfg.Declarations, m); err != nil {
			slog.Error("Sync operation failed", "error", err)
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			slog.Info("Stopping sync loop")
			return
		}
	}
}

func performSync(ctx context.Context, engine *reconcile.Engine, declarationsPath string, m *metrics.Metrics) (reconcile.Results, error) {
	slog.Info("Starting sync operation")
	start := time.Now()
	defer func() {
		m.SetSyncDuration(time.Since(start))
	}()

	// Declarations are re-read each run so edits take effect without a
	// restart.
	decls, err := config.LoadDeclarations(declarationsPath)
	if err != nil {
		m.IncSyncRun(false)
		return reconcile.Results{}, err
	}

	results := engine.Sync(ctx, decls)

	slog.Info("Sync completed",
		"resources", len(results.Outcomes),
		"changed", results.Changed,
		"failures", results.Failures)
	m.IncSyncRun(results.Failures == 0)

	return results, nil
}

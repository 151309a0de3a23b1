package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kakeibo/internal/cache"
	"kakeibo/internal/cli"
	"kakeibo/internal/cloudsync"
	"kakeibo/internal/config"
	apphttp "kakeibo/internal/http"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	cfg, logger := cli.LoadConfig((*config.Config).Validate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	store := ledger.NewStore(res.Slot, ledger.WithLogger(logger))
	dispatcher := cloudsync.NewDispatcher(res.Publisher, cli.SyncOptions(cfg, logger))
	views := cache.NewLRUCache[*services.View](cfg.ViewCacheSize, cfg.ViewCacheTTL)
	tracker := services.NewTracker(store, dispatcher, views, logger)

	caches := cache.NewManager(logger)
	caches.Register(views)

	tracker.Start(ctx)

	srv := apphttp.NewServer(cfg.Addr(), tracker, apphttp.Options{Logger: logger})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting kakeibo server",
			"port", cfg.Port,
			log.FieldBackend, cfg.StorageBackend,
			"sync", cfg.SyncBackend,
			"sync_enabled", tracker.SyncEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		caches.Run(gctx, cfg.ViewCacheTTL)
		return nil
	})

	g.Go(func() error {
		logSyncEvents(gctx, logger, dispatcher)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		tracker.Close()
		os.Exit(1)
	}

	tracker.Close()
	logger.Info("Server stopped gracefully")
}

// logSyncEvents reports upload outcomes until ctx is done.
func logSyncEvents(ctx context.Context, logger *log.Logger, d *cloudsync.Dispatcher) {
	if !d.Enabled() {
		return
	}
	logger = logger.WithComponent(log.ComponentSync)
	events := d.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if ev.Err != nil {
				logger.Warn("Sync event", log.FieldSyncState, string(ev.State), log.FieldCount, ev.Count, "silent", ev.Silent, log.FieldError, ev.Err)
				continue
			}
			logger.Debug("Sync event", log.FieldSyncState, string(ev.State), log.FieldCount, ev.Count, "silent", ev.Silent)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"

	"aoedash/internal/config"
	"aoedash/internal/dashboard"
	"aoedash/internal/logging"
	"aoedash/internal/session"
	"aoedash/internal/storage"
	"aoedash/internal/telemetry"

	"go.uber.org/zap"
)

// app holds everything a command needs to render pages.
type app struct {
	cfg     *config.Config
	source  storage.Source
	cache   *storage.SnapshotCache
	fetcher *storage.Fetcher
	watcher *storage.Watcher
	dash    *dashboard.Dashboard

	shutdownTracing telemetry.ShutdownFunc
}

// appOptions selects the optional parts of an app.
type appOptions struct {
	// Interactive keeps category logs in the log file and starts the disk
	// watcher when the config asks for it.
	Interactive bool
}

// openApp loads the config and wires storage, the session and the
// dashboard. Close must be called when done.
func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	logOpts := cfg.Logging.Options()
	if verbose {
		logOpts.DebugMode = true
		logOpts.Level = "debug"
		if !opts.Interactive {
			logOpts.File = ""
		}
	}
	if err := logging.Initialize(logOpts); err != nil {
		return nil, err
	}
	logging.Boot("config loaded from %s (storage %s)", configPath, cfg.Storage.Kind)

	a := &app{cfg: cfg}

	a.shutdownTracing, err = telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		a.shutdownTracing = nil
	}

	a.source, err = buildSource(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Cache.Enabled {
		a.cache, err = storage.OpenSnapshotCache(cfg.Cache.Path)
		if err != nil {
			logger.Warn("snapshot cache unavailable", zap.String("path", cfg.Cache.Path), zap.Error(err))
			a.cache = nil
		}
	}

	a.fetcher = storage.NewFetcher(a.source, storage.FetcherOptions{
		Timeout:     cfg.GetStorageTimeout(),
		Cache:       a.cache,
		CacheMaxAge: cfg.GetCacheMaxAge(),
	})

	sources := make(map[string]string)
	var paths []string
	for _, ns := range cfg.PageNames() {
		src, _ := cfg.PageSource(ns)
		sources[ns] = src
		paths = append(paths, src)
	}
	a.dash = dashboard.New(session.New(), a.fetcher, sources, cfg.Render.MaxPasses)

	if dir, ok := a.source.(*storage.DirSource); ok && opts.Interactive && cfg.Storage.Watch {
		a.watcher, err = storage.NewWatcher(dir, a.fetcher, paths)
		if err == nil {
			err = a.watcher.Start(ctx)
		}
		if err != nil {
			logger.Warn("snapshot watcher disabled", zap.Error(err))
			a.watcher = nil
		}
	}

	return a, nil
}

func buildSource(ctx context.Context, cfg *config.Config) (storage.Source, error) {
	switch cfg.Storage.Kind {
	case config.StorageDir:
		return storage.NewDirSource(cfg.Storage.Dir), nil
	case config.StorageDataLake:
		creds, err := config.LoadCredentials()
		if err != nil {
			return nil, err
		}
		return storage.NewDataLakeSource(ctx, storage.DataLakeOptions{
			Account:     cfg.Storage.Account,
			Container:   cfg.Storage.Container,
			Endpoint:    cfg.Storage.Endpoint,
			Credentials: creds,
		})
	default:
		return nil, fmt.Errorf("unsupported storage kind %q", cfg.Storage.Kind)
	}
}

// changes returns the watcher's change feed, nil without a watcher.
func (a *app) changes() <-chan string {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Changes()
}

// Close releases the watcher, cache, tracer and log file.
func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warn("closing snapshot cache", zap.Error(err))
		}
	}
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("flushing traces", zap.Error(err))
		}
	}
	logging.Close()
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/gallerysync/internal/adapter"
	"github.com/mmcdole/gallerysync/internal/adapter/source"
	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/gallery"
	"github.com/mmcdole/gallerysync/internal/service"
	"github.com/mmcdole/gallerysync/internal/store"
)

// application holds the wired components for one command run
type application struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	store    *store.ContentStore
	commands *gallery.Commands
	view     *service.ViewAdapter
	viewer   *adapter.Viewer

	closers []io.Closer
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(opts *rootOptions) (*adapter.Config, error) {
	cfg, err := adapter.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

// newApplication wires config, logging, store, feed client and services.
// observer may be nil.
func newApplication(opts *rootOptions, observer domain.SyncObserver) (*application, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		app.closers = append(app.closers, closer)
	}
	slog.SetDefault(logger)
	app.logger = logger

	logger.Info("starting gallerysync", "version", Version)

	st, err := store.NewContentStore(cfg.Cache.Dir, cfg.Feed.URL)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	app.store = st

	feed, err := source.NewFeed(cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	fetcher := gallery.NewFetcher(st, cfg.Feed.Timeout, cfg.Sync.MaxContentBytes, logger)
	app.commands = gallery.NewCommands(feed, st, fetcher, observer, cfg.Sync.MaxConcurrentDownloads, logger)
	app.view = service.NewViewAdapter(gallery.NewQueries(st), app.commands, cfg.Sync.NearEndThreshold, logger)
	app.viewer = adapter.NewViewer(cfg.Viewer.Command, cfg.Viewer.Args, logger)

	return app, nil
}

// Close waits for downloads, then releases the store and log file
func (a *application) Close() error {
	if a.commands != nil {
		a.commands.Wait()
	}

	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logger != nil {
		a.logger.Info("shutting down")
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// withApplication runs fn with a wired application and closes it afterwards
func withApplication(opts *rootOptions, observer domain.SyncObserver, fn func(*application) error) error {
	app, err := newApplication(opts, observer)
	if err != nil {
		return err
	}
	runErr := fn(app)
	closeErr := app.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

// requireConfigured fails commands that talk to the feed before setup ran
func requireConfigured(app *application) error {
	if !app.cfg.IsConfigured() {
		return domain.ErrNotConfigured
	}
	return nil
}

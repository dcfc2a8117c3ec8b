package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gigurra/subtrack/internal"
	"go.uber.org/zap"
)

// app is everything a command needs, wired from the config file.
type app struct {
	cfg      *internal.Config
	log      *zap.Logger
	storage  internal.Storage
	store    *internal.Store
	currency internal.Currency
	stdout   io.Writer
	stderr   io.Writer
	stdin    io.Reader
	now      func() time.Time

	// ex overrides the configured extraction service.
	ex internal.Extractor
}

func configPathOrDefault(path string) string {
	if path == "" {
		return internal.DefaultConfigPath()
	}
	return internal.ExpandHome(path)
}

// openApp loads config, opens storage and restores the store.
func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := internal.LoadConfig(configPathOrDefault(configPath))
	if err != nil {
		return nil, err
	}

	log, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	storage, err := internal.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		storage: storage,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		stdin:   os.Stdin,
		now:     time.Now,
	}
	a.store = internal.NewStore(storage, internal.StoreOptions{
		KeyPrefix: cfg.Storage.KeyPrefix,
		Logger:    log,
		Now:       a.now,
	})
	a.store.Load(ctx)

	code := cfg.Currency
	if code == "" {
		code = internal.DetectSystemCurrency()
	}
	a.currency = internal.GetCurrency(code)

	log.Debug("app ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path),
		zap.String("currency", a.currency.Code))
	return a, nil
}

func (a *app) close() {
	if err := a.storage.Close(); err != nil {
		a.log.Warn("closing storage", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) requireOnboarded() error {
	if !a.store.Onboarded() {
		return internal.ErrNotOnboarded
	}
	return nil
}

// extractor picks the extraction service from config. Without an API key
// auto falls back to local detection; an explicit gemini provider gets a
// stand-in that fails detection but still drafts cancellation emails.
func (a *app) extractor(ctx context.Context) internal.Extractor {
	if a.ex != nil {
		return a.ex
	}
	local := &internal.LocalExtractor{
		Tolerance: a.cfg.Extraction.Tolerance,
		Currency:  a.currency.Code,
		Logger:    a.log,
		Now:       a.now,
	}
	if a.cfg.Extraction.Provider == internal.ProviderLocal {
		return local
	}

	key := a.cfg.APIKey()
	if key == "" {
		if a.cfg.Extraction.Provider == internal.ProviderAuto {
			a.log.Debug("no API key, using local detection")
			return local
		}
		reason := fmt.Errorf("no API key: set %s in the environment or a .env file", a.cfg.Extraction.APIKeyEnv)
		return internal.UnavailableExtractor{Reason: reason}
	}
	ex, err := internal.NewGeminiExtractor(ctx, internal.GeminiOptions{
		APIKey: key,
		Model:  a.cfg.Extraction.Model,
		Logger: a.log,
		Now:    a.now,
	})
	if err != nil {
		a.log.Warn("extraction client unavailable", zap.Error(err))
		return internal.UnavailableExtractor{Reason: err}
	}
	return ex
}

// saved reports a mutation result: a failed save is only a warning.
func (a *app) saved(err error) error {
	if err == nil {
		return nil
	}
	if internal.IsStorageWriteError(err) {
		fmt.Fprintf(a.stderr, "Warning: %v\n", err)
		return nil
	}
	return err
}

// run opens the app, runs fn and exits non-zero on error.
func run(configPath string, fn func(ctx context.Context, a *app) error) {
	ctx, stop := signalContext()
	defer stop()

	a, err := openApp(ctx, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = fn(ctx, a)
	a.close()
	if err != nil {
		var exErr *internal.ExtractionError
		if errors.As(err, &exErr) {
			fmt.Fprintln(os.Stderr, "We couldn't detect any subscriptions. Please try pasting a clearer list or statement.")
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

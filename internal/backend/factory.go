// Package backend builds the storage.Store selected by configuration.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/mmynk/splitright/internal/config"
	"github.com/mmynk/splitright/internal/metrics"
	"github.com/mmynk/splitright/internal/storage"
	"github.com/mmynk/splitright/internal/storage/fallback"
	"github.com/mmynk/splitright/internal/storage/jsonfile"
	"github.com/mmynk/splitright/internal/storage/sqlite"
)

// Result is an opened store and the function that releases it.
type Result struct {
	Store   storage.Store
	Cleanup func() error
}

// Factory opens stores.
type Factory struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewFactory creates a backend factory. A nil logger uses slog.Default.
func NewFactory(logger *slog.Logger, m *metrics.Metrics) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger, metrics: m}
}

// Open creates the store named by cfg.StorageBackend.
func (f *Factory) Open(cfg *config.Config) (*Result, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		return f.openSQLite(cfg)
	case config.BackendJSONFile:
		return f.openJSONFile(cfg)
	case config.BackendFallback:
		return f.openFallback(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

func (f *Factory) openSQLite(cfg *config.Config) (*Result, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", cfg.DBPath)
	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *Factory) openJSONFile(cfg *config.Config) (*Result, error) {
	store, err := jsonfile.New(cfg.DataDir, cfg.StaleAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JSON file store: %w", err)
	}
	f.logger.Info("Initialized JSON file backend",
		"data_dir", cfg.DataDir,
		"stale_after", cfg.StaleAfter,
	)
	return &Result{Store: store, Cleanup: store.Close}, nil
}

// openFallback pairs SQLite with the JSON file store. When SQLite cannot even be opened
// the local store is returned directly, already in fallback mode.
func (f *Factory) openFallback(cfg *config.Config) (*Result, error) {
	local, err := f.openJSONFile(cfg)
	if err != nil {
		return nil, err
	}

	primary, err := f.openSQLite(cfg)
	if err != nil {
		f.logger.Warn("Primary storage unavailable, using local store", "error", err)
		f.metrics.FallbackActivated()
		return local, nil
	}

	store := fallback.New(primary.Store, local.Store, fallback.WithOnSwitch(func(error) {
		f.metrics.FallbackActivated()
	}))
	f.logger.Info("Initialized fallback backend")
	return &Result{Store: store, Cleanup: store.Close}, nil
}

package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitright/internal/config"
	"github.com/mmynk/splitright/internal/metrics"
	"github.com/mmynk/splitright/internal/models"
	"github.com/mmynk/splitright/internal/storage/fallback"
	"github.com/mmynk/splitright/internal/storage/jsonfile"
	"github.com/mmynk/splitright/internal/storage/sqlite"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:           8080,
		StorageBackend: backend,
		DBPath:         filepath.Join(dir, "db", "test.db"),
		DataDir:        filepath.Join(dir, "json"),
		StaleAfter:     time.Hour,
		AdminTokenTTL:  time.Hour,
	}
}

func TestFactory_Open(t *testing.T) {
	tests := []struct {
		backend string
		check   func(t *testing.T, r *Result)
	}{
		{config.BackendSQLite, func(t *testing.T, r *Result) {
			assert.IsType(t, &sqlite.SQLiteStore{}, r.Store)
		}},
		{config.BackendJSONFile, func(t *testing.T, r *Result) {
			assert.IsType(t, &jsonfile.Store{}, r.Store)
		}},
		{config.BackendFallback, func(t *testing.T, r *Result) {
			fb, ok := r.Store.(*fallback.Store)
			require.True(t, ok, "expected *fallback.Store, got %T", r.Store)
			assert.False(t, fb.InFallback())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			f := NewFactory(nil, metrics.New(prometheus.NewRegistry()))
			r, err := f.Open(testConfig(t, tt.backend))
			require.NoError(t, err)
			t.Cleanup(func() { r.Cleanup() })

			tt.check(t, r)
			require.NoError(t, r.Store.CreateGroup(context.Background(), &models.Group{Name: "G", Members: []string{"A"}}))
		})
	}
}

func TestFactory_FallbackWhenPrimaryCannotOpen(t *testing.T) {
	cfg := testConfig(t, config.BackendFallback)

	// A regular file where the database directory should be makes SQLite fail to open.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.DBPath = filepath.Join(blocker, "test.db")

	r, err := NewFactory(nil, nil).Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { r.Cleanup() })

	assert.IsType(t, &jsonfile.Store{}, r.Store)
}

func TestFactory_UnknownBackend(t *testing.T) {
	_, err := NewFactory(nil, nil).Open(testConfig(t, "postgres"))
	assert.Error(t, err)
}

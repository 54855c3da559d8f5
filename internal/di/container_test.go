package di

import (
	"context"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genrewiki/genrewiki-server/internal/config"
	"github.com/genrewiki/genrewiki-server/internal/di/providers"
	"github.com/genrewiki/genrewiki-server/internal/seed"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Environment = "test"
	cfg.Logger.Level = "error"
	cfg.Store.Backend = backend
	cfg.Store.DataPath = t.TempDir()
	return cfg
}

func TestContainer_WiresServicesPerBackend(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			injector := NewContainerWithConfig(testConfig(t, backend))
			t.Cleanup(func() { _ = injector.Shutdown() })

			seeder, err := do.Invoke[*seed.Seeder](injector)
			require.NoError(t, err)

			res, err := seeder.SeedDefaults(context.Background())
			require.NoError(t, err)
			require.NotNil(t, res)

			genres := do.MustInvoke[*providers.GenreServiceHandle](injector)
			list, err := genres.ListGenres(context.Background())
			require.NoError(t, err)
			assert.Len(t, list, len(res.Assigned))
		})
	}
}

func TestContainer_UnknownBackend(t *testing.T) {
	injector := NewContainerWithConfig(testConfig(t, "postgres"))
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[*providers.StoreHandle](injector)
	assert.Error(t, err)
}

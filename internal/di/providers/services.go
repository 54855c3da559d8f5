package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/genrewiki/genrewiki-server/internal/config"
	"github.com/genrewiki/genrewiki-server/internal/logger"
	"github.com/genrewiki/genrewiki-server/internal/seed"
	"github.com/genrewiki/genrewiki-server/internal/service"
)

// GenreServiceHandle wraps the genre service.
type GenreServiceHandle struct {
	*service.GenreService
}

// ProvideGenreService provides the genre service.
func ProvideGenreService(i do.Injector) (*GenreServiceHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &GenreServiceHandle{
		GenreService: service.NewGenreService(storeHandle.Store, indexHandle.GenreIndex, log.Logger),
	}, nil
}

// ProvideCorrectionService provides the correction service.
func ProvideCorrectionService(i do.Injector) (*service.CorrectionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	genres := do.MustInvoke[*GenreServiceHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCorrectionService(storeHandle.Store, genres.GenreService, log.Logger), nil
}

// ProvideSeeder provides the taxonomy seeder.
func ProvideSeeder(i do.Injector) (*seed.Seeder, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	corrections := do.MustInvoke[*service.CorrectionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return seed.NewSeeder(corrections, storeHandle.Store, log.Logger), nil
}

// SeedDefaultsIfEnabled merges the embedded taxonomy into an empty store.
func SeedDefaultsIfEnabled(i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Seed.Defaults {
		log.Info("Default taxonomy seeding disabled by configuration")
		return nil
	}

	seeder := do.MustInvoke[*seed.Seeder](i)
	res, err := seeder.SeedDefaults(context.Background())
	if err != nil {
		return err
	}
	if res != nil {
		log.WithCorrection(res.Correction.ID).Info("Default taxonomy merged", "genres", len(res.Assigned))
	}
	return nil
}

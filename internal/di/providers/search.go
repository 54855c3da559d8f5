package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/genrewiki/genrewiki-server/internal/logger"
	"github.com/genrewiki/genrewiki-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.GenreIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve index over base genres.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewGenreIndex(log.Logger)
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{GenreIndex: index}, nil
}

// WarmSearchIndex builds the search index in the background so the first
// search does not pay for it.
func WarmSearchIndex(i do.Injector) {
	genres := do.MustInvoke[*GenreServiceHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		if err := genres.Reindex(context.Background()); err != nil {
			log.Error("Initial search index build failed", "error", err)
			return
		}
		count, _ := genres.IndexedCount()
		log.Info("Search index ready", "documents", count)
	}()
}

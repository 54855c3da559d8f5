package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/logger"
	"github.com/genrewiki/genrewiki-server/internal/search"
	"github.com/genrewiki/genrewiki-server/internal/store"
	"github.com/genrewiki/genrewiki-server/internal/taxonomy"
)

// GenreService serves the base taxonomy and its search index.
type GenreService struct {
	genres store.GenreReader
	index  *search.GenreIndex
	logger *slog.Logger

	// stale is set whenever the base taxonomy changes; the next search
	// rebuilds the index first.
	stale atomic.Bool
}

// NewGenreService creates a new genre service. The index starts stale.
func NewGenreService(genres store.GenreReader, index *search.GenreIndex, logger *slog.Logger) *GenreService {
	s := &GenreService{
		genres: genres,
		index:  index,
		logger: orDiscard(logger),
	}
	s.stale.Store(true)
	return s
}

// ListGenres returns every base genre with derived children and influences.
func (s *GenreService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	genres, err := s.genres.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// GetGenre returns a single base genre.
func (s *GenreService) GetGenre(ctx context.Context, id int) (*domain.Genre, error) {
	g, err := s.genres.GetGenre(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "genre %d", id)
	}
	return g, nil
}

// SearchGenres runs a full-text query over base genre names, alternate
// names and short descriptions.
func (s *GenreService) SearchGenres(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.stale.Load() {
		if err := s.Reindex(ctx); err != nil {
			return nil, err
		}
	}
	return s.index.Search(ctx, params)
}

// Reindex rebuilds the search index from the store.
func (s *GenreService) Reindex(ctx context.Context) error {
	genres, err := s.ListGenres(ctx)
	if err != nil {
		return err
	}
	if err := s.index.Replace(genres); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "rebuild search index")
	}
	s.stale.Store(false)
	s.logger.Debug("genre search index rebuilt", "genres", len(genres))
	return nil
}

// Invalidate marks the search index stale after the base taxonomy changed.
func (s *GenreService) Invalidate() {
	s.stale.Store(true)
}

// IndexedCount returns the number of genres currently in the search index.
func (s *GenreService) IndexedCount() (uint64, error) {
	return s.index.DocumentCount()
}

// Policy is the full type relationship policy, as served to clients.
type Policy struct {
	Parents             map[domain.GenreType][]domain.GenreType `json:"parents"`
	Children            map[domain.GenreType][]domain.GenreType `json:"children"`
	InfluencedBy        map[domain.GenreType][]domain.GenreType `json:"influenced_by"`
	Influences          map[domain.GenreType][]domain.GenreType `json:"influences"`
	LocationTypes       []domain.GenreType                      `json:"location_types"`
	InfluenceQualifiers []domain.InfluenceType                  `json:"influence_qualifiers"`
}

// Policy returns the static type relationship tables.
func (s *GenreService) Policy() Policy {
	p := Policy{
		Parents:             taxonomy.AllowedParentTypes,
		Children:            taxonomy.AllowedChildTypes,
		InfluencedBy:        taxonomy.AllowedInfluenceTypes,
		Influences:          taxonomy.AllowedInfluenceTargetTypes,
		LocationTypes:       []domain.GenreType{},
		InfluenceQualifiers: []domain.InfluenceType{domain.InfluenceHistorical, domain.InfluenceSonic},
	}
	for _, t := range domain.GenreTypes {
		if taxonomy.HasLocations(t) {
			p.LocationTypes = append(p.LocationTypes, t)
		}
	}
	return p
}

// orDiscard lets tests construct services without a logger.
func orDiscard(l *slog.Logger) *slog.Logger {
	return logger.OrDiscard(l)
}

package search

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/logger"
)

const batchSize = 500

// GenreIndex is an in-memory Bleve index over base genres.
//
// All methods are safe for concurrent use. Replace swaps in a freshly built
// index so searches never observe a half-built state.
type GenreIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// NewGenreIndex creates an empty in-memory index.
func NewGenreIndex(log *slog.Logger) (*GenreIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &GenreIndex{index: idx, logger: logger.OrDiscard(log)}, nil
}

// Close releases the index.
func (s *GenreIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Replace rebuilds the index from genres and swaps it in.
func (s *GenreIndex) Replace(genres []*domain.Genre) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexInto(fresh, genres); err != nil {
		_ = fresh.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Debug("search index rebuilt", "genres", len(genres))
	return nil
}

// IndexGenres adds or replaces the given genres.
func (s *GenreIndex) IndexGenres(genres []*domain.Genre) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexInto(s.index, genres)
}

// DeleteGenre removes one genre.
func (s *GenreIndex) DeleteGenre(id int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(strconv.Itoa(id))
}

// DocumentCount returns the number of indexed genres.
func (s *GenreIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

func indexInto(idx bleve.Index, genres []*domain.Genre) error {
	for i := 0; i < len(genres); i += batchSize {
		end := min(i+batchSize, len(genres))

		batch := idx.NewBatch()
		for _, g := range genres[i:end] {
			doc := DocumentFromGenre(g)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := idx.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

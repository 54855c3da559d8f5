// Package store defines the persistence interfaces for the genrewiki server
// and the backend-independent parts of merging a correction.
package store

import (
	"context"

	"github.com/genrewiki/genrewiki-server/internal/domain"
)

// GenreReader reads the base taxonomy. Returned genres carry their derived
// Children and Influences.
type GenreReader interface {
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
	GetGenre(ctx context.Context, id int) (*domain.Genre, error)
}

// GenreWriter mutates the base taxonomy. Implementations ignore the derived
// Children and Influences of the genres they are given.
type GenreWriter interface {
	// CreateGenre inserts g and sets g.ID.
	CreateGenre(ctx context.Context, g *domain.Genre) error
	// UpdateGenre replaces the fields and stored edges of an existing genre.
	UpdateGenre(ctx context.Context, g *domain.Genre) error
	// DeleteGenre removes a genre together with every edge pointing at it.
	DeleteGenre(ctx context.Context, id int) error
}

// CorrectionRepository stores corrections.
type CorrectionRepository interface {
	CreateCorrection(ctx context.Context, c *domain.Correction) error
	GetCorrection(ctx context.Context, id string) (*domain.Correction, error)
	// PutCorrection overwrites an existing correction (last writer wins).
	// It returns ErrAlreadyMerged once the stored correction is merged.
	PutCorrection(ctx context.Context, c *domain.Correction) error
	RemoveCorrection(ctx context.Context, id string) error
	ListCorrections(ctx context.Context) ([]*domain.Correction, error)
}

// Merger applies a correction to the base taxonomy atomically and marks it
// merged. It returns the IDs assigned to created genres, keyed by local ID,
// or ErrAlreadyMerged when another merge got there first.
type Merger interface {
	MergeCorrection(ctx context.Context, c *domain.Correction) (map[int]int, error)
}

// Store is a complete persistence backend.
type Store interface {
	GenreReader
	CorrectionRepository
	Merger

	Ping(ctx context.Context) error
	Close() error
}

package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/store"
)

// genreKey zero-pads the ID so key order matches numeric order.
func genreKey(id int) []byte {
	return fmt.Appendf(nil, "%s%012d", genrePrefix, id)
}

// ListGenres returns every genre ordered by ID, with derived edges.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var genres []*domain.Genre
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		genres, err = scanPrefix[domain.Genre](txn, genrePrefix)
		return err
	})
	if err != nil {
		return nil, err
	}

	store.LinkGenres(genres)
	return genres, nil
}

// GetGenre retrieves a genre by ID with its derived children and influences.
func (s *Store) GetGenre(ctx context.Context, id int) (*domain.Genre, error) {
	genres, err := s.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(genres, func(g *domain.Genre) bool { return g.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound.For("genre %d", id)
	}
	return genres[i], nil
}

// CreateGenre inserts a new genre and sets g.ID.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txnWriter{txn}.CreateGenre(ctx, g)
	})
}

// UpdateGenre replaces an existing genre.
func (s *Store) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txnWriter{txn}.UpdateGenre(ctx, g)
	})
}

// DeleteGenre removes a genre and every edge pointing at it.
func (s *Store) DeleteGenre(ctx context.Context, id int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txnWriter{txn}.DeleteGenre(ctx, id)
	})
}

// txnWriter implements store.GenreWriter inside one Badger transaction.
type txnWriter struct {
	txn *badger.Txn
}

func (w txnWriter) nextID() (int, error) {
	next := 1
	item, err := w.txn.Get([]byte(genreSeqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			last, err := strconv.Atoi(string(val))
			next = last + 1
			return err
		}); err != nil {
			return 0, err
		}
	}
	if err := w.txn.Set([]byte(genreSeqKey), []byte(strconv.Itoa(next))); err != nil {
		return 0, err
	}
	return next, nil
}

func (w txnWriter) exists(id int) (bool, error) {
	_, err := w.txn.Get(genreKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// checkEdges rejects edges to genres that do not exist.
func (w txnWriter) checkEdges(g *domain.Genre) error {
	ids := slices.Clone(g.Parents)
	for _, inf := range g.InfluencedBy {
		ids = append(ids, inf.ID)
	}
	for _, id := range ids {
		if id == g.ID {
			continue
		}
		ok, err := w.exists(id)
		if err != nil {
			return err
		}
		if !ok {
			return store.ErrInvalidInput.For("genre %d", g.ID).Because(fmt.Errorf("references unknown genre %d", id))
		}
	}
	return nil
}

// stored strips derived fields before persisting.
func stored(g *domain.Genre) *domain.Genre {
	c := *g
	c.Children = nil
	c.Influences = nil
	return &c
}

func (w txnWriter) CreateGenre(ctx context.Context, g *domain.Genre) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := w.nextID()
	if err != nil {
		return err
	}
	g.ID = id
	if g.CreatedAt.IsZero() {
		g.InitTimestamps()
	}

	if err := w.checkEdges(g); err != nil {
		return err
	}
	return setJSON(w.txn, genreKey(g.ID), stored(g))
}

func (w txnWriter) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var existing domain.Genre
	if err := getJSON(w.txn, genreKey(g.ID), &existing); err != nil {
		return err
	}
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now()

	if err := w.checkEdges(g); err != nil {
		return err
	}
	return setJSON(w.txn, genreKey(g.ID), stored(g))
}

func (w txnWriter) DeleteGenre(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := w.exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound.For("genre %d", id)
	}
	if err := w.txn.Delete(genreKey(id)); err != nil {
		return err
	}

	// Collect first, then rewrite outside the iterator.
	genres, err := scanPrefix[domain.Genre](w.txn, genrePrefix)
	if err != nil {
		return err
	}
	for _, g := range genres {
		if g.ID == id {
			continue
		}
		before := len(g.Parents) + len(g.InfluencedBy)
		g.Parents = slices.DeleteFunc(g.Parents, func(p int) bool { return p == id })
		g.InfluencedBy = slices.DeleteFunc(g.InfluencedBy, func(inf domain.Influence) bool { return inf.ID == id })
		if len(g.Parents)+len(g.InfluencedBy) == before {
			continue
		}
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		if err := w.txn.Set(genreKey(g.ID), data); err != nil {
			return err
		}
	}
	return nil
}

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/store"
)

func correctionKey(id string) []byte {
	return []byte(correctionPrefix + id)
}

// CreateCorrection stores a new correction.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateCorrection(ctx context.Context, c *domain.Correction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(correctionKey(c.ID)); err == nil {
			return store.ErrAlreadyExists.For("correction %s", c.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, correctionKey(c.ID), c)
	})
}

// GetCorrection retrieves a correction by ID.
func (s *Store) GetCorrection(ctx context.Context, id string) (*domain.Correction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var c domain.Correction
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, correctionKey(id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PutCorrection overwrites an existing correction.
func (s *Store) PutCorrection(ctx context.Context, c *domain.Correction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.updateCorrection(c.ID, func(txn *badger.Txn) error {
		return putCorrection(txn, c)
	})
}

// putCorrection overwrites the stored correction unless it is already merged.
func putCorrection(txn *badger.Txn, c *domain.Correction) error {
	var stored domain.Correction
	if err := getJSON(txn, correctionKey(c.ID), &stored); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound.For("correction %s", c.ID)
		}
		return err
	}
	if stored.IsMerged() {
		return store.ErrAlreadyMerged.For("correction %s", c.ID)
	}
	return setJSON(txn, correctionKey(c.ID), c)
}

// updateCorrection runs fn in a read-write transaction that reads correction
// id. Losing a commit race to a merge reports ErrAlreadyMerged.
func (s *Store) updateCorrection(id string, fn func(txn *badger.Txn) error) error {
	err := s.db.Update(fn)
	if !errors.Is(err, badger.ErrConflict) {
		return err
	}

	var c domain.Correction
	if verr := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, correctionKey(id), &c)
	}); verr == nil && c.IsMerged() {
		return store.ErrAlreadyMerged.For("correction %s", id)
	}
	return store.ErrConflict.For("correction %s", id).Because(err)
}

// RemoveCorrection deletes a correction.
func (s *Store) RemoveCorrection(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(correctionKey(id)); errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound.For("correction %s", id)
		} else if err != nil {
			return err
		}
		return txn.Delete(correctionKey(id))
	})
}

// ListCorrections returns every correction, most recently updated first.
func (s *Store) ListCorrections(ctx context.Context) ([]*domain.Correction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*domain.Correction
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scanPrefix[domain.Correction](txn, correctionPrefix)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *domain.Correction) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

// MergeCorrection applies c to the stored genres and marks it merged, in one transaction.
func (s *Store) MergeCorrection(ctx context.Context, c *domain.Correction) (map[int]int, error) {
	now := time.Now()
	merged := *c
	merged.MergedAt = &now
	merged.UpdatedAt = now

	var assigned map[int]int
	err := s.updateCorrection(c.ID, func(txn *badger.Txn) error {
		if err := putCorrection(txn, &merged); err != nil {
			return fmt.Errorf("mark correction merged: %w", err)
		}
		var err error
		assigned, err = store.ApplyCorrection(ctx, txnWriter{txn}, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.MergedAt, c.UpdatedAt = merged.MergedAt, merged.UpdatedAt

	if s.logger != nil {
		s.logger.Info("correction merged",
			"correction_id", c.ID,
			"created", len(c.Create),
			"edited", len(c.Edit),
			"deleted", len(c.Delete),
		)
	}
	return assigned, nil
}

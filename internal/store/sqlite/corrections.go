package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/store"
)

const correctionColumns = `id, name, creator_id, changes, created_at, updated_at, merged_at`

// changeSet is the JSON shape of the changes column.
type changeSet struct {
	Create []domain.CreatedGenre `json:"create"`
	Edit   []domain.EditedGenre  `json:"edit"`
	Delete []int                 `json:"delete"`
}

func scanCorrection(scanner interface{ Scan(dest ...any) error }) (*domain.Correction, error) {
	var c domain.Correction

	var (
		name      sql.NullString
		changes   string
		createdAt string
		updatedAt string
		mergedAt  sql.NullString
	)

	if err := scanner.Scan(&c.ID, &name, &c.CreatorID, &changes, &createdAt, &updatedAt, &mergedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if c.MergedAt, err = parseNullableTime(mergedAt); err != nil {
		return nil, err
	}
	c.Name = name.String

	var cs changeSet
	if err := json.Unmarshal([]byte(changes), &cs); err != nil {
		return nil, fmt.Errorf("decode changes of correction %s: %w", c.ID, err)
	}
	c.Create, c.Edit, c.Delete = cs.Create, cs.Edit, cs.Delete

	return &c, nil
}

func encodeChanges(c *domain.Correction) (string, error) {
	data, err := json.Marshal(changeSet{Create: c.Create, Edit: c.Edit, Delete: c.Delete})
	if err != nil {
		return "", fmt.Errorf("encode changes: %w", err)
	}
	return string(data), nil
}

// CreateCorrection inserts a new correction.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateCorrection(ctx context.Context, c *domain.Correction) error {
	changes, err := encodeChanges(c)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO corrections (`+correctionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		nullString(c.Name),
		c.CreatorID,
		changes,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		nullTimeString(c.MergedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.For("correction %s", c.ID)
		}
		return err
	}
	return nil
}

// GetCorrection retrieves a correction by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetCorrection(ctx context.Context, id string) (*domain.Correction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+correctionColumns+` FROM corrections WHERE id = ?`, id)

	c, err := scanCorrection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.For("correction %s", id)
	}
	return c, err
}

// PutCorrection overwrites an existing correction.
func (s *Store) PutCorrection(ctx context.Context, c *domain.Correction) error {
	return putCorrection(ctx, s.db, c)
}

func putCorrection(ctx context.Context, q execer, c *domain.Correction) error {
	changes, err := encodeChanges(c)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE corrections SET name = ?, creator_id = ?, changes = ?, updated_at = ?, merged_at = ?
		WHERE id = ? AND merged_at IS NULL`,
		nullString(c.Name),
		c.CreatorID,
		changes,
		formatTime(c.UpdatedAt),
		nullTimeString(c.MergedAt),
		c.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return unchangedCorrection(ctx, q, c.ID)
	}
	return nil
}

// unchangedCorrection explains why an update matched no row.
func unchangedCorrection(ctx context.Context, q execer, id string) error {
	var mergedAt sql.NullString
	err := q.QueryRowContext(ctx, `SELECT merged_at FROM corrections WHERE id = ?`, id).Scan(&mergedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound.For("correction %s", id)
	case err != nil:
		return err
	default:
		return store.ErrAlreadyMerged.For("correction %s", id)
	}
}

// RemoveCorrection deletes a correction.
func (s *Store) RemoveCorrection(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM corrections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.For("correction %s", id)
	}
	return nil
}

// ListCorrections returns every correction, most recently updated first.
func (s *Store) ListCorrections(ctx context.Context) ([]*domain.Correction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+correctionColumns+` FROM corrections ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Correction
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MergeCorrection applies c to the genre tables and marks it merged, in one transaction.
func (s *Store) MergeCorrection(ctx context.Context, c *domain.Correction) (map[int]int, error) {
	var assigned map[int]int

	now := time.Now()
	merged := *c
	merged.MergedAt = &now
	merged.UpdatedAt = now

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		// Claim the row first; a concurrent merge that committed before us
		// leaves nothing to update.
		if err := putCorrection(ctx, tx, &merged); err != nil {
			return fmt.Errorf("mark correction merged: %w", err)
		}
		var err error
		assigned, err = store.ApplyCorrection(ctx, genreRepo{tx}, c)
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

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

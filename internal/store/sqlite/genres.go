package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/store"
)

// genreColumns is the ordered list of columns selected in genre queries.
// Must match the scan order in scanGenre.
const genreColumns = `id, type, name, alternate_names, short_desc, long_desc,
	trial, locations, cultures, created_at, updated_at`

// scanGenre scans a sql.Row (or sql.Rows via its Scan method) into a domain.Genre.
// Edges are loaded separately.
func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var g domain.Genre

	var (
		alternateNames string
		shortDesc      sql.NullString
		longDesc       sql.NullString
		trial          int
		locations      string
		cultures       string
		createdAt      string
		updatedAt      string
	)

	err := scanner.Scan(
		&g.ID,
		&g.Type,
		&g.Name,
		&alternateNames,
		&shortDesc,
		&longDesc,
		&trial,
		&locations,
		&cultures,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if g.AlternateNames, err = parseJSONList[string](alternateNames); err != nil {
		return nil, fmt.Errorf("decode alternate_names: %w", err)
	}
	if g.Locations, err = parseJSONList[domain.Location](locations); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	if g.Cultures, err = parseJSONList[string](cultures); err != nil {
		return nil, fmt.Errorf("decode cultures: %w", err)
	}

	g.ShortDesc = shortDesc.String
	g.LongDesc = longDesc.String
	g.Trial = trial != 0

	return &g, nil
}

// genreRepo implements the genre operations over a connection or transaction.
type genreRepo struct {
	q execer
}

// ListGenres returns every genre ordered by ID, with derived edges.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return genreRepo{s.db}.list(ctx)
}

// GetGenre retrieves a genre by ID, with its derived children and influences.
// Returns store.ErrNotFound if the genre does not exist.
func (s *Store) GetGenre(ctx context.Context, id int) (*domain.Genre, error) {
	return genreRepo{s.db}.get(ctx, id)
}

// CreateGenre inserts a new genre and sets g.ID.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	return genreRepo{s.db}.CreateGenre(ctx, g)
}

// UpdateGenre replaces an existing genre and its stored edges.
func (s *Store) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return genreRepo{tx}.UpdateGenre(ctx, g)
	})
}

// DeleteGenre removes a genre; its edges are removed by cascade.
func (s *Store) DeleteGenre(ctx context.Context, id int) error {
	return genreRepo{s.db}.DeleteGenre(ctx, id)
}

func (r genreRepo) list(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	byID := make(map[int]*domain.Genre)
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
		byID[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadParents(ctx, byID, `SELECT genre_id, parent_id FROM genre_parents ORDER BY genre_id, position`); err != nil {
		return nil, err
	}
	if err := r.loadInfluences(ctx, byID, `SELECT genre_id, influencer_id, influence_type FROM genre_influences ORDER BY genre_id, position`); err != nil {
		return nil, err
	}

	store.LinkGenres(genres)
	return genres, nil
}

func (r genreRepo) get(ctx context.Context, id int) (*domain.Genre, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+genreColumns+` FROM genres WHERE id = ?`, id)

	g, err := scanGenre(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.For("genre %d", id)
	}
	if err != nil {
		return nil, err
	}

	byID := map[int]*domain.Genre{id: g}
	if err := r.loadParents(ctx, byID,
		`SELECT genre_id, parent_id FROM genre_parents WHERE genre_id = ? ORDER BY position`, id); err != nil {
		return nil, err
	}
	if err := r.loadInfluences(ctx, byID,
		`SELECT genre_id, influencer_id, influence_type FROM genre_influences WHERE genre_id = ? ORDER BY position`, id); err != nil {
		return nil, err
	}

	children, err := r.ints(ctx, `SELECT genre_id FROM genre_parents WHERE parent_id = ? ORDER BY genre_id`, id)
	if err != nil {
		return nil, err
	}
	g.Children = children

	rows, err := r.q.QueryContext(ctx,
		`SELECT genre_id, influence_type FROM genre_influences WHERE influencer_id = ? ORDER BY genre_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var inf domain.Influence
		var typ sql.NullString
		if err := rows.Scan(&inf.ID, &typ); err != nil {
			return nil, err
		}
		inf.Type = domain.InfluenceType(typ.String)
		g.Influences = append(g.Influences, inf)
	}
	return g, rows.Err()
}

func (r genreRepo) loadParents(ctx context.Context, byID map[int]*domain.Genre, query string, args ...any) error {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var genreID, parentID int
		if err := rows.Scan(&genreID, &parentID); err != nil {
			return err
		}
		if g, ok := byID[genreID]; ok {
			g.Parents = append(g.Parents, parentID)
		}
	}
	return rows.Err()
}

func (r genreRepo) loadInfluences(ctx context.Context, byID map[int]*domain.Genre, query string, args ...any) error {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var genreID int
		var inf domain.Influence
		var typ sql.NullString
		if err := rows.Scan(&genreID, &inf.ID, &typ); err != nil {
			return err
		}
		inf.Type = domain.InfluenceType(typ.String)
		if g, ok := byID[genreID]; ok {
			g.InfluencedBy = append(g.InfluencedBy, inf)
		}
	}
	return rows.Err()
}

func (r genreRepo) ints(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateGenre inserts the genre row and its edges.
func (r genreRepo) CreateGenre(ctx context.Context, g *domain.Genre) error {
	if g.CreatedAt.IsZero() {
		g.InitTimestamps()
	}

	args, err := genreArgs(g)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO genres (
			type, name, alternate_names, short_desc, long_desc,
			trial, locations, cultures, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(args, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))...,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = int(id)

	return r.writeEdges(ctx, g)
}

// UpdateGenre rewrites the genre row and replaces its edges.
func (r genreRepo) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	g.UpdatedAt = time.Now()

	args, err := genreArgs(g)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE genres SET
			type = ?, name = ?, alternate_names = ?, short_desc = ?, long_desc = ?,
			trial = ?, locations = ?, cultures = ?, updated_at = ?
		WHERE id = ?`,
		append(args, formatTime(g.UpdatedAt), g.ID)...,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.For("genre %d", g.ID)
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM genre_parents WHERE genre_id = ?`, g.ID); err != nil {
		return err
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM genre_influences WHERE genre_id = ?`, g.ID); err != nil {
		return err
	}
	return r.writeEdges(ctx, g)
}

// DeleteGenre removes the genre row. Foreign keys cascade to both join tables.
func (r genreRepo) DeleteGenre(ctx context.Context, id int) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.For("genre %d", id)
	}
	return nil
}

func (r genreRepo) writeEdges(ctx context.Context, g *domain.Genre) error {
	for i, p := range g.Parents {
		if _, err := r.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO genre_parents (genre_id, parent_id, position) VALUES (?, ?, ?)`,
			g.ID, p, i); err != nil {
			return edgeError(g.ID, fmt.Sprintf("parent %d", p), err)
		}
	}
	for i, inf := range g.InfluencedBy {
		if _, err := r.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO genre_influences (genre_id, influencer_id, influence_type, position) VALUES (?, ?, ?, ?)`,
			g.ID, inf.ID, nullString(string(inf.Type)), i); err != nil {
			return edgeError(g.ID, fmt.Sprintf("influence %d", inf.ID), err)
		}
	}
	return nil
}

// edgeError reports a dangling edge as invalid input, matching the badger backend.
func edgeError(genreID int, edge string, err error) error {
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return store.ErrInvalidInput.For("genre %d", genreID).Because(fmt.Errorf("unknown %s", edge))
	}
	return fmt.Errorf("insert %s: %w", edge, err)
}

// genreArgs returns the descriptive column values in insert order.
func genreArgs(g *domain.Genre) ([]any, error) {
	alternateNames, err := jsonList(g.AlternateNames)
	if err != nil {
		return nil, err
	}
	locations, err := jsonList(g.Locations)
	if err != nil {
		return nil, err
	}
	cultures, err := jsonList(g.Cultures)
	if err != nil {
		return nil, err
	}
	return []any{
		string(g.Type),
		g.Name,
		alternateNames,
		nullString(g.ShortDesc),
		nullString(g.LongDesc),
		boolToInt(g.Trial),
		locations,
		cultures,
	}, nil
}

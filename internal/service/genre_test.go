package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/search"
)

func TestGenreService_ListAndGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	genres, err := f.genres.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 5)

	rock, err := f.genres.GetGenre(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, rock.Children)

	_, err = f.genres.GetGenre(ctx, 42)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGenreService_SearchRebuildsWhenStale(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.genres.SearchGenres(ctx, search.Params{Query: "punk"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	g := &domain.Genre{Type: domain.GenreTypeStyle, Name: "Skate Punk", Parents: []int{2}}
	require.NoError(t, f.store.CreateGenre(ctx, g))

	res, err = f.genres.SearchGenres(ctx, search.Params{Query: "punk"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total, "index is not rebuilt until invalidated")

	f.genres.Invalidate()
	res, err = f.genres.SearchGenres(ctx, search.Params{Query: "punk"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
}

func TestGenreService_Policy(t *testing.T) {
	f := setup(t)
	p := f.genres.Policy()

	assert.Equal(t, []domain.GenreType{domain.GenreTypeMeta, domain.GenreTypeStyle}, p.Parents[domain.GenreTypeTrend])
	assert.Equal(t, []domain.GenreType{domain.GenreTypeMeta, domain.GenreTypeStyle, domain.GenreTypeTrend}, p.Children[domain.GenreTypeMeta])
	assert.Equal(t, []domain.GenreType{domain.GenreTypeScene}, p.LocationTypes)
	assert.Empty(t, p.Influences[domain.GenreTypeMeta])
}

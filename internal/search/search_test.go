package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genrewiki/genrewiki-server/internal/domain"
)

func fixtureGenres() []*domain.Genre {
	return []*domain.Genre{
		{ID: 1, Type: domain.GenreTypeMeta, Name: "Rock"},
		{ID: 2, Type: domain.GenreTypeStyle, Name: "Punk", Parents: []int{1}},
		{ID: 3, Type: domain.GenreTypeStyle, Name: "Post-Punk", Parents: []int{2}},
		{ID: 4, Type: domain.GenreTypeStyle, Name: "Shoegaze", ShortDesc: "Washes of guitar noise and buried vocals"},
		{ID: 5, Type: domain.GenreTypeScene, Name: "Madchester", AlternateNames: []string{"Baggy"}},
	}
}

func newTestIndex(t *testing.T) *GenreIndex {
	t.Helper()
	idx, err := NewGenreIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.Replace(fixtureGenres()))
	return idx
}

func hitIDs(r *Result) []int {
	ids := make([]int, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestGenreIndex_Replace(t *testing.T) {
	idx := newTestIndex(t)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	require.NoError(t, idx.Replace(fixtureGenres()[:2]))
	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestGenreIndex_SearchByName(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "punk"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{2, 3}, hitIDs(res))
	assert.Equal(t, "punk", res.Hits[0].Slug, "exact name ranks first")
}

func TestGenreIndex_SearchAlternateNamesAndDescription(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	res, err := idx.Search(ctx, Params{Query: "baggy"})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, hitIDs(res))

	res, err = idx.Search(ctx, Params{Query: "guitar"})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, hitIDs(res))
}

func TestGenreIndex_TypeFilter(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Types: []domain.GenreType{domain.GenreTypeScene, domain.GenreTypeMeta}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 5}, hitIDs(res))
}

func TestGenreIndex_Fuzzy(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "shoegase"})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, hitIDs(res))
}

func TestGenreIndex_DeleteGenre(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.DeleteGenre(5))

	res, err := idx.Search(context.Background(), Params{Query: "madchester"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

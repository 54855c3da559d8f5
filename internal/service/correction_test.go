package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/overlay"
	"github.com/genrewiki/genrewiki-server/internal/search"
	"github.com/genrewiki/genrewiki-server/internal/service"
	"github.com/genrewiki/genrewiki-server/internal/store/badgerstore"
)

// Base taxonomy used by every test:
//
//	1 Rock (META)
//	├── 2 Punk (STYLE)
//	│   └── 3 Post-Punk (STYLE) ──influences──> 5
//	└── 5 Shoegaze (STYLE)
//	4 Madchester (SCENE)
type fixture struct {
	store       *badgerstore.Store
	genres      *service.GenreService
	corrections *service.CorrectionService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := badgerstore.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	for _, g := range []*domain.Genre{
		{Type: domain.GenreTypeMeta, Name: "Rock"},
		{Type: domain.GenreTypeStyle, Name: "Punk", Parents: []int{1}},
		{Type: domain.GenreTypeStyle, Name: "Post-Punk", Parents: []int{2}},
		{Type: domain.GenreTypeScene, Name: "Madchester", Locations: []domain.Location{{Country: "GB", City: "Manchester"}}},
		{Type: domain.GenreTypeStyle, Name: "Shoegaze", Parents: []int{1}, InfluencedBy: []domain.Influence{{ID: 3, Type: domain.InfluenceSonic}}},
	} {
		require.NoError(t, st.CreateGenre(ctx, g))
	}

	index, err := search.NewGenreIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	genres := service.NewGenreService(st, index, nil)
	return &fixture{
		store:       st,
		genres:      genres,
		corrections: service.NewCorrectionService(st, genres, nil),
	}
}

func (f *fixture) newCorrection(t *testing.T) string {
	t.Helper()
	c, err := f.corrections.CreateCorrection(context.Background(), "account-1", "test")
	require.NoError(t, err)
	return c.ID
}

func style(name string, parents ...domain.GenreRef) domain.GenreDraft {
	return domain.GenreDraft{Type: domain.GenreTypeStyle, Name: name, Parents: parents}
}

func exists(id int) domain.GenreRef  { return domain.ExistingRef(id) }
func created(id int) domain.GenreRef { return domain.CreatedRef(id) }

func TestCreateCorrection_RequiresCreator(t *testing.T) {
	f := setup(t)

	_, err := f.corrections.CreateCorrection(context.Background(), "  ", "nameless")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCreateGenre_AppearsInTree(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	localID, c, err := f.corrections.CreateGenre(ctx, cid, style("Britpop", exists(1)))
	require.NoError(t, err)
	assert.Equal(t, 0, localID)
	assert.Len(t, c.Create, 1)

	tree, err := f.corrections.Tree(ctx, cid)
	require.NoError(t, err)

	tag, err := tree.Classify(created(0))
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeCreated, tag)

	rock, err := tree.Get(exists(1))
	require.NoError(t, err)
	assert.Contains(t, rock.Children, created(0))

	tags, err := f.corrections.DescendantChanges(ctx, cid, exists(1))
	require.NoError(t, err)
	assert.Equal(t, []domain.ChangeTag{domain.ChangeCreated}, tags)

	tags, err = f.corrections.DescendantChanges(ctx, cid, exists(4))
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCreateGenre_NormalizesDraft(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.newCorrection(t)

	d := style("  Gothic Rock ", exists(2))
	d.LongDesc = "<p>Dark <em>post-punk</em> offshoot.</p>"
	localID, c, err := f.corrections.CreateGenre(ctx, id, d)
	require.NoError(t, err)

	cg, ok := c.Created(localID)
	require.True(t, ok)
	assert.Equal(t, "Gothic Rock", cg.Data.Name)
	assert.Equal(t, "Dark *post-punk* offshoot.", cg.Data.LongDesc)
	assert.Equal(t, "  Gothic Rock ", d.Name, "caller's draft is not modified")
}

func TestCreateGenre_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	tests := []struct {
		name  string
		draft domain.GenreDraft
		want  error
	}{
		{
			name:  "scene cannot have parents",
			draft: domain.GenreDraft{Type: domain.GenreTypeScene, Name: "Baggy", Parents: []domain.GenreRef{exists(1)}},
			want:  domainerrors.ErrTypeMismatch,
		},
		{
			name: "style cannot be influenced by a scene",
			draft: domain.GenreDraft{Type: domain.GenreTypeStyle, Name: "Indie Dance",
				InfluencedBy: []domain.DraftInfluence{{Ref: exists(4)}}},
			want: domainerrors.ErrTypeMismatch,
		},
		{
			name:  "unknown parent",
			draft: style("Orphan", exists(99)),
			want:  domainerrors.ErrNotFound,
		},
		{
			name:  "unknown created parent",
			draft: style("Orphan", created(7)),
			want:  domainerrors.ErrNotFound,
		},
		{
			name:  "locations only for scenes",
			draft: domain.GenreDraft{Type: domain.GenreTypeStyle, Name: "Placed", Locations: []domain.Location{{Country: "GB"}}},
			want:  domainerrors.ErrValidation,
		},
		{
			name:  "missing name",
			draft: style(""),
			want:  domainerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.corrections.CreateGenre(ctx, cid, tt.draft)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	c, err := f.corrections.GetCorrection(ctx, cid)
	require.NoError(t, err)
	assert.Empty(t, c.Create, "rejected writes are not persisted")
}

func TestEditGenre_TypeChangeInvalidatingChildren(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	// Punk has a STYLE child; a TREND cannot parent anything.
	draft := style("Punk", exists(1))
	draft.Type = domain.GenreTypeTrend

	_, err := f.corrections.EditGenre(ctx, cid, 2, draft)
	require.ErrorIs(t, err, domainerrors.ErrTypeMismatch)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	violations, ok := domainErr.Details.([]overlay.Violation)
	require.True(t, ok)
	assert.Equal(t, exists(3), violations[0].Node)
}

func TestEditGenre_CycleRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, _, err := f.corrections.CreateGenre(ctx, cid, domain.GenreDraft{
		Type: domain.GenreTypeMeta, Name: "Guitar Music", Parents: []domain.GenreRef{exists(1)},
	})
	require.NoError(t, err)

	_, err = f.corrections.EditGenre(ctx, cid, 1, domain.GenreDraft{
		Type: domain.GenreTypeMeta, Name: "Rock", Parents: []domain.GenreRef{created(0)},
	})
	require.ErrorIs(t, err, domainerrors.ErrCycleDetected)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	path, ok := domainErr.Details.([]domain.GenreRef)
	require.True(t, ok)
	assert.Equal(t, path[0], path[len(path)-1])
}

func TestEditGenre_SelfParentIsCycle(t *testing.T) {
	f := setup(t)
	cid := f.newCorrection(t)

	_, err := f.corrections.EditGenre(context.Background(), cid, 2, style("Punk", exists(1), exists(2)))
	assert.ErrorIs(t, err, domainerrors.ErrCycleDetected)
}

func TestEditGenre_UnknownTarget(t *testing.T) {
	f := setup(t)
	cid := f.newCorrection(t)

	_, err := f.corrections.EditGenre(context.Background(), cid, 99, style("Ghost"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestEditThenDeleteReplacesEdit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, err := f.corrections.EditGenre(ctx, cid, 3, style("Post Punk", exists(2)))
	require.NoError(t, err)

	c, err := f.corrections.DeleteGenre(ctx, cid, 3)
	require.NoError(t, err)
	assert.Empty(t, c.Edit)
	assert.Equal(t, []int{3}, c.Delete)

	c, err = f.corrections.RemovePendingChange(ctx, cid, 3)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = f.corrections.RemovePendingChange(ctx, cid, 3)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteReferencedGenre_BlocksMerge(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, _, err := f.corrections.CreateGenre(ctx, cid, style("Pop Punk", exists(2)))
	require.NoError(t, err)
	_, err = f.corrections.DeleteGenre(ctx, cid, 2)
	require.NoError(t, err)

	tree, err := f.corrections.Tree(ctx, cid)
	require.NoError(t, err)
	require.Len(t, tree.Warnings, 1)
	assert.Equal(t, overlay.WarningDeletedReference, tree.Warnings[0].Kind)

	_, err = f.corrections.MergeCorrection(ctx, cid)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestRemoveCreatedGenre_DropsReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, _, err := f.corrections.CreateGenre(ctx, cid, style("Emo", exists(2)))
	require.NoError(t, err)
	_, _, err = f.corrections.CreateGenre(ctx, cid, style("Screamo", created(0)))
	require.NoError(t, err)

	c, err := f.corrections.RemoveCreatedGenre(ctx, cid, 0)
	require.NoError(t, err)
	require.Len(t, c.Create, 1)
	assert.Empty(t, c.Create[0].Data.Parents)

	_, err = f.corrections.RemoveCreatedGenre(ctx, cid, 0)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateCreatedGenre(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, _, err := f.corrections.CreateGenre(ctx, cid, style("Emo", exists(2)))
	require.NoError(t, err)

	c, err := f.corrections.UpdateCreatedGenre(ctx, cid, 0, style("Emo", exists(2), exists(3)))
	require.NoError(t, err)
	assert.Len(t, c.Create[0].Data.Parents, 2)

	_, err = f.corrections.UpdateCreatedGenre(ctx, cid, 5, style("Nope"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestNodeView(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, err := f.corrections.EditGenre(ctx, cid, 2, style("Punk Rock", exists(1)))
	require.NoError(t, err)
	_, _, err = f.corrections.CreateGenre(ctx, cid, style("Hardcore", exists(2)))
	require.NoError(t, err)

	n, warnings, err := f.corrections.NodeView(ctx, cid, exists(2))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, domain.ChangeEdited, n.Tag)
	assert.Equal(t, "Punk Rock", n.Name)
	assert.ElementsMatch(t, []domain.GenreRef{exists(3), created(0)}, n.Children)

	n, _, err = f.corrections.NodeView(ctx, cid, created(0))
	require.NoError(t, err)
	assert.Equal(t, []domain.GenreRef{exists(2)}, n.Parents)

	_, err = f.corrections.DeleteGenre(ctx, cid, 4)
	require.NoError(t, err)
	_, _, err = f.corrections.NodeView(ctx, cid, exists(4))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProjectDraft(t *testing.T) {
	f := setup(t)

	draft := domain.GenreDraft{
		Type:         domain.GenreTypeScene,
		Name:         "Baggy",
		Locations:    []domain.Location{{Country: "GB"}},
		InfluencedBy: []domain.DraftInfluence{{Ref: exists(4)}},
	}

	projected, report, err := f.corrections.ProjectDraft(context.Background(), "", domain.GenreTypeStyle, draft)
	require.NoError(t, err)
	assert.Equal(t, domain.GenreTypeStyle, projected.Type)
	assert.Empty(t, projected.Locations)
	assert.Empty(t, projected.InfluencedBy)
	assert.Equal(t, []string{"locations"}, report.Fields)
	assert.Len(t, report.Influences, 1)

	_, _, err = f.corrections.ProjectDraft(context.Background(), "", "GENRE", draft)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestMergeCorrection(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, _, err := f.corrections.CreateGenre(ctx, cid, style("Britpop", exists(1)))
	require.NoError(t, err)
	_, err = f.corrections.EditGenre(ctx, cid, 2, style("Punk Rock", exists(1)))
	require.NoError(t, err)
	_, err = f.corrections.DeleteGenre(ctx, cid, 4)
	require.NoError(t, err)

	result, err := f.corrections.MergeCorrection(ctx, cid)
	require.NoError(t, err)
	require.Contains(t, result.Assigned, 0)
	assert.True(t, result.Correction.IsMerged())

	britpop, err := f.genres.GetGenre(ctx, result.Assigned[0])
	require.NoError(t, err)
	assert.Equal(t, []int{1}, britpop.Parents)

	punk, err := f.genres.GetGenre(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Punk Rock", punk.Name)

	_, err = f.genres.GetGenre(ctx, 4)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	hits, err := f.genres.SearchGenres(ctx, search.Params{Query: "britpop"})
	require.NoError(t, err)
	require.Len(t, hits.Hits, 1)
	assert.Equal(t, result.Assigned[0], hits.Hits[0].ID)

	_, err = f.corrections.MergeCorrection(ctx, cid)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyMerged)
	_, _, err = f.corrections.CreateGenre(ctx, cid, style("Late"))
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyMerged)
}

func TestMergeCorrection_ConcurrentMergesApplyOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	_, _, err := f.corrections.CreateGenre(ctx, cid, domain.GenreDraft{Type: domain.GenreTypeMeta, Name: "Electronic"})
	require.NoError(t, err)

	const merges = 4
	errs := make([]error, merges)
	var wg sync.WaitGroup
	for i := range merges {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.corrections.MergeCorrection(ctx, cid)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domainerrors.ErrAlreadyMerged)
	}
	assert.Equal(t, 1, succeeded)

	genres, err := f.store.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 6)
}

func TestMergeCorrection_EmptyRefused(t *testing.T) {
	f := setup(t)
	cid := f.newCorrection(t)

	_, err := f.corrections.MergeCorrection(context.Background(), cid)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCorrectionLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cid := f.newCorrection(t)

	c, err := f.corrections.RenameCorrection(ctx, cid, "  Manchester fixes ")
	require.NoError(t, err)
	assert.Equal(t, "Manchester fixes", c.Name)

	list, err := f.corrections.ListCorrections(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.corrections.DeleteCorrection(ctx, cid))
	_, err = f.corrections.GetCorrection(ctx, cid)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, f.corrections.DeleteCorrection(ctx, cid), domainerrors.ErrNotFound)
}

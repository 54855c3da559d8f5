package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
)

// sampleCorrection touches every edge rule of the fixture taxonomy.
func sampleCorrection(t *testing.T, base []*domain.Genre) *domain.Correction {
	t.Helper()

	postPunk := draftOf(t, base, 3)
	postPunk.Parents = []domain.GenreRef{ex(1)}

	madchester := draftOf(t, base, 5)
	madchester.Name = "Madchester / Baggy"

	return &domain.Correction{
		Edit: []domain.EditedGenre{
			{TargetID: 3, Draft: postPunk},
			{TargetID: 5, Draft: madchester},
		},
		Create: []domain.CreatedGenre{
			{LocalID: 0, Data: domain.GenreDraft{
				Type:         domain.GenreTypeTrend,
				Name:         "Nu-Gaze",
				Parents:      []domain.GenreRef{ex(4)},
				InfluencedBy: []domain.DraftInfluence{{Ref: ex(4), Type: domain.InfluenceHistorical}},
			}},
			{LocalID: 1, Data: domain.GenreDraft{
				Type:    domain.GenreTypeStyle,
				Name:    "Anarcho-Punk",
				Parents: []domain.GenreRef{ex(2)},
			}},
		},
	}
}

func TestBuildNode_MatchesFullBuild(t *testing.T) {
	base := fixtureBase()
	c := sampleCorrection(t, base)

	tree, err := Build(base, c)
	require.NoError(t, err)

	for _, g := range base {
		want, err := tree.Get(ex(g.ID))
		require.NoError(t, err)

		got, warnings, err := BuildNode(g, c)
		require.NoError(t, err)
		assert.Empty(t, warnings)

		assert.Equal(t, want.Tag, got.Tag, "genre %d", g.ID)
		assert.Equal(t, want.Name, got.Name, "genre %d", g.ID)
		assert.ElementsMatch(t, want.Parents, got.Parents, "parents of %d", g.ID)
		assert.ElementsMatch(t, want.Children, got.Children, "children of %d", g.ID)
		assert.ElementsMatch(t, want.InfluencedBy, got.InfluencedBy, "influenced by of %d", g.ID)
		assert.ElementsMatch(t, want.Influences, got.Influences, "influences of %d", g.ID)
	}
}

func TestBuildNode_DeletedGenreIsNotFound(t *testing.T) {
	base := fixtureBase()

	_, _, err := BuildNode(base[1], &domain.Correction{Delete: []int{2}})

	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestBuildNode_DropsDeletedChildrenAndWarnsOnDraftEdges(t *testing.T) {
	base := fixtureBase()
	shoegaze := draftOf(t, base, 4)
	shoegaze.Parents = append(shoegaze.Parents, cr(9))
	c := &domain.Correction{
		Delete: []int{4},
		Edit:   []domain.EditedGenre{},
	}

	rock, warnings, err := BuildNode(base[0], c)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []domain.GenreRef{ex(2)}, rock.Children)

	c = &domain.Correction{Edit: []domain.EditedGenre{{TargetID: 4, Draft: shoegaze}}}
	node, warnings, err := BuildNode(base[3], c)
	require.NoError(t, err)
	assert.Equal(t, []domain.GenreRef{ex(1)}, node.Parents)
	assert.Equal(t, []Warning{
		{Kind: WarningInconsistentReference, Node: ex(4), Target: cr(9), Relation: RelationParent},
	}, warnings)
}

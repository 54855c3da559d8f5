package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genrewiki/genrewiki-server/internal/domain"
)

func resolverFor(types map[domain.GenreRef]domain.GenreType) TypeResolver {
	return func(ref domain.GenreRef) (domain.GenreType, bool) {
		t, ok := types[ref]
		return t, ok
	}
}

func TestProjectDraft_SceneToStyleDropsLocations(t *testing.T) {
	draft := domain.GenreDraft{
		Type:      scene,
		Name:      "Madchester",
		Locations: []domain.Location{{Country: "GB", City: "Manchester"}},
		Cultures:  []string{"rave"},
		InfluencedBy: []domain.DraftInfluence{
			{Ref: domain.ExistingRef(3)},
		},
	}
	resolve := resolverFor(map[domain.GenreRef]domain.GenreType{domain.ExistingRef(3): scene})

	got, report := ProjectDraft(style, draft, resolve)

	assert.Equal(t, style, got.Type)
	assert.Nil(t, got.Locations)
	assert.Nil(t, got.Cultures)
	assert.Empty(t, got.InfluencedBy)
	assert.Equal(t, []string{FieldLocations, FieldCultures}, report.Fields)
	assert.Equal(t, []domain.DraftInfluence{{Ref: domain.ExistingRef(3)}}, report.Influences)
	assert.Len(t, draft.Locations, 1, "input draft must not be mutated")
}

func TestProjectDraft_StyleToTrendKeepsCompatibleEdges(t *testing.T) {
	draft := domain.GenreDraft{
		Type:    style,
		Name:    "Shoegaze",
		Parents: []domain.GenreRef{domain.ExistingRef(1), domain.CreatedRef(0)},
		InfluencedBy: []domain.DraftInfluence{
			{Ref: domain.ExistingRef(2), Type: domain.InfluenceSonic},
		},
	}
	resolve := resolverFor(map[domain.GenreRef]domain.GenreType{
		domain.ExistingRef(1): meta,
		domain.CreatedRef(0):  style,
		domain.ExistingRef(2): style,
	})

	got, report := ProjectDraft(trend, draft, resolve)

	assert.True(t, report.IsEmpty())
	assert.Equal(t, draft.Parents, got.Parents)
	assert.Equal(t, draft.InfluencedBy, got.InfluencedBy)
}

func TestProjectDraft_ToSceneDropsAllParents(t *testing.T) {
	draft := domain.GenreDraft{
		Type:    style,
		Name:    "Drill",
		Parents: []domain.GenreRef{domain.ExistingRef(1), domain.ExistingRef(99)},
	}
	resolve := resolverFor(map[domain.GenreRef]domain.GenreType{domain.ExistingRef(1): style})

	got, report := ProjectDraft(scene, draft, resolve)

	assert.Empty(t, got.Parents)
	assert.Equal(t, []domain.GenreRef{domain.ExistingRef(1), domain.ExistingRef(99)}, report.Parents)
}

func TestProjectDraft_ToMetaDropsStyleParents(t *testing.T) {
	draft := domain.GenreDraft{
		Type:    style,
		Name:    "Electronic",
		Parents: []domain.GenreRef{domain.ExistingRef(1), domain.ExistingRef(2)},
	}
	resolve := resolverFor(map[domain.GenreRef]domain.GenreType{
		domain.ExistingRef(1): meta,
		domain.ExistingRef(2): style,
	})

	got, report := ProjectDraft(meta, draft, resolve)

	assert.Equal(t, []domain.GenreRef{domain.ExistingRef(1)}, got.Parents)
	assert.Equal(t, []domain.GenreRef{domain.ExistingRef(2)}, report.Parents)
	assert.Empty(t, report.Fields)
}

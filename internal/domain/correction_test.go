package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrection_NextLocalID(t *testing.T) {
	c := &Correction{}
	assert.Equal(t, 0, c.NextLocalID())

	c.Create = []CreatedGenre{{LocalID: 0}, {LocalID: 3}, {LocalID: 1}}
	assert.Equal(t, 4, c.NextLocalID())
}

func TestCorrection_SetEditReplacesDelete(t *testing.T) {
	c := &Correction{}
	c.MarkDeleted(7)
	require.True(t, c.IsDeleted(7))

	c.SetEdit(7, GenreDraft{Name: "Shoegaze", Type: GenreTypeStyle})
	assert.False(t, c.IsDeleted(7))
	e, ok := c.Edited(7)
	require.True(t, ok)
	assert.Equal(t, "Shoegaze", e.Draft.Name)

	// A second edit replaces the first rather than appending.
	c.SetEdit(7, GenreDraft{Name: "Dream Pop", Type: GenreTypeStyle})
	assert.Len(t, c.Edit, 1)
	assert.Equal(t, "Dream Pop", c.Edit[0].Draft.Name)
}

func TestCorrection_MarkDeletedReplacesEdit(t *testing.T) {
	c := &Correction{}
	c.SetEdit(7, GenreDraft{Name: "Shoegaze", Type: GenreTypeStyle})

	c.MarkDeleted(7)
	c.MarkDeleted(7)

	assert.Empty(t, c.Edit)
	assert.Equal(t, []int{7}, c.Delete)
}

func TestCorrection_RemovePending(t *testing.T) {
	c := &Correction{}
	c.SetEdit(1, GenreDraft{Name: "Rock", Type: GenreTypeMeta})
	c.MarkDeleted(2)

	assert.True(t, c.RemovePending(1))
	assert.True(t, c.RemovePending(2))
	assert.False(t, c.RemovePending(3))
	assert.True(t, c.IsEmpty())
}

func TestCorrection_RemoveCreatedDropsReferences(t *testing.T) {
	c := &Correction{
		Create: []CreatedGenre{
			{LocalID: 0, Data: GenreDraft{Name: "Rock", Type: GenreTypeMeta}},
			{LocalID: 1, Data: GenreDraft{
				Name:    "Punk",
				Type:    GenreTypeStyle,
				Parents: []GenreRef{CreatedRef(0), ExistingRef(4)},
			}},
		},
		Edit: []EditedGenre{{
			TargetID: 9,
			Draft: GenreDraft{
				Name:         "Shoegaze",
				Type:         GenreTypeStyle,
				InfluencedBy: []DraftInfluence{{Ref: CreatedRef(0), Type: InfluenceSonic}},
			},
		}},
	}

	assert.False(t, c.RemoveCreated(5))
	require.True(t, c.RemoveCreated(0))

	_, ok := c.Created(0)
	assert.False(t, ok)
	punk, ok := c.Created(1)
	require.True(t, ok)
	assert.Equal(t, []GenreRef{ExistingRef(4)}, punk.Data.Parents)
	assert.Empty(t, c.Edit[0].Draft.InfluencedBy)
}

func TestCorrection_Lifecycle(t *testing.T) {
	c := &Correction{}
	c.InitTimestamps()
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
	assert.False(t, c.IsMerged())

	now := time.Now()
	c.MergedAt = &now
	assert.True(t, c.IsMerged())
}

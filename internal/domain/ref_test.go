package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreRef(t *testing.T) {
	e, c := ExistingRef(3), CreatedRef(3)

	assert.True(t, e.IsExisting())
	assert.False(t, e.IsCreated())
	assert.True(t, c.IsCreated())
	assert.NotEqual(t, e, c, "same ID in different namespaces must not collide")
	assert.Equal(t, "exists:3", e.String())
	assert.Equal(t, "created:3", c.String())
}

func TestParseRefKind(t *testing.T) {
	tests := []struct {
		in   string
		want RefKind
	}{
		{"exists", RefExists},
		{"CREATED", RefCreated},
		{"Created", RefCreated},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRefKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRefKind("deleted")
	assert.Error(t, err)
}

func TestGenreDraft_References(t *testing.T) {
	d := GenreDraft{
		Parents:      []GenreRef{ExistingRef(1), CreatedRef(0)},
		InfluencedBy: []DraftInfluence{{Ref: ExistingRef(2)}},
	}
	clone := d.Clone()

	assert.True(t, d.ReferencesTo(ExistingRef(2)))
	assert.False(t, d.ReferencesTo(ExistingRef(3)))

	d.DropReferencesTo(ExistingRef(1))
	d.DropReferencesTo(ExistingRef(2))
	assert.Equal(t, []GenreRef{CreatedRef(0)}, d.Parents)
	assert.Empty(t, d.InfluencedBy)

	// The clone is unaffected by edits to the original.
	assert.Len(t, clone.Parents, 2)
	assert.Len(t, clone.InfluencedBy, 1)
}

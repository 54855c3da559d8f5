package store

import (
	"slices"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/graph"
)

// LinkGenres fills the derived Children and Influences of every genre from
// the stored Parents and InfluencedBy of the others. Edges to genres outside
// the slice are ignored. Derived lists are sorted by ID.
func LinkGenres(genres []*domain.Genre) {
	byID := make(map[int]*domain.Genre, len(genres))
	ids := make([]int, 0, len(genres))
	for _, g := range genres {
		byID[g.ID] = g
		ids = append(ids, g.ID)
		g.Children = nil
		g.Influences = nil
	}

	children := graph.BuildChildIndex(ids, func(id int) []int { return byID[id].Parents })
	for parent, kids := range children {
		if p, ok := byID[parent]; ok {
			p.Children = slices.Sorted(slices.Values(kids))
		}
	}

	for _, g := range genres {
		for _, inf := range g.InfluencedBy {
			if source, ok := byID[inf.ID]; ok {
				source.Influences = append(source.Influences, domain.Influence{ID: g.ID, Type: inf.Type})
			}
		}
	}
	for _, g := range genres {
		slices.SortFunc(g.Influences, func(a, b domain.Influence) int { return a.ID - b.ID })
	}
}

// Package taxonomy holds the static relationship policy between genre types
// and the pure projection of a draft onto a different type.
package taxonomy

import (
	"slices"

	"github.com/genrewiki/genrewiki-server/internal/domain"
)

// AllowedParentTypes maps a child type to the types it may have as parents.
var AllowedParentTypes = map[domain.GenreType][]domain.GenreType{
	domain.GenreTypeMeta:  {domain.GenreTypeMeta},
	domain.GenreTypeScene: {},
	domain.GenreTypeStyle: {domain.GenreTypeMeta, domain.GenreTypeStyle},
	domain.GenreTypeTrend: {domain.GenreTypeMeta, domain.GenreTypeStyle},
}

// AllowedInfluenceTypes maps an influenced type to the types that may influence it.
var AllowedInfluenceTypes = map[domain.GenreType][]domain.GenreType{
	domain.GenreTypeMeta:  {},
	domain.GenreTypeScene: {domain.GenreTypeScene},
	domain.GenreTypeStyle: {domain.GenreTypeStyle},
	domain.GenreTypeTrend: {domain.GenreTypeStyle, domain.GenreTypeTrend},
}

// Inverse tables, generated from the tables above so the two never drift.
var (
	// AllowedChildTypes maps a parent type to the types it may have as children.
	AllowedChildTypes = transpose(AllowedParentTypes)
	// AllowedInfluenceTargetTypes maps an influencer type to the types it may influence.
	AllowedInfluenceTargetTypes = transpose(AllowedInfluenceTypes)
)

func transpose(table map[domain.GenreType][]domain.GenreType) map[domain.GenreType][]domain.GenreType {
	out := make(map[domain.GenreType][]domain.GenreType, len(domain.GenreTypes))
	for _, from := range domain.GenreTypes {
		out[from] = []domain.GenreType{}
	}
	// Iterate in declaration order so generated slices are deterministic.
	for _, to := range domain.GenreTypes {
		for _, from := range table[to] {
			out[from] = append(out[from], to)
		}
	}
	return out
}

// CanParent reports whether a genre of type parent may be a parent of child.
func CanParent(child, parent domain.GenreType) bool {
	return slices.Contains(AllowedParentTypes[child], parent)
}

// CanInfluence reports whether a genre of type source may influence target.
func CanInfluence(target, source domain.GenreType) bool {
	return slices.Contains(AllowedInfluenceTypes[target], source)
}

// HasParents reports whether genres of type t can have any parents at all.
func HasParents(t domain.GenreType) bool {
	return len(AllowedParentTypes[t]) > 0
}

// HasInfluences reports whether genres of type t can be influenced at all.
func HasInfluences(t domain.GenreType) bool {
	return len(AllowedInfluenceTypes[t]) > 0
}

// HasLocations reports whether location and culture fields apply to type t.
func HasLocations(t domain.GenreType) bool {
	return t == domain.GenreTypeScene
}

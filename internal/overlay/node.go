// Package overlay computes the effective genre graph of a correction: the base
// taxonomy with the correction's creates, edits and deletes applied, without
// touching persisted state. It also classifies every node by change and answers
// "does this subtree have pending changes" queries.
package overlay

import (
	"slices"

	"github.com/genrewiki/genrewiki-server/internal/domain"
)

// Influence is an influence edge between overlay nodes.
type Influence = domain.DraftInfluence

// Node is one genre of an overlay, either unchanged, edited or created.
type Node struct {
	Ref            domain.GenreRef   `json:"ref"`
	Tag            domain.ChangeTag  `json:"change,omitempty"`
	Type           domain.GenreType  `json:"type"`
	Name           string            `json:"name"`
	AlternateNames []string          `json:"alternate_names,omitempty"`
	ShortDesc      string            `json:"short_desc,omitempty"`
	LongDesc       string            `json:"long_desc,omitempty"`
	Trial          bool              `json:"trial"`
	Locations      []domain.Location `json:"locations,omitempty"`
	Cultures       []string          `json:"cultures,omitempty"`
	Parents        []domain.GenreRef `json:"parents"`
	Children       []domain.GenreRef `json:"children"`
	InfluencedBy   []Influence       `json:"influenced_by"`
	Influences     []Influence       `json:"influences"`
}

// IsRoot reports whether the node has no parents in the overlay.
func (n *Node) IsRoot() bool {
	return len(n.Parents) == 0
}

func nodeFromGenre(g *domain.Genre) *Node {
	n := &Node{
		Ref:            domain.ExistingRef(g.ID),
		Tag:            domain.ChangeNone,
		Type:           g.Type,
		Name:           g.Name,
		AlternateNames: slices.Clone(g.AlternateNames),
		ShortDesc:      g.ShortDesc,
		LongDesc:       g.LongDesc,
		Trial:          g.Trial,
		Locations:      slices.Clone(g.Locations),
		Cultures:       slices.Clone(g.Cultures),
	}
	for _, p := range g.Parents {
		n.Parents = append(n.Parents, domain.ExistingRef(p))
	}
	for _, inf := range g.InfluencedBy {
		n.InfluencedBy = append(n.InfluencedBy, Influence{Ref: domain.ExistingRef(inf.ID), Type: inf.Type})
	}
	return n
}

func nodeFromDraft(ref domain.GenreRef, d domain.GenreDraft, tag domain.ChangeTag) *Node {
	d = d.Clone()
	return &Node{
		Ref:            ref,
		Tag:            tag,
		Type:           d.Type,
		Name:           d.Name,
		AlternateNames: d.AlternateNames,
		ShortDesc:      d.ShortDesc,
		LongDesc:       d.LongDesc,
		Trial:          d.Trial,
		Locations:      d.Locations,
		Cultures:       d.Cultures,
		Parents:        d.Parents,
		InfluencedBy:   d.InfluencedBy,
	}
}

// WarningKind classifies a recoverable degradation found while building an overlay.
type WarningKind string

// Warning kinds.
const (
	// WarningInconsistentReference: a draft points at an id that is neither a
	// live genre nor another genre of the same correction.
	WarningInconsistentReference WarningKind = "INCONSISTENT_REFERENCE"
	// WarningDeletedReference: a draft points at a genre the same correction deletes.
	WarningDeletedReference WarningKind = "DELETED_REFERENCE"
)

// Relation names the kind of edge a warning or violation is about.
type Relation string

// Relations.
const (
	RelationParent    Relation = "parent"
	RelationInfluence Relation = "influence"
)

// Warning records an edge dropped from the overlay.
type Warning struct {
	Kind     WarningKind     `json:"kind"`
	Node     domain.GenreRef `json:"node"`
	Target   domain.GenreRef `json:"target"`
	Relation Relation        `json:"relation"`
}

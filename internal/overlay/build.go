package overlay

import (
	"slices"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/graph"
)

// Build applies a correction to the base genres and returns the resulting tree.
//
// Deleted genres are dropped, edited genres are replaced by their draft and
// created genres are appended. Parent and influence references that do not
// resolve to a node of the overlay are dropped; when the reference comes from
// a draft of the correction the drop is recorded as a Warning. Children and
// influences are then derived from the surviving edges of the whole overlay,
// so the result is bidirectionally consistent by construction.
//
// A nil correction is treated as empty. Build fails with NOT_FOUND when the
// correction edits a genre that is not part of base.
func Build(base []*domain.Genre, c *domain.Correction) (*Tree, error) {
	if c == nil {
		c = &domain.Correction{}
	}

	inBase := make(map[int]struct{}, len(base))
	for _, g := range base {
		inBase[g.ID] = struct{}{}
	}

	deleted := deletedSet(c)

	edits := make(map[int]domain.GenreDraft, len(c.Edit))
	for _, e := range c.Edit {
		if _, ok := inBase[e.TargetID]; !ok {
			return nil, domainerrors.NotFoundf("edited genre %d not found", e.TargetID)
		}
		if _, ok := deleted[e.TargetID]; ok {
			return nil, domainerrors.Conflictf("genre %d is both edited and deleted", e.TargetID)
		}
		edits[e.TargetID] = e.Draft
	}

	t := newTree(len(base) + len(c.Create))
	t.Deleted = slices.Clone(c.Delete)

	for _, g := range base {
		if _, ok := deleted[g.ID]; ok {
			continue
		}
		if draft, ok := edits[g.ID]; ok {
			t.add(nodeFromDraft(domain.ExistingRef(g.ID), draft, domain.ChangeEdited))
			continue
		}
		t.add(nodeFromGenre(g))
	}

	for _, cg := range c.Create {
		ref := domain.CreatedRef(cg.LocalID)
		if _, dup := t.Nodes[ref]; dup {
			return nil, domainerrors.Conflictf("created genre %d appears twice", cg.LocalID)
		}
		t.add(nodeFromDraft(ref, cg.Data, domain.ChangeCreated))
	}

	r := resolver{tree: t, deleted: deleted}
	for _, ref := range t.Order {
		r.resolve(t.Nodes[ref])
	}
	t.Warnings = r.warnings

	t.link()

	return t, nil
}

// resolver drops edge endpoints that do not name a live overlay node.
type resolver struct {
	tree     *Tree
	deleted  map[int]struct{}
	warnings []Warning
}

// keep reports whether an edge from n to target survives, recording a
// warning for dropped edges that a draft introduced.
func (r *resolver) keep(n *Node, target domain.GenreRef, rel Relation) bool {
	if _, ok := r.tree.Nodes[target]; ok {
		return true
	}

	_, isDeleted := r.deleted[target.ID]
	isDeleted = isDeleted && target.IsExisting()

	switch {
	case isDeleted && n.Tag == domain.ChangeNone:
		// Unedited genres simply lose edges to genres the correction deletes.
	case isDeleted:
		r.warnings = append(r.warnings, Warning{Kind: WarningDeletedReference, Node: n.Ref, Target: target, Relation: rel})
	default:
		r.warnings = append(r.warnings, Warning{Kind: WarningInconsistentReference, Node: n.Ref, Target: target, Relation: rel})
	}
	return false
}

func (r *resolver) resolve(n *Node) {
	parents := make([]domain.GenreRef, 0, len(n.Parents))
	for _, p := range n.Parents {
		if slices.Contains(parents, p) || !r.keep(n, p, RelationParent) {
			continue
		}
		parents = append(parents, p)
	}
	n.Parents = parents

	influencedBy := make([]Influence, 0, len(n.InfluencedBy))
	for _, inf := range n.InfluencedBy {
		dup := slices.ContainsFunc(influencedBy, func(x Influence) bool { return x.Ref == inf.Ref })
		if dup || !r.keep(n, inf.Ref, RelationInfluence) {
			continue
		}
		influencedBy = append(influencedBy, inf)
	}
	n.InfluencedBy = influencedBy
}

// link derives Children and Influences from Parents and InfluencedBy.
func (t *Tree) link() {
	children := graph.BuildChildIndex(t.Order, func(ref domain.GenreRef) []domain.GenreRef {
		return t.Nodes[ref].Parents
	})

	for _, ref := range t.Order {
		n := t.Nodes[ref]
		n.Children = append([]domain.GenreRef{}, children[ref]...)
		n.Influences = []Influence{}
	}

	for _, ref := range t.Order {
		n := t.Nodes[ref]
		for _, inf := range n.InfluencedBy {
			source := t.Nodes[inf.Ref]
			source.Influences = append(source.Influences, Influence{Ref: n.Ref, Type: inf.Type})
		}
	}
}

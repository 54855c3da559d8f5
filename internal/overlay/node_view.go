package overlay

import (
	"slices"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
)

// BuildNode computes the overlay view of a single persisted genre without
// loading the rest of the taxonomy. g must carry its derived Children and
// Influences from the base graph.
//
// Existing references that the correction does not delete are assumed to be
// live; only Build can detect references to genres missing from the base.
func BuildNode(g *domain.Genre, c *domain.Correction) (*Node, []Warning, error) {
	if c == nil {
		c = &domain.Correction{}
	}
	if c.IsDeleted(g.ID) {
		return nil, nil, domainerrors.NotFoundf("genre %d is deleted by correction", g.ID)
	}

	self := domain.ExistingRef(g.ID)

	var n *Node
	if e, ok := c.Edited(g.ID); ok {
		n = nodeFromDraft(self, e.Draft, domain.ChangeEdited)
	} else {
		n = nodeFromGenre(g)
	}

	r := &resolver{tree: singleNodeScope(c, n), deleted: deletedSet(c)}
	r.resolve(n)

	n.Children = overlayChildren(g, c)
	n.Influences = overlayInfluences(g, c)

	return n, r.warnings, nil
}

// singleNodeScope is a stand-in tree holding every node a single-genre view
// can resolve: the genre itself, the correction's created genres and every
// existing reference the genre's edges mention that is not deleted.
func singleNodeScope(c *domain.Correction, n *Node) *Tree {
	t := newTree(len(c.Create) + len(n.Parents) + len(n.InfluencedBy) + 1)
	t.Nodes[n.Ref] = n
	for _, cg := range c.Create {
		t.Nodes[domain.CreatedRef(cg.LocalID)] = &Node{Ref: domain.CreatedRef(cg.LocalID)}
	}
	live := func(ref domain.GenreRef) {
		if ref.IsExisting() && !c.IsDeleted(ref.ID) {
			t.Nodes[ref] = &Node{Ref: ref}
		}
	}
	for _, p := range n.Parents {
		live(p)
	}
	for _, inf := range n.InfluencedBy {
		live(inf.Ref)
	}
	return t
}

func deletedSet(c *domain.Correction) map[int]struct{} {
	deleted := make(map[int]struct{}, len(c.Delete))
	for _, id := range c.Delete {
		deleted[id] = struct{}{}
	}
	return deleted
}

// overlayChildren keeps a base child unless it is deleted or its edit no
// longer lists g as a parent, then adds edited and created genres whose
// drafts name g as a parent.
func overlayChildren(g *domain.Genre, c *domain.Correction) []domain.GenreRef {
	self := domain.ExistingRef(g.ID)
	children := []domain.GenreRef{}

	for _, child := range g.Children {
		if c.IsDeleted(child) {
			continue
		}
		if e, ok := c.Edited(child); ok && !slices.Contains(e.Draft.Parents, self) {
			continue
		}
		children = appendRef(children, domain.ExistingRef(child))
	}
	for _, e := range c.Edit {
		if e.TargetID != g.ID && slices.Contains(e.Draft.Parents, self) {
			children = appendRef(children, domain.ExistingRef(e.TargetID))
		}
	}
	for _, cg := range c.Create {
		if slices.Contains(cg.Data.Parents, self) {
			children = appendRef(children, domain.CreatedRef(cg.LocalID))
		}
	}
	return children
}

// overlayInfluences applies the same rules as overlayChildren to influence edges.
func overlayInfluences(g *domain.Genre, c *domain.Correction) []Influence {
	self := domain.ExistingRef(g.ID)
	influences := []Influence{}

	for _, inf := range g.Influences {
		if c.IsDeleted(inf.ID) {
			continue
		}
		if e, ok := c.Edited(inf.ID); ok {
			if edge, found := draftInfluenceFrom(e.Draft, self); found {
				influences = appendInfluence(influences, Influence{Ref: domain.ExistingRef(inf.ID), Type: edge.Type})
			}
			continue
		}
		influences = appendInfluence(influences, Influence{Ref: domain.ExistingRef(inf.ID), Type: inf.Type})
	}
	for _, e := range c.Edit {
		if e.TargetID == g.ID {
			continue
		}
		if edge, found := draftInfluenceFrom(e.Draft, self); found {
			influences = appendInfluence(influences, Influence{Ref: domain.ExistingRef(e.TargetID), Type: edge.Type})
		}
	}
	for _, cg := range c.Create {
		if edge, found := draftInfluenceFrom(cg.Data, self); found {
			influences = appendInfluence(influences, Influence{Ref: domain.CreatedRef(cg.LocalID), Type: edge.Type})
		}
	}
	return influences
}

func draftInfluenceFrom(d domain.GenreDraft, source domain.GenreRef) (domain.DraftInfluence, bool) {
	i := slices.IndexFunc(d.InfluencedBy, func(inf domain.DraftInfluence) bool { return inf.Ref == source })
	if i < 0 {
		return domain.DraftInfluence{}, false
	}
	return d.InfluencedBy[i], true
}

func appendRef(refs []domain.GenreRef, ref domain.GenreRef) []domain.GenreRef {
	if slices.Contains(refs, ref) {
		return refs
	}
	return append(refs, ref)
}

func appendInfluence(infs []Influence, inf Influence) []Influence {
	if slices.ContainsFunc(infs, func(x Influence) bool { return x.Ref == inf.Ref }) {
		return infs
	}
	return append(infs, inf)
}

package overlay

import (
	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/graph"
	"github.com/genrewiki/genrewiki-server/internal/taxonomy"
)

// Tree is the effective genre graph of one correction.
// It is built per request and never persisted.
type Tree struct {
	Nodes map[domain.GenreRef]*Node

	// Order lists base genres in input order followed by created genres.
	Order []domain.GenreRef

	// Deleted lists the base genres the correction removes.
	Deleted []int

	Warnings []Warning
}

func newTree(capacity int) *Tree {
	return &Tree{
		Nodes: make(map[domain.GenreRef]*Node, capacity),
		Order: make([]domain.GenreRef, 0, capacity),
	}
}

func (t *Tree) add(n *Node) {
	t.Nodes[n.Ref] = n
	t.Order = append(t.Order, n.Ref)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.Order)
}

// All returns every node in tree order.
func (t *Tree) All() []*Node {
	out := make([]*Node, 0, len(t.Order))
	for _, ref := range t.Order {
		out = append(out, t.Nodes[ref])
	}
	return out
}

// Get returns the node for ref.
func (t *Tree) Get(ref domain.GenreRef) (*Node, error) {
	n, ok := t.Nodes[ref]
	if !ok {
		return nil, domainerrors.NotFoundf("genre %s not found in overlay", ref)
	}
	return n, nil
}

// Roots returns the nodes without parents, in tree order.
func (t *Tree) Roots() []*Node {
	var roots []*Node
	for _, ref := range t.Order {
		if n := t.Nodes[ref]; n.IsRoot() {
			roots = append(roots, n)
		}
	}
	return roots
}

// Changed returns the created and edited nodes, in tree order.
func (t *Tree) Changed() []*Node {
	var changed []*Node
	for _, ref := range t.Order {
		if n := t.Nodes[ref]; n.Tag != domain.ChangeNone {
			changed = append(changed, n)
		}
	}
	return changed
}

// Classify returns the change tag of a node.
func (t *Tree) Classify(ref domain.GenreRef) (domain.ChangeTag, error) {
	n, err := t.Get(ref)
	if err != nil {
		return domain.ChangeNone, err
	}
	return n.Tag, nil
}

// Descendants returns every node reachable from ref through children and
// influence edges, excluding ref itself.
func (t *Tree) Descendants(ref domain.GenreRef) ([]domain.GenreRef, error) {
	if _, err := t.Get(ref); err != nil {
		return nil, err
	}
	return graph.Descendants(ref, t.subtreeEdges), nil
}

func (t *Tree) subtreeEdges(ref domain.GenreRef) []domain.GenreRef {
	n := t.Nodes[ref]
	next := make([]domain.GenreRef, 0, len(n.Children)+len(n.Influences))
	next = append(next, n.Children...)
	for _, inf := range n.Influences {
		next = append(next, inf.Ref)
	}
	return next
}

// DescendantChangeTags returns the distinct change tags found below ref,
// in the order CREATED, EDITED. It never contains the unset tag; the tag of
// ref itself is not considered.
func (t *Tree) DescendantChangeTags(ref domain.GenreRef) ([]domain.ChangeTag, error) {
	descendants, err := t.Descendants(ref)
	if err != nil {
		return nil, err
	}

	var created, edited bool
	for _, d := range descendants {
		switch t.Nodes[d].Tag {
		case domain.ChangeCreated:
			created = true
		case domain.ChangeEdited:
			edited = true
		}
	}

	tags := []domain.ChangeTag{}
	if created {
		tags = append(tags, domain.ChangeCreated)
	}
	if edited {
		tags = append(tags, domain.ChangeEdited)
	}
	return tags, nil
}

// HasChanges reports whether ref or anything below it is created or edited.
func (t *Tree) HasChanges(ref domain.GenreRef) (bool, error) {
	tag, err := t.Classify(ref)
	if err != nil {
		return false, err
	}
	if tag != domain.ChangeNone {
		return true, nil
	}
	tags, err := t.DescendantChangeTags(ref)
	if err != nil {
		return false, err
	}
	return len(tags) > 0, nil
}

// GroupRoots splits the roots into those with pending changes in their
// subtree and those without, each keeping tree order.
func (t *Tree) GroupRoots() (changed, unchanged []*Node) {
	for _, root := range t.Roots() {
		// Roots come from the tree, so the lookup cannot fail.
		if ok, _ := t.HasChanges(root.Ref); ok {
			changed = append(changed, root)
		} else {
			unchanged = append(unchanged, root)
		}
	}
	return changed, unchanged
}

// Violation is an edge whose endpoint types are not allowed by the taxonomy policy.
type Violation struct {
	Node       domain.GenreRef  `json:"node"`
	NodeType   domain.GenreType `json:"node_type"`
	Target     domain.GenreRef  `json:"target"`
	TargetType domain.GenreType `json:"target_type"`
	Relation   Relation         `json:"relation"`
}

// CheckPolicy returns every parent and influence edge that the type policy forbids.
func (t *Tree) CheckPolicy() []Violation {
	var violations []Violation
	for _, ref := range t.Order {
		n := t.Nodes[ref]
		for _, p := range n.Parents {
			parent := t.Nodes[p]
			if !taxonomy.CanParent(n.Type, parent.Type) {
				violations = append(violations, Violation{
					Node: n.Ref, NodeType: n.Type,
					Target: p, TargetType: parent.Type,
					Relation: RelationParent,
				})
			}
		}
		for _, inf := range n.InfluencedBy {
			source := t.Nodes[inf.Ref]
			if !taxonomy.CanInfluence(n.Type, source.Type) {
				violations = append(violations, Violation{
					Node: n.Ref, NodeType: n.Type,
					Target: inf.Ref, TargetType: source.Type,
					Relation: RelationInfluence,
				})
			}
		}
	}
	return violations
}

// FindParentCycle returns a parent cycle as a path, or nil.
func (t *Tree) FindParentCycle() []domain.GenreRef {
	return graph.FindCycle(t.Order, func(ref domain.GenreRef) []domain.GenreRef {
		return t.Nodes[ref].Parents
	})
}

// FindInfluenceCycle returns an influence cycle as a path, or nil.
func (t *Tree) FindInfluenceCycle() []domain.GenreRef {
	return graph.FindCycle(t.Order, func(ref domain.GenreRef) []domain.GenreRef {
		n := t.Nodes[ref]
		out := make([]domain.GenreRef, len(n.InfluencedBy))
		for i, inf := range n.InfluencedBy {
			out[i] = inf.Ref
		}
		return out
	})
}

// TypeOf resolves the type of a node, for use with taxonomy.ProjectDraft.
func (t *Tree) TypeOf(ref domain.GenreRef) (domain.GenreType, bool) {
	n, ok := t.Nodes[ref]
	if !ok {
		return "", false
	}
	return n.Type, true
}

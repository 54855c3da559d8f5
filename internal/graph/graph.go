// Package graph provides small generic helpers over adjacency described by
// parent pointers or neighbour functions.
//
// All traversals are iterative and guarded by a seen-set, so they terminate
// on malformed (cyclic or duplicated) input even though the taxonomy is
// expected to be acyclic.
package graph

// BuildChildIndex inverts parent pointers into a child list per parent.
// Children appear in the iteration order of ids and never twice under the
// same parent, even when a node lists the same parent more than once.
func BuildChildIndex[K comparable](ids []K, parentsOf func(K) []K) map[K][]K {
	children := make(map[K][]K)
	seen := make(map[[2]K]struct{})

	for _, id := range ids {
		for _, parent := range parentsOf(id) {
			edge := [2]K{parent, id}
			if _, dup := seen[edge]; dup {
				continue
			}
			seen[edge] = struct{}{}
			children[parent] = append(children[parent], id)
		}
	}

	return children
}

// Descendants returns every node reachable from root through next, in
// depth-first discovery order. The root itself is not included, even when a
// cycle leads back to it.
func Descendants[K comparable](root K, next func(K) []K) []K {
	seen := map[K]struct{}{root: {}}
	stack := []K{root}
	var out []K

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range next(current) {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
			stack = append(stack, n)
		}
	}

	return out
}

// FindCycle returns one cycle reachable through next, as a path whose first
// and last elements are the same node. Returns nil when the graph is acyclic.
func FindCycle[K comparable](ids []K, next func(K) []K) []K {
	const (
		white = iota
		grey
		black
	)

	type frame struct {
		node K
		succ []K
		pos  int
	}

	color := make(map[K]int, len(ids))

	for _, start := range ids {
		if color[start] != white {
			continue
		}

		color[start] = grey
		stack := []frame{{node: start, succ: next(start)}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.pos == len(top.succ) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}

			n := top.succ[top.pos]
			top.pos++

			switch color[n] {
			case white:
				color[n] = grey
				stack = append(stack, frame{node: n, succ: next(n)})
			case grey:
				// Back edge: the cycle is the stack suffix starting at n.
				var cycle []K
				for i := range stack {
					if len(cycle) == 0 && stack[i].node != n {
						continue
					}
					cycle = append(cycle, stack[i].node)
				}
				return append(cycle, n)
			}
		}
	}

	return nil
}

// TopoOrder orders ids so every node comes after the nodes deps returns for
// it. Ties keep the order of ids. Dependencies outside ids are ignored.
// When the dependencies form a cycle, TopoOrder returns nil and the cycle.
func TopoOrder[K comparable](ids []K, deps func(K) []K) (order, cycle []K) {
	if cycle := FindCycle(ids, deps); cycle != nil {
		return nil, cycle
	}

	known := make(map[K]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	placed := make(map[K]struct{}, len(ids))
	order = make([]K, 0, len(ids))

	var place func(K)
	place = func(id K) {
		if _, ok := placed[id]; ok {
			return
		}
		placed[id] = struct{}{}
		for _, d := range deps(id) {
			if _, ok := known[d]; ok {
				place(d)
			}
		}
		order = append(order, id)
	}

	for _, id := range ids {
		place(id)
	}
	return order, nil
}

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adjacency(m map[int][]int) func(int) []int {
	return func(k int) []int { return m[k] }
}

func TestBuildChildIndex(t *testing.T) {
	parents := map[int][]int{
		1: nil,
		2: {1},
		3: {1},
		4: {2, 3},
	}

	children := BuildChildIndex([]int{1, 2, 3, 4}, adjacency(parents))

	assert.Equal(t, []int{2, 3}, children[1])
	assert.Equal(t, []int{4}, children[2])
	assert.Equal(t, []int{4}, children[3])
	assert.Empty(t, children[4])
}

func TestBuildChildIndex_DeduplicatesParentEdges(t *testing.T) {
	parents := map[int][]int{
		1: nil,
		2: {1, 1, 1},
	}

	children := BuildChildIndex([]int{1, 2}, adjacency(parents))

	assert.Equal(t, []int{2}, children[1])
}

func TestDescendants(t *testing.T) {
	children := map[int][]int{
		1: {2, 3},
		2: {4},
		3: {4, 5},
	}

	got := Descendants(1, adjacency(children))

	assert.ElementsMatch(t, []int{2, 3, 4, 5}, got)
	assert.Empty(t, Descendants(5, adjacency(children)))
}

func TestDescendants_TerminatesOnCycle(t *testing.T) {
	children := map[int][]int{
		1: {2},
		2: {3},
		3: {1, 2},
	}

	got := Descendants(1, adjacency(children))

	assert.ElementsMatch(t, []int{2, 3}, got, "root must not be reported even when a cycle returns to it")
}

func TestDescendants_FollowsMultipleEdgeKinds(t *testing.T) {
	children := map[string][]string{"rock": {"punk"}}
	influences := map[string][]string{"punk": {"hardcore"}}

	next := func(k string) []string {
		return append(append([]string{}, children[k]...), influences[k]...)
	}

	assert.ElementsMatch(t, []string{"punk", "hardcore"}, Descendants("rock", next))
}

func TestFindCycle_Acyclic(t *testing.T) {
	parents := map[int][]int{2: {1}, 3: {1, 2}, 4: {3}}

	assert.Nil(t, FindCycle([]int{1, 2, 3, 4}, adjacency(parents)))
}

func TestFindCycle_ReportsPath(t *testing.T) {
	parents := map[int][]int{1: {2}, 2: {3}, 3: {1}, 4: {1}}

	cycle := FindCycle([]int{4, 1, 2, 3}, adjacency(parents))

	require.NotNil(t, cycle)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
	assert.Len(t, cycle, 4)
	assert.ElementsMatch(t, []int{1, 2, 3}, cycle[:3])
}

func TestFindCycle_SelfLoop(t *testing.T) {
	parents := map[int][]int{7: {7}}

	assert.Equal(t, []int{7, 7}, FindCycle([]int{7}, adjacency(parents)))
}

func TestTopoOrder(t *testing.T) {
	deps := map[string][]string{
		"post-punk": {"punk", "rock"},
		"punk":      {"rock"},
		"shoegaze":  {"rock", "post-punk"},
		"rock":      {"blues"}, // outside the id set
	}

	order, cycle := TopoOrder([]string{"shoegaze", "post-punk", "punk", "rock"}, func(k string) []string { return deps[k] })
	require.Nil(t, cycle)
	assert.Equal(t, []string{"rock", "punk", "post-punk", "shoegaze"}, order)
}

func TestTopoOrder_KeepsInputOrderForIndependentNodes(t *testing.T) {
	order, cycle := TopoOrder([]int{3, 1, 2}, adjacency(nil))
	require.Nil(t, cycle)
	assert.Equal(t, []int{3, 1, 2}, order)
}

func TestTopoOrder_Cycle(t *testing.T) {
	order, cycle := TopoOrder([]int{1, 2}, adjacency(map[int][]int{1: {2}, 2: {1}}))
	assert.Nil(t, order)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
}

package reach_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/reach"
)

func node(name string) entity.Node {
	return entity.Node{Type: "n", Name: name, Predicate: entity.SelfRef{}}
}

func TestMultiEdgePartialRemovalPreservesConnectivity(t *testing.T) {
	idx := reach.New()
	a, b, c, d := node("a"), node("b"), node("c"), node("d")

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(b, c))
	require.NoError(t, idx.AddEdge(b, c)) // second parallel edge
	require.NoError(t, idx.AddEdge(c, d))
	require.NoError(t, idx.RemoveEdge(b, c)) // removes one of the two

	require.Equal(t, uint64(1), idx.PathCount(a, b))
	require.Equal(t, uint64(1), idx.PathCount(a, c))
	require.Equal(t, uint64(1), idx.PathCount(a, d))
	require.Equal(t, uint64(1), idx.PathCount(b, c))
	require.Equal(t, uint64(1), idx.PathCount(b, d))

	require.True(t, idx.HasDirectEdge(a, b))
	require.True(t, idx.HasDirectEdge(b, c))
	require.True(t, idx.HasDirectEdge(c, d))
	require.False(t, idx.HasDirectEdge(b, a))
}

func TestMidChainSpliceUpdatesBothSides(t *testing.T) {
	idx := reach.New()
	a, b, c, d := node("a"), node("b"), node("c"), node("d")

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(c, d))
	require.NoError(t, idx.AddEdge(b, c))

	require.Equal(t, uint64(1), idx.PathCount(a, b))
	require.Equal(t, uint64(1), idx.PathCount(a, c))
	require.Equal(t, uint64(1), idx.PathCount(a, d))
	require.Equal(t, uint64(1), idx.PathCount(b, c))
	require.Equal(t, uint64(1), idx.PathCount(b, d))
	require.Equal(t, uint64(1), idx.PathCount(c, d))
}

func TestRemovingOneOfTwoPathsLeavesTheOtherIntact(t *testing.T) {
	idx := reach.New()
	a, b, c := node("a"), node("b"), node("c")

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(b, c))
	require.NoError(t, idx.AddEdge(a, c))
	require.NoError(t, idx.RemoveEdge(a, c))

	require.Equal(t, uint64(1), idx.PathCount(a, c)) // survives via a->b->c
	require.False(t, idx.HasDirectEdge(a, c))
}

func TestAddingBackEdgeIsRejectedAsCycle(t *testing.T) {
	idx := reach.New()
	a, b := node("a"), node("b")

	require.NoError(t, idx.AddEdge(a, b))
	err := idx.AddEdge(b, a)
	require.True(t, reach.IsCycleErr(err))

	// state unchanged
	require.Equal(t, uint64(1), idx.PathCount(a, b))
	require.Equal(t, uint64(0), idx.PathCount(b, a))
	require.False(t, idx.HasDirectEdge(b, a))
}

func TestDiamondDoublesPathCount(t *testing.T) {
	idx := reach.New()
	a, b, c, d := node("a"), node("b"), node("c"), node("d")

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(a, c))
	require.NoError(t, idx.AddEdge(b, d))
	require.NoError(t, idx.AddEdge(c, d))

	require.Equal(t, uint64(2), idx.PathCount(a, d))
}

func TestSelfEdgeRejected(t *testing.T) {
	idx := reach.New()
	a := node("a")
	err := idx.AddEdge(a, a)
	require.True(t, reach.IsSelfEdgeErr(err))

	err = idx.RemoveEdge(a, a)
	require.True(t, reach.IsSelfEdgeErr(err) || reach.IsEdgeNotFoundErr(err))
}

func TestRemoveEdgeNotFound(t *testing.T) {
	idx := reach.New()
	a, b := node("a"), node("b")
	err := idx.RemoveEdge(a, b)
	require.True(t, reach.IsEdgeNotFoundErr(err))
}

func TestRemoveNodeCollapsesThroughPaths(t *testing.T) {
	idx := reach.New()
	a, b, c := node("a"), node("b"), node("c")

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(b, c))
	require.Equal(t, uint64(1), idx.PathCount(a, c))

	require.NoError(t, idx.RemoveNode(b))

	require.Equal(t, uint64(0), idx.PathCount(a, c))
	require.Equal(t, uint64(0), idx.PathCount(a, b))
	require.Equal(t, uint64(0), idx.PathCount(b, c))
	require.False(t, idx.HasDirectEdge(a, b))
	require.False(t, idx.HasDirectEdge(b, c))
}

func TestRemoveNodeNotFound(t *testing.T) {
	idx := reach.New()
	err := idx.RemoveNode(node("ghost"))
	require.True(t, reach.IsNodeNotFoundErr(err))
}

func TestCheckIsFalseForSelf(t *testing.T) {
	idx := reach.New()
	a := node("a")
	require.False(t, idx.Check(a, a))
}

func TestListReachableAndListReverse(t *testing.T) {
	idx := reach.New()
	a, b, c := node("a"), node("b"), node("c")

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(b, c))

	require.ElementsMatch(t, []entity.Node{b, c}, idx.ListReachable(a))
	require.ElementsMatch(t, []entity.Node{a, b}, idx.ListReverse(c))
}

func TestExplicitNodeSurvivesZeroReferences(t *testing.T) {
	idx := reach.New()
	a, b := node("a"), node("b")
	idx.MarkExplicit(a)

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.RemoveEdge(a, b))

	require.False(t, idx.IsGarbage(a))
	require.True(t, idx.IsGarbage(b))

	idx.UnmarkExplicit(a)
	require.True(t, idx.IsGarbage(a))
}

func TestCheckDoesNotMutateState(t *testing.T) {
	idx := reach.New()
	a, b, c := node("a"), node("b"), node("c")
	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(b, c))

	before := idx.PathCount(a, c)
	for i := 0; i < 5; i++ {
		idx.Check(a, c)
	}
	require.Equal(t, before, idx.PathCount(a, c))
}

// invariantsHold checks P1-P4 against the index's externally observable
// state: no self-paths, forward/inverse agreement, no zero-valued entries,
// and direct-edge subsumption.
func invariantsHold(t *testing.T, idx *reach.ReachabilityIndex, universe []entity.Node) {
	t.Helper()
	for _, u := range universe {
		require.Equal(t, uint64(0), idx.PathCount(u, u), "P1: no self-path for %v", u)
	}
	for _, u := range universe {
		for _, v := range universe {
			fwd := idx.PathCount(u, v) > 0
			require.Equal(t, fwd, idx.Check(u, v), "P2: forward/inverse agreement for %v -> %v", u, v)
			if fwd {
				require.GreaterOrEqual(t, idx.PathCount(u, v), boolToCount(idx.HasDirectEdge(u, v)), "P4: direct subsumption for %v -> %v", u, v)
			}
		}
	}
	for _, u := range universe {
		for _, v := range idx.ListReachable(u) {
			require.Positive(t, idx.PathCount(u, v), "P3: no zero-valued entry for %v -> %v", u, v)
		}
	}
	for _, e := range idx.DirectEdges() {
		require.Positive(t, e.Count, "P3: no zero-valued direct edge %v -> %v", e.From, e.To)
		require.GreaterOrEqual(t, idx.PathCount(e.From, e.To), e.Count, "P4: direct subsumption for %v -> %v", e.From, e.To)
	}
}

func boolToCount(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func TestInvariantsHoldAcrossDiamondLifecycle(t *testing.T) {
	idx := reach.New()
	a, b, c, d := node("a"), node("b"), node("c"), node("d")
	universe := []entity.Node{a, b, c, d}

	require.NoError(t, idx.AddEdge(a, b))
	invariantsHold(t, idx, universe)
	require.NoError(t, idx.AddEdge(a, c))
	invariantsHold(t, idx, universe)
	require.NoError(t, idx.AddEdge(b, d))
	invariantsHold(t, idx, universe)
	require.NoError(t, idx.AddEdge(c, d))
	invariantsHold(t, idx, universe)

	require.NoError(t, idx.RemoveEdge(b, d))
	invariantsHold(t, idx, universe)
	require.NoError(t, idx.RemoveEdge(a, b))
	invariantsHold(t, idx, universe)
}

func TestInverseLawRestoresEmptyIndex(t *testing.T) {
	idx := reach.New()
	a, b, c, d := node("a"), node("b"), node("c"), node("d")

	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(b, c))
	require.NoError(t, idx.AddEdge(c, d))
	require.NoError(t, idx.AddEdge(a, d))

	// L1: appending S^-1 (deletes in reverse order) restores the empty index.
	require.NoError(t, idx.RemoveEdge(a, d))
	require.NoError(t, idx.RemoveEdge(c, d))
	require.NoError(t, idx.RemoveEdge(b, c))
	require.NoError(t, idx.RemoveEdge(a, b))

	for _, n := range []entity.Node{a, b, c, d} {
		require.Empty(t, idx.ListReachable(n))
		require.Empty(t, idx.ListReverse(n))
		require.Equal(t, uint64(0), idx.RefCount(n))
	}
}

func TestOrderIndependenceOfAdds(t *testing.T) {
	a, b, c, d := node("a"), node("b"), node("c"), node("d")

	build := func(order [][2]entity.Node) *reach.ReachabilityIndex {
		idx := reach.New()
		for _, e := range order {
			require.NoError(t, idx.AddEdge(e[0], e[1]))
		}
		return idx
	}

	idx1 := build([][2]entity.Node{{a, b}, {a, c}, {b, d}, {c, d}})
	idx2 := build([][2]entity.Node{{c, d}, {b, d}, {a, c}, {a, b}})

	for _, u := range []entity.Node{a, b, c, d} {
		for _, v := range []entity.Node{a, b, c, d} {
			require.Equal(t, idx1.PathCount(u, v), idx2.PathCount(u, v), "%v -> %v", u, v)
		}
	}
}

// Package reach implements an in-memory, incrementally maintained, counted
// transitive closure over a directed acyclic multigraph of entity.Node
// vertices.
//
// The index keeps the exact number of distinct paths between every pair of
// reachable nodes, updated on every edge insertion or removal by an additive
// delta rather than a full recomputation, so Check/ListReachable/ListReverse
// are O(1) and O(out-degree) respectively regardless of graph size. The
// update algorithm mirrors the counted-closure-maintenance approach: take a
// snapshot of "what reaches u" and "what v reaches" before mutating, then
// redistribute the cross product of those two snapshots as a path-count
// delta.
package reach

import (
	"fmt"
	"math"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/multiset"
)

// ReachabilityIndex is the incremental counted transitive closure. The zero
// value is not usable; construct with New.
//
// ReachabilityIndex is not safe for concurrent use; callers that need
// concurrent access should hold their own lock around it (the root relgraph
// package's facade does exactly that).
type ReachabilityIndex struct {
	directEdges *multiset.MultiSet[entity.Edge]

	// pathsFwd[x] holds, for every y reachable from x, the exact count of
	// distinct paths x -> ... -> y. An entry is pruned as soon as its count
	// reaches zero, and pathsFwd itself drops the outer key once its inner
	// multiset is empty.
	pathsFwd map[entity.Node]*multiset.MultiSet[entity.Node]

	// pathsInv is the inverse index of pathsFwd: pathsInv[y] is the set of x
	// with pathsFwd[x].Get(y) > 0. It exists purely so Check and ListReverse
	// run in O(1) / O(in-degree) instead of scanning every pathsFwd entry.
	pathsInv map[entity.Node]map[entity.Node]struct{}

	// refCounts counts, per node, the number of direct edges currently
	// incident on it (either direction). It is the bookkeeping a caller
	// needs to know when an implicit node has become garbage: refCounts
	// reaching zero for a node not in explicitNodes means nothing in the
	// graph references it any more.
	refCounts *multiset.MultiSet[entity.Node]

	// explicitNodes holds nodes the facade has pinned independent of any
	// incident edge (e.g. "this entity was asserted even though it has no
	// relations yet"). Explicit nodes survive with a zero reference count;
	// implicit ones are garbage the moment their count hits zero.
	explicitNodes map[entity.Node]struct{}
}

// New returns an empty reachability index.
func New() *ReachabilityIndex {
	return &ReachabilityIndex{
		directEdges:   multiset.New[entity.Edge](),
		pathsFwd:      make(map[entity.Node]*multiset.MultiSet[entity.Node]),
		pathsInv:      make(map[entity.Node]map[entity.Node]struct{}),
		refCounts:     multiset.New[entity.Node](),
		explicitNodes: make(map[entity.Node]struct{}),
	}
}

// multiplyChecked returns a*b, or ErrOverflow if the product would not fit
// in a uint64.
func multiplyChecked(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint64/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// backward returns B(x): every node that currently reaches x, mapped to the
// exact path count.
func (idx *ReachabilityIndex) backward(x entity.Node) map[entity.Node]uint64 {
	support := idx.pathsInv[x]
	out := make(map[entity.Node]uint64, len(support))
	for w := range support {
		out[w] = idx.pathsFwd[w].Get(x)
	}
	return out
}

// forward returns F(x): every node currently reachable from x, mapped to the
// exact path count.
func (idx *ReachabilityIndex) forward(x entity.Node) map[entity.Node]uint64 {
	ms, ok := idx.pathsFwd[x]
	if !ok {
		return nil
	}
	out := make(map[entity.Node]uint64, ms.Len())
	ms.Each(func(y entity.Node, count uint64) {
		out[y] = count
	})
	return out
}

// addIndirect applies delta to pathsFwd[x][y] (and keeps pathsInv and the
// empty-container pruning in sync). x must not equal y: the index never
// stores a path from a node to itself, since the graph is acyclic by
// construction (I1).
//
// A negative-count result here is an internal invariant violation, not a
// caller error: every delta passed to addIndirect is derived from counts
// already present in the index, so a well-formed caller can never drive a
// path count below zero.
func (idx *ReachabilityIndex) addIndirect(x, y entity.Node, delta int64) {
	if delta == 0 {
		return
	}
	if x == y {
		panic(InvariantViolation{Msg: fmt.Sprintf("attempted to record a path from %v to itself", x)})
	}

	ms, ok := idx.pathsFwd[x]
	if !ok {
		ms = multiset.New[entity.Node]()
		idx.pathsFwd[x] = ms
	}
	newCount, err := ms.Add(y, delta)
	if err != nil {
		panic(InvariantViolation{Msg: fmt.Sprintf("path count %v -> %v: %v", x, y, err)})
	}

	if newCount > 0 {
		if idx.pathsInv[y] == nil {
			idx.pathsInv[y] = make(map[entity.Node]struct{})
		}
		idx.pathsInv[y][x] = struct{}{}
		return
	}

	if inv, ok := idx.pathsInv[y]; ok {
		delete(inv, x)
		if len(inv) == 0 {
			delete(idx.pathsInv, y)
		}
	}
	if ms.Len() == 0 {
		delete(idx.pathsFwd, x)
	}
}

// closureStep is one pending path-count adjustment, computed ahead of time
// so a whole AddEdge/RemoveEdge/RemoveNode call either applies in full or
// not at all: no partial mutation can escape a call that fails validation.
type closureStep struct {
	x, y  entity.Node
	delta int64
}

// crossTerms returns, for every x in b and y in f with x != y, the step
// b[x]*f[y]*sign. An overflowing product aborts the whole computation.
func crossTerms(b, f map[entity.Node]uint64, sign int64) ([]closureStep, error) {
	steps := make([]closureStep, 0, len(b)*len(f))
	for x, bx := range b {
		for y, fy := range f {
			if x == y {
				continue
			}
			amount, err := multiplyChecked(bx, fy)
			if err != nil {
				return nil, fmt.Errorf("%w: %v -> %v", ErrOverflow, x, y)
			}
			steps = append(steps, closureStep{x, y, int64(amount) * sign})
		}
	}
	return steps, nil
}

// AddEdge inserts a direct edge u -> v, maintaining the transitive closure.
// It fails with ErrSelfEdge if u == v, and with ErrCycleWouldBeCreated if v
// already reaches u (the graph must stay acyclic). On any error the index is
// left unchanged.
func (idx *ReachabilityIndex) AddEdge(u, v entity.Node) error {
	if u == v {
		return fmt.Errorf("%w: %v", ErrSelfEdge, u)
	}
	if idx.Check(v, u) {
		return fmt.Errorf("%w: %v -> %v", ErrCycleWouldBeCreated, u, v)
	}

	b := idx.backward(u)
	f := idx.forward(v)

	steps, err := crossTerms(b, f, 1)
	if err != nil {
		return err
	}
	for y, fy := range f {
		if y == u {
			continue
		}
		steps = append(steps, closureStep{u, y, int64(fy)})
	}
	for x, bx := range b {
		if x == v {
			continue
		}
		steps = append(steps, closureStep{x, v, int64(bx)})
	}
	steps = append(steps, closureStep{u, v, 1})

	// Each (x, y) pair above occurs once, so each resulting count is the
	// current count plus that step's delta. Counts are kept at or below
	// math.MaxInt64 so every delta, here and on removal, fits in an int64;
	// an edge that would pass that bound is refused before any mutation.
	for _, s := range steps {
		if s.delta < 0 || idx.PathCount(s.x, s.y) > math.MaxInt64-uint64(s.delta) {
			return fmt.Errorf("%w: %v -> %v", ErrOverflow, s.x, s.y)
		}
	}

	for _, s := range steps {
		idx.addIndirect(s.x, s.y, s.delta)
	}

	if _, err := idx.directEdges.Add(entity.Edge{From: u, To: v}, 1); err != nil {
		panic(InvariantViolation{Msg: fmt.Sprintf("direct edge count %v -> %v: %v", u, v, err)})
	}
	idx.bumpRef(u, 1)
	idx.bumpRef(v, 1)
	return nil
}

// RemoveEdge removes one copy of the direct edge u -> v, maintaining the
// transitive closure. It fails with ErrEdgeNotFound if no such direct edge
// exists. On error the index is left unchanged.
func (idx *ReachabilityIndex) RemoveEdge(u, v entity.Node) error {
	key := entity.Edge{From: u, To: v}
	if idx.directEdges.Get(key) == 0 {
		return fmt.Errorf("%w: %v -> %v", ErrEdgeNotFound, u, v)
	}

	// Decrement the direct edge, and the closure contribution of this one
	// direct hop, before taking the backward/forward snapshots below: B(u)
	// and F(v) must reflect the post-removal graph, not count a path that
	// only existed because of the edge being removed.
	if _, err := idx.directEdges.Add(key, -1); err != nil {
		panic(InvariantViolation{Msg: fmt.Sprintf("direct edge count %v -> %v: %v", u, v, err)})
	}
	idx.addIndirect(u, v, -1)

	b := idx.backward(u)
	f := idx.forward(v)

	steps, err := crossTerms(b, f, -1)
	if err != nil {
		panic(InvariantViolation{Msg: err.Error()})
	}
	for y, fy := range f {
		if y == u {
			continue
		}
		steps = append(steps, closureStep{u, y, -int64(fy)})
	}
	for x, bx := range b {
		if x == v {
			continue
		}
		steps = append(steps, closureStep{x, v, -int64(bx)})
	}

	for _, s := range steps {
		idx.addIndirect(s.x, s.y, s.delta)
	}

	idx.bumpRef(u, -1)
	idx.bumpRef(v, -1)
	return nil
}

// RemoveNode removes every direct edge incident on n, in either direction,
// and collapses the closure accordingly: any path x -> ... -> n -> ... -> y
// that existed only via n is removed, in one bulk update rather than one
// RemoveEdge call per incident edge. It fails with ErrNodeNotFound if n has
// no incident direct edges.
func (idx *ReachabilityIndex) RemoveNode(n entity.Node) error {
	var incident []entity.Edge
	idx.directEdges.Each(func(e entity.Edge, _ uint64) {
		if e.From == n || e.To == n {
			incident = append(incident, e)
		}
	})
	if len(incident) == 0 {
		return fmt.Errorf("%w: %v", ErrNodeNotFound, n)
	}

	b := idx.backward(n)
	f := idx.forward(n)

	for _, e := range incident {
		count := idx.directEdges.Get(e)
		idx.directEdges.Set(e, 0)
		other := e.From
		if other == n {
			other = e.To
		}
		idx.bumpRef(other, -int64(count))
	}

	steps, err := crossTerms(b, f, -1)
	if err != nil {
		panic(InvariantViolation{Msg: err.Error()})
	}
	for y, fy := range f {
		steps = append(steps, closureStep{n, y, -int64(fy)})
	}
	for x, bx := range b {
		steps = append(steps, closureStep{x, n, -int64(bx)})
	}

	for _, s := range steps {
		idx.addIndirect(s.x, s.y, s.delta)
	}

	idx.refCounts.Set(n, 0)
	return nil
}

// bumpRef applies delta to n's reference count. A caller-visible negative
// count here would mean an edge was removed without ever having been added,
// which addIndirect/directEdges would already have rejected, so any error
// indicates an internal bug.
func (idx *ReachabilityIndex) bumpRef(n entity.Node, delta int64) {
	if delta == 0 {
		return
	}
	if _, err := idx.refCounts.Add(n, delta); err != nil {
		panic(InvariantViolation{Msg: fmt.Sprintf("reference count for %v: %v", n, err)})
	}
}

// MarkExplicit pins n so it survives RemoveEdge/RemoveNode bringing its
// reference count to zero, instead of being treated as garbage.
func (idx *ReachabilityIndex) MarkExplicit(n entity.Node) {
	idx.explicitNodes[n] = struct{}{}
}

// UnmarkExplicit releases the pin set by MarkExplicit. If n's reference
// count is already zero it becomes garbage immediately.
func (idx *ReachabilityIndex) UnmarkExplicit(n entity.Node) {
	delete(idx.explicitNodes, n)
}

// IsGarbage reports whether n has no incident direct edges and is not
// pinned explicit, i.e. nothing in the graph still references it.
func (idx *ReachabilityIndex) IsGarbage(n entity.Node) bool {
	if _, explicit := idx.explicitNodes[n]; explicit {
		return false
	}
	return idx.refCounts.Get(n) == 0
}

// RefCount returns the number of direct edges currently incident on n, in
// either direction.
func (idx *ReachabilityIndex) RefCount(n entity.Node) uint64 {
	return idx.refCounts.Get(n)
}

// Check reports whether v is reachable from u, including by the direct edge
// u -> v itself. Check(u, u) is always false: the graph is acyclic, so no
// node reaches itself.
func (idx *ReachabilityIndex) Check(u, v entity.Node) bool {
	if u == v {
		return false
	}
	inv, ok := idx.pathsInv[v]
	if !ok {
		return false
	}
	_, reaches := inv[u]
	return reaches
}

// PathCount returns the exact number of distinct paths from u to v, or 0 if
// v is not reachable from u.
func (idx *ReachabilityIndex) PathCount(u, v entity.Node) uint64 {
	ms, ok := idx.pathsFwd[u]
	if !ok {
		return 0
	}
	return ms.Get(v)
}

// ListReachable returns every node reachable from u.
func (idx *ReachabilityIndex) ListReachable(u entity.Node) []entity.Node {
	ms, ok := idx.pathsFwd[u]
	if !ok {
		return nil
	}
	return ms.Keys()
}

// ListReverse returns every node that can reach v.
func (idx *ReachabilityIndex) ListReverse(v entity.Node) []entity.Node {
	support := idx.pathsInv[v]
	out := make([]entity.Node, 0, len(support))
	for w := range support {
		out = append(out, w)
	}
	return out
}

// HasDirectEdge reports whether at least one direct edge u -> v exists.
func (idx *ReachabilityIndex) HasDirectEdge(u, v entity.Node) bool {
	return idx.directEdges.Get(entity.Edge{From: u, To: v}) > 0
}

// NodeRecord describes one node's bookkeeping, for callers (such as package
// store) that need to mirror the index's full state rather than query it
// pairwise.
type NodeRecord struct {
	Node     entity.Node
	Implicit bool
	RefCount uint64
}

// EdgeRecord describes one edge and its multiplicity, for callers that need
// to mirror either direct_edges or the paths_fwd closure wholesale.
type EdgeRecord struct {
	From, To entity.Node
	Count    uint64
}

// Nodes returns a record for every node that has at least one incident
// direct edge, plus every explicit node. An implicit node whose reference
// count has dropped to zero is not included.
func (idx *ReachabilityIndex) Nodes() []NodeRecord {
	seen := make(map[entity.Node]struct{})
	add := func(n entity.Node) {
		seen[n] = struct{}{}
	}
	idx.directEdges.Each(func(e entity.Edge, _ uint64) {
		add(e.From)
		add(e.To)
	})
	for n := range idx.explicitNodes {
		add(n)
	}
	out := make([]NodeRecord, 0, len(seen))
	for n := range seen {
		_, explicit := idx.explicitNodes[n]
		out = append(out, NodeRecord{Node: n, Implicit: !explicit, RefCount: idx.refCounts.Get(n)})
	}
	return out
}

// DirectEdges returns every direct edge currently in the index, with its
// multiplicity.
func (idx *ReachabilityIndex) DirectEdges() []EdgeRecord {
	out := make([]EdgeRecord, 0, idx.directEdges.Len())
	idx.directEdges.Each(func(e entity.Edge, count uint64) {
		out = append(out, EdgeRecord{From: e.From, To: e.To, Count: count})
	})
	return out
}

// IndirectEdges returns every (x, y) pair with a positive path count,
// including length-1 paths that coincide with a direct edge.
func (idx *ReachabilityIndex) IndirectEdges() []EdgeRecord {
	var out []EdgeRecord
	for x, ms := range idx.pathsFwd {
		ms.Each(func(y entity.Node, count uint64) {
			out = append(out, EdgeRecord{From: x, To: y, Count: count})
		})
	}
	return out
}

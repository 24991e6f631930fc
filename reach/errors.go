package reach

import "errors"

// Sentinel errors for the reachability index's domain-level failure modes.
// These are expected, recoverable conditions surfaced to the caller without
// any state change — never exceptions raised from deep inside the
// closure-update loop.
var (
	// ErrSelfEdge is returned when AddEdge is called with identical
	// endpoints. Self-edges are forbidden unconditionally, so none is ever
	// stored and RemoveEdge of one reports ErrEdgeNotFound.
	ErrSelfEdge = errors.New("reach: self-edge not allowed")

	// ErrCycleWouldBeCreated is returned by AddEdge when the destination
	// can already reach the source, so adding the edge would close a
	// cycle. The index is left unchanged.
	ErrCycleWouldBeCreated = errors.New("reach: edge would create a cycle")

	// ErrEdgeNotFound is returned by RemoveEdge when there is no direct
	// edge between the given endpoints to remove.
	ErrEdgeNotFound = errors.New("reach: no direct edge to remove")

	// ErrNodeNotFound is returned by RemoveNode when the node has no
	// incident direct edges.
	ErrNodeNotFound = errors.New("reach: node has no incident edges")

	// ErrOverflow is returned by AddEdge when the new edge would push a path
	// count past math.MaxInt64. The edge is refused and the index is left
	// unchanged; path counts neither saturate nor wrap.
	ErrOverflow = errors.New("reach: path count overflow")
)

// IsSelfEdgeErr returns true if err is or wraps ErrSelfEdge.
func IsSelfEdgeErr(err error) bool { return errors.Is(err, ErrSelfEdge) }

// IsCycleErr returns true if err is or wraps ErrCycleWouldBeCreated.
func IsCycleErr(err error) bool { return errors.Is(err, ErrCycleWouldBeCreated) }

// IsEdgeNotFoundErr returns true if err is or wraps ErrEdgeNotFound.
func IsEdgeNotFoundErr(err error) bool { return errors.Is(err, ErrEdgeNotFound) }

// IsNodeNotFoundErr returns true if err is or wraps ErrNodeNotFound.
func IsNodeNotFoundErr(err error) bool { return errors.Is(err, ErrNodeNotFound) }

// IsOverflowErr returns true if err is or wraps ErrOverflow.
func IsOverflowErr(err error) bool { return errors.Is(err, ErrOverflow) }

// InvariantViolation is panicked when an internal bookkeeping invariant
// (I1-I4 in the design notes: acyclicity, forward/inverse symmetry,
// direct-edge subsumption, additive path counts) would otherwise be broken.
// These indicate a bug in this package, not a caller error, and per the
// failure-semantics design must abort the process rather than be recovered
// and swallowed.
type InvariantViolation struct {
	Msg string
}

func (e InvariantViolation) Error() string {
	return "reach: internal invariant violation: " + e.Msg
}

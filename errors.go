package relgraph

import (
	"errors"

	"github.com/pthm/relgraph/reach"
	"github.com/pthm/relgraph/ruleset"
)

// Sentinel errors the facade can return directly. Errors originating in the
// reach and ruleset packages are returned unwrapped (callers can use
// reach.Is*Err / ruleset.Is*Err on them directly); these additions cover
// facade-level concerns those packages don't know about.
var (
	// ErrStoreRequired is returned by facade operations that need a
	// persistence mirror (see package store) when none was configured via
	// WithStore.
	ErrStoreRequired = errors.New("relgraph: operation requires a configured store")
)

// IsStoreRequiredErr returns true if err is or wraps ErrStoreRequired.
func IsStoreRequiredErr(err error) bool { return errors.Is(err, ErrStoreRequired) }

// IsDuplicateErr reports whether err indicates the triple (or one of its
// implied edges) was already present. The index itself has no concept of
// "duplicate" beyond the multigraph counting every add, so this always
// returns false; it exists so the facade's public signature can match the
// write(...) -> ok | Duplicate | CycleError | SchemaError contract the
// external interface describes, without the index lying about what it
// tracks.
func IsDuplicateErr(err error) bool { return false }

// IsCycleErr returns true if err is or wraps reach.ErrCycleWouldBeCreated.
func IsCycleErr(err error) bool { return reach.IsCycleErr(err) }

// IsSchemaErr returns true if err indicates the triple was inadmissible or
// saturation diverged.
func IsSchemaErr(err error) bool {
	return ruleset.IsTripleNotAdmissibleErr(err) || ruleset.IsSaturationBoundExceededErr(err) || ruleset.IsCyclicRelationGraphErr(err)
}

// IsNotFoundErr returns true if err is or wraps reach.ErrEdgeNotFound or
// reach.ErrNodeNotFound.
func IsNotFoundErr(err error) bool {
	return reach.IsEdgeNotFoundErr(err) || reach.IsNodeNotFoundErr(err)
}

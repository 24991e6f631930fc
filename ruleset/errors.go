package ruleset

import "errors"

var (
	// ErrTripleNotAdmissible is returned when a triple passed to Write/Delete
	// matches no admission Filter in the schema.
	ErrTripleNotAdmissible = errors.New("ruleset: triple not admissible under schema")

	// ErrSaturationBoundExceeded is returned when fixpoint saturation of a
	// triple produces more than MaxSaturationSize distinct triples without
	// converging. This is the safety net against a schema whose rules fan a
	// single triple out into too many implied triples; see also
	// ValidateRules, which rejects a cyclic relation graph statically.
	ErrSaturationBoundExceeded = errors.New("ruleset: saturation bound exceeded")

	// ErrCyclicRelationGraph is returned by ValidateRules when the rules
	// define a cycle across relations that is not a same-relation recursive
	// chain (e.g. group-of-groups membership), so that every relation on the
	// cycle would imply every other one.
	ErrCyclicRelationGraph = errors.New("ruleset: cyclic relation graph")
)

// IsTripleNotAdmissibleErr returns true if err is or wraps ErrTripleNotAdmissible.
func IsTripleNotAdmissibleErr(err error) bool { return errors.Is(err, ErrTripleNotAdmissible) }

// IsSaturationBoundExceededErr returns true if err is or wraps ErrSaturationBoundExceeded.
func IsSaturationBoundExceededErr(err error) bool { return errors.Is(err, ErrSaturationBoundExceeded) }

// IsCyclicRelationGraphErr returns true if err is or wraps ErrCyclicRelationGraph.
func IsCyclicRelationGraphErr(err error) bool { return errors.Is(err, ErrCyclicRelationGraph) }

// Package ruleset implements schema-driven admission filtering and
// fixpoint saturation of relational triples: the rewrite layer that sits
// above the reachability index and decides what a single asserted triple
// actually implies.
package ruleset

import (
	"fmt"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/pattern"
)

// defaultMaxSaturationSize bounds the number of distinct triples a single
// Expand call may produce before it gives up and reports
// ErrSaturationBoundExceeded. Chosen generously above any legitimate
// schema's fan-out; see WithMaxSaturationSize to raise or lower it.
const defaultMaxSaturationSize = 10_000

// RuleSet is an admission filter list plus a rewrite-rule list: together
// they decide, for a single asserted triple, whether it is legal under the
// schema at all, and what the full set of implied triples is.
type RuleSet struct {
	filters           []pattern.Filter
	rules             []pattern.Rule
	maxSaturationSize int
}

// Option configures a RuleSet.
type Option func(*RuleSet)

// WithMaxSaturationSize overrides the default saturation bound.
func WithMaxSaturationSize(n int) Option {
	return func(rs *RuleSet) {
		rs.maxSaturationSize = n
	}
}

// New builds a RuleSet from a schema's admission filters and rewrite rules.
func New(filters []pattern.Filter, rules []pattern.Rule, opts ...Option) *RuleSet {
	rs := &RuleSet{
		filters:           filters,
		rules:             rules,
		maxSaturationSize: defaultMaxSaturationSize,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Admits reports whether t is admissible under any of the schema's filters.
func (rs *RuleSet) Admits(t entity.RelationalTriple) bool {
	for _, f := range rs.filters {
		if f.Admits(t) {
			return true
		}
	}
	return false
}

// Expand computes the fixpoint closure of t under every rule in the
// RuleSet: starting from {t}, it repeatedly applies every rule to every
// unprocessed triple and adds new results to an explicit worklist, stopping
// when no new triple is produced. Processing is iterative, never recursive,
// per the design's "no session-passing recursion" guidance, and the
// worklist's set semantics make the result independent of processing order
// (L2/L4 in the design notes).
//
// Expand first checks that t is admissible; callers that already know this
// (e.g. the facade re-expanding an already-written triple) can skip the
// check by calling ExpandAdmitted.
func (rs *RuleSet) Expand(t entity.RelationalTriple) ([]entity.RelationalTriple, error) {
	if !rs.Admits(t) {
		return nil, fmt.Errorf("%w: %+v", ErrTripleNotAdmissible, t)
	}
	return rs.ExpandAdmitted(t)
}

// ExpandAdmitted computes the fixpoint closure of t without re-checking
// admissibility.
func (rs *RuleSet) ExpandAdmitted(t entity.RelationalTriple) ([]entity.RelationalTriple, error) {
	seen := map[entity.RelationalTriple]struct{}{t: {}}
	worklist := []entity.RelationalTriple{t}

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]

		for _, rule := range rs.rules {
			implied, ok := rule.Apply(current)
			if !ok {
				continue
			}
			if _, dup := seen[implied]; dup {
				continue
			}
			if len(seen) >= rs.maxSaturationSize {
				return nil, fmt.Errorf("%w: exceeded %d triples expanding %+v", ErrSaturationBoundExceeded, rs.maxSaturationSize, t)
			}
			seen[implied] = struct{}{}
			worklist = append(worklist, implied)
		}
	}

	out := make([]entity.RelationalTriple, 0, len(seen))
	for triple := range seen {
		out = append(out, triple)
	}
	return out, nil
}

// Filters returns the RuleSet's admission filters.
func (rs *RuleSet) Filters() []pattern.Filter {
	return rs.filters
}

// Rules returns the RuleSet's rewrite rules.
func (rs *RuleSet) Rules() []pattern.Rule {
	return rs.rules
}

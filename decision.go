package relgraph

import "context"

// Decision allows bypassing the reachability check for admin tools and
// tests. Decisions are set at Service construction time via WithDecision,
// making the bypass explicit and visible in code.
type Decision int

type decisionCtxKey struct{}

const (
	// DecisionUnset means no override - perform the normal reachability check.
	DecisionUnset Decision = iota

	// DecisionAllow bypasses the check and always returns true (allowed).
	// Use for admin tools, background jobs, or testing authorized code paths.
	DecisionAllow

	// DecisionDeny bypasses the check and always returns false (denied).
	// Use for testing unauthorized code paths without populating the index.
	DecisionDeny
)

// WithDecisionContext returns a new context carrying the given decision.
// This lets decision overrides flow through context rather than requiring
// explicit Service construction.
//
// Prefer the WithDecision option for explicit control. Use context-based
// decisions when the override needs to propagate through layers where
// passing a Service instance is impractical.
//
// Note: Service.Check does NOT automatically consult this context value
// unless the Service was built with WithContextDecision.
func WithDecisionContext(ctx context.Context, decision Decision) context.Context {
	return context.WithValue(ctx, decisionCtxKey{}, decision)
}

// GetDecisionContext retrieves the decision from context, or DecisionUnset
// if none is set.
func GetDecisionContext(ctx context.Context) Decision {
	if decision, ok := ctx.Value(decisionCtxKey{}).(Decision); ok {
		return decision
	}
	return DecisionUnset
}

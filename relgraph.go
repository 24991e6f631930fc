// Package relgraph provides an in-memory, incrementally maintained
// reachability index for Zanzibar/OpenFGA-style fine-grained authorization.
//
// # Core Concepts
//
// Callers assert RelationalTriples (object#relation@subject), the
// fundamental Zanzibar relationship tuple:
//
//	triple := entity.NewTriple(
//		entity.Entity{Type: "user", Name: "alice"},
//		"writer",
//		entity.Entity{Type: "document", Name: "doc1"},
//	)
//
// A schema (a RuleSet of admission Filters and rewrite Rules) decides what
// a triple implies - e.g. that a writer is also a reader - and the facade
// expands every asserted triple into its full implied closure before
// inserting it into the reachability index.
//
// # Basic Usage
//
//	svc := relgraph.New(rules)
//	err := svc.Write(ctx, triple)
//	ok, err := svc.Check(ctx, entity.NewTriple(alice, "reader", doc1))
//
// # Caching
//
// Use WithCache for repeated checks:
//
//	cache := relgraph.NewCache(relgraph.WithTTL(time.Minute))
//	svc := relgraph.New(rules, relgraph.WithCache(cache))
//
// # Decision Overrides
//
// Use WithDecision for testing or admin tools:
//
//	svc := relgraph.New(rules, relgraph.WithDecision(relgraph.DecisionAllow))
//
// # Persistence
//
// For mirroring the index to PostgreSQL, see package store.
package relgraph

import (
	"context"
	"sync"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/reach"
	"github.com/pthm/relgraph/ruleset"
	"github.com/pthm/relgraph/store"
)

// Service is the authorization facade: a reachability index generalized by
// a schema's rewrite rules. It is safe for concurrent use; reads
// (Check/ListReachable/ListReverse/Resync) take a shared lock, writes
// (Write/Delete) take an exclusive one, per the concurrency model's
// readers-writer discipline. Expand reads only the RuleSet and takes no
// lock.
//
// Services are lightweight and typically constructed once per process: all
// state lives in the wrapped index, not in any external connection.
type Service struct {
	mu    sync.RWMutex
	index *reach.ReachabilityIndex
	rules *ruleset.RuleSet

	cache              Cache
	decision           Decision
	useContextDecision bool
	mirror             *store.Mirror
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables caching of Check results. Caching is safe across
// goroutines but scoped to a single Service instance.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithDecision sets a decision override that bypasses the index entirely.
// Use DecisionAllow for admin tools or testing authorized paths, and
// DecisionDeny for testing unauthorized paths without populating the graph.
func WithDecision(d Decision) Option {
	return func(s *Service) {
		s.decision = d
	}
}

// WithContextDecision enables context-based decision overrides: when
// enabled, Check consults GetDecisionContext(ctx) before querying the
// index. Decision precedence when enabled is (1) context decision, (2)
// Service-level decision, (3) index check. Disabled by default so a
// context value can never silently change authorization outcomes.
func WithContextDecision() Option {
	return func(s *Service) {
		s.useContextDecision = true
	}
}

// WithStore configures a persistence mirror: after every successful Write
// or Delete, the full index state is pushed to PostgreSQL inside one
// transaction via mirror.Sync, per spec.md §6. A Service with no mirror
// configured runs in-memory only; mirror errors surface from Write/Delete
// alongside the in-memory mutation they describe, so a failing sync never
// silently diverges from what the caller believes happened (the in-memory
// index has already committed the change by the time Sync runs - the
// mirror is a best-effort shadow, not a two-phase commit participant).
func WithStore(mirror *store.Mirror) Option {
	return func(s *Service) {
		s.mirror = mirror
	}
}

// WithExplicitNodes pins the given nodes as explicit at construction time,
// so they survive Delete bringing their reference count to zero instead of
// being treated as garbage. See ReachabilityIndex.MarkExplicit.
func WithExplicitNodes(nodes ...entity.Node) Option {
	return func(s *Service) {
		for _, n := range nodes {
			s.index.MarkExplicit(n)
		}
	}
}

// New builds a Service around a fresh, empty reachability index generalized
// by rules.
func New(rules *ruleset.RuleSet, opts ...Option) *Service {
	s := &Service{
		index:    reach.New(),
		rules:    rules,
		decision: DecisionUnset,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write expands triple through the RuleSet and inserts every implied edge
// into the index. If triple is not admissible under the schema, or
// saturation diverges, the index is left unchanged. If inserting an implied
// edge would create a cycle, every edge already inserted by this call is
// rolled back before the error is returned, so a failing Write never leaves
// the index partially mutated.
func (s *Service) Write(ctx context.Context, triple entity.RelationalTriple) error {
	implied, err := s.rules.Expand(triple)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var applied []entity.Edge
	for _, t := range implied {
		from, to := entity.ToEdge(t)
		if err := s.index.AddEdge(from, to); err != nil {
			for i := len(applied) - 1; i >= 0; i-- {
				_ = s.index.RemoveEdge(applied[i].From, applied[i].To)
			}
			return err
		}
		applied = append(applied, entity.Edge{From: from, To: to})
	}

	s.invalidateCache()
	return s.syncStore(ctx)
}

// Delete expands triple through the RuleSet and removes every implied edge
// from the index. If any implied edge is not actually present, every edge
// already removed by this call is restored before the error is returned.
func (s *Service) Delete(ctx context.Context, triple entity.RelationalTriple) error {
	implied, err := s.rules.Expand(triple)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []entity.Edge
	for _, t := range implied {
		from, to := entity.ToEdge(t)
		if err := s.index.RemoveEdge(from, to); err != nil {
			for i := len(removed) - 1; i >= 0; i-- {
				_ = s.index.AddEdge(removed[i].From, removed[i].To)
			}
			return err
		}
		removed = append(removed, entity.Edge{From: from, To: to})
	}

	s.invalidateCache()
	return s.syncStore(ctx)
}

// Check reports whether triple's subject can reach its object in the
// index: node_from in paths_inv[node_to]. Decision overrides and the cache
// are consulted, in that order, before the index itself.
func (s *Service) Check(ctx context.Context, triple entity.RelationalTriple) (bool, error) {
	if s.useContextDecision {
		if d := GetDecisionContext(ctx); d != DecisionUnset {
			return d == DecisionAllow, nil
		}
	}
	if s.decision != DecisionUnset {
		return s.decision == DecisionAllow, nil
	}

	if s.cache != nil {
		if allowed, found := s.cache.Get(triple); found {
			return allowed, nil
		}
	}

	from, to := entity.ToEdge(triple)

	s.mu.RLock()
	allowed := s.index.Check(from, to)
	s.mu.RUnlock()

	if s.cache != nil {
		s.cache.Set(triple, allowed)
	}
	return allowed, nil
}

// Expand returns the schema-implied closure of triple, for debugging. It
// does not touch the index.
func (s *Service) Expand(triple entity.RelationalTriple) ([]entity.RelationalTriple, error) {
	return s.rules.Expand(triple)
}

// ListReachable returns every node reachable from subject.
func (s *Service) ListReachable(subject entity.Node) []entity.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.ListReachable(subject)
}

// ListReverse returns every node that can reach object.
func (s *Service) ListReverse(object entity.Node) []entity.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.ListReverse(object)
}

// Resync forces a full push of the current index state to the configured
// persistence mirror, bypassing the normal "sync after every write/delete"
// path. Useful after a batch of operations made with a store temporarily
// unavailable, or to repair drift after an external change to the mirrored
// tables. Returns ErrStoreRequired if the Service has no store configured.
func (s *Service) Resync(ctx context.Context) error {
	if s.mirror == nil {
		return ErrStoreRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirror.Sync(ctx, s.index)
}

// invalidateCache clears the Service's cache after a write/delete, if it is
// the built-in *CacheImpl. A custom Cache implementation is responsible for
// its own invalidation strategy (e.g. a short TTL), since this package has
// no way to know how to selectively invalidate an arbitrary implementation.
func (s *Service) invalidateCache() {
	if impl, ok := s.cache.(*CacheImpl); ok {
		impl.Clear()
	}
}

// syncStore pushes the current index state to the configured persistence
// mirror, if any. Called with s.mu already held by Write/Delete.
func (s *Service) syncStore(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	return s.mirror.Sync(ctx, s.index)
}

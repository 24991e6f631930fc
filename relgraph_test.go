package relgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pthm/relgraph"
	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/pattern"
	"github.com/pthm/relgraph/ruleset"
)

func docSchema() *ruleset.RuleSet {
	filters := []pattern.Filter{
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader"), ObjectType: pattern.Exact("document")}},
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("writer"), ObjectType: pattern.Exact("document")}},
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("member"), ObjectType: pattern.Exact("group")}},
	}
	rules := []pattern.Rule{
		{
			If:   pattern.RelationalTriplePattern{Relation: pattern.Exact("writer"), ObjectType: pattern.Exact("document")},
			Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader"), ObjectType: pattern.Exact("document")},
		},
	}
	return ruleset.New(filters, rules)
}

func TestWriterImpliesReaderThroughService(t *testing.T) {
	svc := relgraph.New(docSchema())
	ctx := context.Background()

	alice := entity.Entity{Type: "user", Name: "alice"}
	doc1 := entity.Entity{Type: "document", Name: "doc1"}

	require.NoError(t, svc.Write(ctx, entity.NewTriple(alice, "writer", doc1)))

	ok, err := svc.Check(ctx, entity.NewTriple(alice, "reader", doc1))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Check(ctx, entity.NewTriple(alice, "writer", doc1))
	require.NoError(t, err)
	require.True(t, ok)
}

func groupChainingSchema() *ruleset.RuleSet {
	// No rewrite rule is needed for userset chaining itself: folding the
	// subject predicate into node identity (see package entity) means the
	// index's own transitive closure already connects alice through
	// group:g1#member to document:doc1#writer once both triples are
	// written. The schema only needs to admit the two triple shapes.
	filters := []pattern.Filter{
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("member"), ObjectType: pattern.Exact("group")}},
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("writer"), ObjectType: pattern.Exact("document")}},
	}
	return ruleset.New(filters, nil)
}

func TestGroupChainingThroughService(t *testing.T) {
	svc := relgraph.New(groupChainingSchema())
	ctx := context.Background()

	alice := entity.Entity{Type: "user", Name: "alice"}
	g1 := entity.Entity{Type: "group", Name: "g1"}
	doc1 := entity.Entity{Type: "document", Name: "doc1"}

	require.NoError(t, svc.Write(ctx, entity.NewTriple(alice, "member", g1)))
	require.NoError(t, svc.Write(ctx, entity.NewUsersetTriple(g1, "member", "writer", doc1)))

	ok, err := svc.Check(ctx, entity.NewTriple(alice, "writer", doc1))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Delete(ctx, entity.NewTriple(alice, "member", g1)))

	ok, err = svc.Check(ctx, entity.NewTriple(alice, "writer", doc1))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecisionOverrideBypassesIndex(t *testing.T) {
	svc := relgraph.New(docSchema(), relgraph.WithDecision(relgraph.DecisionAllow))
	ctx := context.Background()

	alice := entity.Entity{Type: "user", Name: "alice"}
	doc1 := entity.Entity{Type: "document", Name: "doc1"}

	ok, err := svc.Check(ctx, entity.NewTriple(alice, "reader", doc1))
	require.NoError(t, err)
	require.True(t, ok) // never written, but decision override bypasses the index
}

func TestContextDecisionOverride(t *testing.T) {
	svc := relgraph.New(docSchema(), relgraph.WithContextDecision())
	ctx := relgraph.WithDecisionContext(context.Background(), relgraph.DecisionDeny)

	alice := entity.Entity{Type: "user", Name: "alice"}
	doc1 := entity.Entity{Type: "document", Name: "doc1"}

	require.NoError(t, svc.Write(context.Background(), entity.NewTriple(alice, "writer", doc1)))

	ok, err := svc.Check(ctx, entity.NewTriple(alice, "reader", doc1))
	require.NoError(t, err)
	require.False(t, ok) // context decision wins even though the triple was written
}

func TestCacheServesRepeatedChecks(t *testing.T) {
	cache := relgraph.NewCache()
	svc := relgraph.New(docSchema(), relgraph.WithCache(cache))
	ctx := context.Background()

	alice := entity.Entity{Type: "user", Name: "alice"}
	doc1 := entity.Entity{Type: "document", Name: "doc1"}

	require.NoError(t, svc.Write(ctx, entity.NewTriple(alice, "writer", doc1)))

	_, err := svc.Check(ctx, entity.NewTriple(alice, "reader", doc1))
	require.NoError(t, err)
	require.Equal(t, 1, cache.Size())

	// A subsequent write invalidates the cache.
	bob := entity.Entity{Type: "user", Name: "bob"}
	require.NoError(t, svc.Write(ctx, entity.NewTriple(bob, "writer", doc1)))
	require.Equal(t, 0, cache.Size())
}

func TestWriteRejectsCycleAndLeavesIndexUnchanged(t *testing.T) {
	// Two userset triples whose node pairs are exact reverses of each
	// other: node_from(t1) == node_to(t2) and node_to(t1) == node_from(t2),
	// since both sides use a named subject predicate instead of the default
	// SelfRef. This is the one shape in this data model where two triples
	// can collide into the same edge in opposite directions.
	filters := []pattern.Filter{{If: pattern.RelationalTriplePattern{}}}
	svc := relgraph.New(ruleset.New(filters, nil))
	ctx := context.Background()

	a := entity.Entity{Type: "group", Name: "a"}
	b := entity.Entity{Type: "group", Name: "b"}

	require.NoError(t, svc.Write(ctx, entity.NewUsersetTriple(a, "p", "q", b)))

	err := svc.Write(ctx, entity.NewUsersetTriple(b, "q", "p", a))
	require.True(t, relgraph.IsCycleErr(err))

	// the one legitimate edge survives
	ok, err := svc.Check(ctx, entity.NewUsersetTriple(a, "p", "q", b))
	require.NoError(t, err)
	require.True(t, ok)
}

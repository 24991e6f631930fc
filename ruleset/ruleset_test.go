package ruleset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/pattern"
	"github.com/pthm/relgraph/ruleset"
)

func writerTriple() entity.RelationalTriple {
	return entity.NewTriple(
		entity.Entity{Type: "user", Name: "alice"}, "writer", entity.Entity{Type: "document", Name: "doc1"},
	)
}

func TestWriterImpliesReader(t *testing.T) {
	filters := []pattern.Filter{
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader"), ObjectType: pattern.Exact("document")}},
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("writer"), ObjectType: pattern.Exact("document")}},
	}
	rules := []pattern.Rule{
		{
			If:   pattern.RelationalTriplePattern{Relation: pattern.Exact("writer")},
			Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader")},
		},
	}
	rs := ruleset.New(filters, rules)

	implied, err := rs.Expand(writerTriple())
	require.NoError(t, err)
	require.Len(t, implied, 2)

	var relations []string
	for _, tr := range implied {
		relations = append(relations, tr.Relation)
	}
	require.ElementsMatch(t, []string{"writer", "reader"}, relations)
}

func TestTripleNotAdmissible(t *testing.T) {
	rs := ruleset.New(nil, nil)
	_, err := rs.Expand(writerTriple())
	require.True(t, ruleset.IsTripleNotAdmissibleErr(err))
}

func TestMemberRuleImpliesWriter(t *testing.T) {
	filters := []pattern.Filter{
		{If: pattern.RelationalTriplePattern{}}, // admit everything for this test
	}
	rules := []pattern.Rule{
		{
			// member implies writer: the rule rewrites only the relation, so
			// alice as a member of group:eng also becomes a writer of
			// group:eng.
			If:   pattern.RelationalTriplePattern{Relation: pattern.Exact("member")},
			Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("writer")},
		},
	}
	rs := ruleset.New(filters, rules)

	memberTriple := entity.NewTriple(
		entity.Entity{Type: "user", Name: "alice"}, "member", entity.Entity{Type: "group", Name: "eng"},
	)
	implied, err := rs.Expand(memberTriple)
	require.NoError(t, err)

	var found bool
	for _, tr := range implied {
		if tr.Relation == "writer" {
			found = true
		}
	}
	require.True(t, found)
}

func TestExpandIsOrderIndependentAndIdempotent(t *testing.T) {
	filters := []pattern.Filter{{If: pattern.RelationalTriplePattern{}}}
	rules := []pattern.Rule{
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("writer")}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader")}},
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader")}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("viewer")}},
	}
	rs1 := ruleset.New(filters, []pattern.Rule{rules[0], rules[1]})
	rs2 := ruleset.New(filters, []pattern.Rule{rules[1], rules[0]})

	a, err := rs1.Expand(writerTriple())
	require.NoError(t, err)
	b, err := rs2.Expand(writerTriple())
	require.NoError(t, err)
	require.ElementsMatch(t, a, b)

	// L4: expand(expand(t)) == expand(t) as sets, for every triple already
	// produced by the first expansion.
	for _, tr := range a {
		again, err := rs1.Expand(tr)
		require.NoError(t, err)
		require.ElementsMatch(t, a, again)
	}
}

func TestSaturationBoundExceeded(t *testing.T) {
	filters := []pattern.Filter{{If: pattern.RelationalTriplePattern{}}}
	// A rule that keeps widening the object name is not representable with
	// this package's pattern substitution (Replace only ever narrows), so we
	// instead force the bound artificially low to exercise the guard.
	rules := []pattern.Rule{
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("writer")}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader")}},
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader")}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("viewer")}},
	}
	rs := ruleset.New(filters, rules, ruleset.WithMaxSaturationSize(1))
	_, err := rs.Expand(writerTriple())
	require.True(t, ruleset.IsSaturationBoundExceededErr(err))
}

func TestValidateRulesDetectsCycle(t *testing.T) {
	rules := []pattern.Rule{
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("a")}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("b")}},
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("b")}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("a")}},
	}
	err := ruleset.ValidateRules(rules)
	require.True(t, ruleset.IsCyclicRelationGraphErr(err))
}

func TestValidateRulesAllowsSameRelationRecursion(t *testing.T) {
	rules := []pattern.Rule{
		{If: pattern.RelationalTriplePattern{Relation: pattern.Exact("member")}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("member")}},
	}
	require.NoError(t, ruleset.ValidateRules(rules))
}

func TestValidateRulesIgnoresWildcardRelations(t *testing.T) {
	rules := []pattern.Rule{
		{If: pattern.RelationalTriplePattern{}, Then: pattern.RelationalTriplePattern{Relation: pattern.Exact("reader")}},
	}
	require.NoError(t, ruleset.ValidateRules(rules))
}

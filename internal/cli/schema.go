package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm/relgraph/pattern"
	"github.com/pthm/relgraph/ruleset"
)

// fieldJSON is the on-disk shape of a pattern.Field: nil means Any, a
// non-nil pointer (including to "") means Exact(*value). A plain string
// field would conflate an absent field with one pinned to "", which is
// exactly the distinction pattern.Field exists to preserve, so this format
// mirrors that with a pointer instead of collapsing it.
type fieldJSON *string

// triplePatternJSON is the on-disk shape of a pattern.RelationalTriplePattern.
type triplePatternJSON struct {
	SubjectType      fieldJSON `json:"subject_type,omitempty"`
	SubjectName      fieldJSON `json:"subject_name,omitempty"`
	Relation         fieldJSON `json:"relation,omitempty"`
	ObjectType       fieldJSON `json:"object_type,omitempty"`
	ObjectName       fieldJSON `json:"object_name,omitempty"`
	SubjectPredicate fieldJSON `json:"subject_predicate,omitempty"`
}

func toField(f fieldJSON) pattern.Field {
	if f == nil {
		return pattern.Any
	}
	return pattern.Exact(*f)
}

func (t triplePatternJSON) toPattern() pattern.RelationalTriplePattern {
	return pattern.RelationalTriplePattern{
		SubjectType:      toField(t.SubjectType),
		SubjectName:      toField(t.SubjectName),
		Relation:         toField(t.Relation),
		ObjectType:       toField(t.ObjectType),
		ObjectName:       toField(t.ObjectName),
		SubjectPredicate: toField(t.SubjectPredicate),
	}
}

// ruleJSON is the on-disk shape of one pattern.Rule.
type ruleJSON struct {
	If   triplePatternJSON `json:"if"`
	Then triplePatternJSON `json:"then"`
}

// RuleFile is the schema file format relgraphctl loads: the admission
// filters and rewrite rules a RuleSet needs, already resolved from whatever
// DSL a real deployment's schema compiler would produce. Schema text
// parsing (an OpenFGA-dialect DSL) is an explicit collaborator this
// repository does not implement; this format is simply a JSON
// serialization of the []Filter/[]Rule shape the facade consumes directly.
type RuleFile struct {
	Filters []triplePatternJSON `json:"filters"`
	Rules   []ruleJSON          `json:"rules"`
}

// LoadRuleSet reads path as a RuleFile and builds a *ruleset.RuleSet from
// it, rejecting a cyclic relation graph up front via ruleset.ValidateRules.
func LoadRuleSet(path string) (*ruleset.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}

	var rf RuleFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
	}

	filters := make([]pattern.Filter, 0, len(rf.Filters))
	for _, f := range rf.Filters {
		filters = append(filters, pattern.Filter{If: f.toPattern()})
	}

	rules := make([]pattern.Rule, 0, len(rf.Rules))
	for _, r := range rf.Rules {
		rules = append(rules, pattern.Rule{If: r.If.toPattern(), Then: r.Then.toPattern()})
	}

	if err := ruleset.ValidateRules(rules); err != nil {
		return nil, SchemaParseError(fmt.Sprintf("rule file %s", path), err)
	}

	return ruleset.New(filters, rules), nil
}

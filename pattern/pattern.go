// Package pattern implements wildcard matching and substitution over
// entities and relational triples, the building blocks the ruleset package
// uses to express schema admission filters and rewrite rules.
//
// Every pattern field is a Field: either Any (matches/passes through
// anything) or Exact(value). This sum type exists so an absent field can
// never be confused with a field explicitly pinned to the empty string.
package pattern

import "github.com/pthm/relgraph/entity"

// Field is a pattern field: either wildcard (Any) or pinned to a specific
// value (Exact). The zero value is Any, so a zero-valued pattern matches
// everything, mirroring the source's "all fields default to ellipsis"
// convention.
type Field struct {
	exact bool
	value string
}

// Any is the wildcard field value.
var Any = Field{}

// Exact returns a Field pinned to value.
func Exact(value string) Field {
	return Field{exact: true, value: value}
}

// IsAny reports whether f is the wildcard.
func (f Field) IsAny() bool {
	return !f.exact
}

// Value returns the pinned value and true, or ("", false) if f is Any.
func (f Field) Value() (string, bool) {
	return f.value, f.exact
}

// matches reports whether f matches the concrete string s. Any matches
// anything.
func (f Field) matches(s string) bool {
	return !f.exact || f.value == s
}

// replace returns f's value if pinned, else s unchanged.
func (f Field) replace(s string) string {
	if f.exact {
		return f.value
	}
	return s
}

// EntityPattern matches and substitutes on an entity's type/name.
type EntityPattern struct {
	Type Field
	Name Field
}

// Match reports whether every non-wildcard field of p equals the
// corresponding field of e. Entity-name wildcard-ness must agree between
// pattern and entity: a pattern pinned to a concrete name must not match an
// entity literally named "*", and a pattern pinned to "*" must not match a
// concrete entity. Without this check a "member of everyone" grant
// (subject name "*") would spuriously match every individual user.
func (p EntityPattern) Match(e entity.Entity) bool {
	if !p.Type.matches(e.Type) {
		return false
	}
	if name, pinned := p.Name.Value(); pinned {
		if entity.IsWildcardName(name) != entity.IsWildcardName(e.Name) {
			return false
		}
		if name != e.Name {
			return false
		}
	}
	return true
}

// Replace returns a new entity with every pinned field of p overriding e's
// field; wildcard fields pass e's value through unchanged.
func (p EntityPattern) Replace(e entity.Entity) entity.Entity {
	return entity.Entity{
		Type: p.Type.replace(e.Type),
		Name: p.Name.replace(e.Name),
	}
}

// RelationalTriplePattern matches and substitutes on a RelationalTriple.
// SubjectPredicate is matched/replaced as its string form: Exact("...")
// pins to entity.SelfRef, any other Exact value pins to a NamedPredicate.
type RelationalTriplePattern struct {
	SubjectType      Field
	SubjectName      Field
	Relation         Field
	ObjectType       Field
	ObjectName       Field
	SubjectPredicate Field
}

// Subject returns the EntityPattern implied by the subject-type/name
// fields.
func (p RelationalTriplePattern) Subject() EntityPattern {
	return EntityPattern{Type: p.SubjectType, Name: p.SubjectName}
}

// Object returns the EntityPattern implied by the object-type/name fields.
func (p RelationalTriplePattern) Object() EntityPattern {
	return EntityPattern{Type: p.ObjectType, Name: p.ObjectName}
}

// Match returns true iff every non-wildcard field of p equals the
// corresponding field of t.
func (p RelationalTriplePattern) Match(t entity.RelationalTriple) bool {
	if !p.matchPredicate(t.SubjectPredicate) {
		return false
	}
	if !p.Subject().Match(t.Subject) {
		return false
	}
	if !p.Relation.matches(t.Relation) {
		return false
	}
	if !p.Object().Match(t.Object) {
		return false
	}
	return true
}

func (p RelationalTriplePattern) matchPredicate(pred entity.Predicate) bool {
	want, pinned := p.SubjectPredicate.Value()
	if !pinned {
		return true
	}
	if pred == nil {
		pred = entity.SelfRef{}
	}
	return pred.String() == want
}

// Replace returns a new triple where every pinned pattern field overrides
// the triple's field; wildcard fields pass through.
func (p RelationalTriplePattern) Replace(t entity.RelationalTriple) entity.RelationalTriple {
	out := entity.RelationalTriple{
		Subject:          p.Subject().Replace(t.Subject),
		Relation:         p.Relation.replace(t.Relation),
		Object:           p.Object().Replace(t.Object),
		SubjectPredicate: t.SubjectPredicate,
	}
	if out.SubjectPredicate == nil {
		out.SubjectPredicate = entity.SelfRef{}
	}
	if val, pinned := p.SubjectPredicate.Value(); pinned {
		if val == (entity.SelfRef{}).String() {
			out.SubjectPredicate = entity.SelfRef{}
		} else {
			out.SubjectPredicate = entity.NamedPredicate(val)
		}
	}
	return out
}

// Filter is a unary predicate over triples, used by ruleset to decide
// whether an asserted triple is admissible under the schema at all.
type Filter struct {
	If RelationalTriplePattern
}

// Admits reports whether t is admitted by f.
func (f Filter) Admits(t entity.RelationalTriple) bool {
	return f.If.Match(t)
}

// Rule is an if/then partial function: if If matches a triple, Apply yields
// Then.Replace(triple); otherwise Apply yields nothing.
type Rule struct {
	If   RelationalTriplePattern
	Then RelationalTriplePattern
}

// Apply returns the rewritten triple and true if If matches t, or the zero
// triple and false otherwise.
func (r Rule) Apply(t entity.RelationalTriple) (entity.RelationalTriple, bool) {
	if !r.If.Match(t) {
		return entity.RelationalTriple{}, false
	}
	return r.Then.Replace(t), true
}

// Package entity defines the data model shared by the rewrite layer and the
// reachability index: typed entities, relational triples, and the graph
// vertices a triple is mapped to.
//
// The literal entity name "*" is a wildcard recognized only by the rewrite
// layer (see package pattern); the index itself never interprets it.
package entity

import "cmp"

// WildcardName is the literal entity name denoting "everyone" in a schema,
// e.g. user:*. It is meaningful only to the rewrite layer.
const WildcardName = "*"

// IsWildcardName reports whether name is the wildcard literal.
func IsWildcardName(name string) bool {
	return name == WildcardName
}

// Entity is an immutable, totally ordered, hashable typed identifier, such
// as user:alice or document:doc1.
type Entity struct {
	Type string
	Name string
}

// Compare orders entities by (Type, Name), matching the "totally ordered by
// (type, name)" requirement.
func (e Entity) Compare(other Entity) int {
	if c := cmp.Compare(e.Type, other.Type); c != 0 {
		return c
	}
	return cmp.Compare(e.Name, other.Name)
}

// String returns the canonical "type:name" representation.
func (e Entity) String() string {
	return e.Type + ":" + e.Name
}

// Predicate is a sum type over "the subject is itself" (SelfRef) and "the
// subject is a named sub-relation of the subject entity" (NamedPredicate),
// e.g. group:eng#member. Implemented as an interface with a private marker
// method rather than a magic sentinel string, per the tagged-variant design
// this module favors over "..." as a string value.
type Predicate interface {
	predicate()
	String() string
}

// SelfRef is the distinguished predicate meaning "the subject is the entity
// itself, not a subset of it". It is the default RelationalTriple subject
// predicate.
type SelfRef struct{}

func (SelfRef) predicate()      {}
func (SelfRef) String() string { return "..." }

// NamedPredicate names a sub-relation of the subject entity, e.g. "member"
// in group:eng#member.
type NamedPredicate string

func (NamedPredicate) predicate()       {}
func (p NamedPredicate) String() string { return string(p) }

// RelationalTriple is Zanzibar's fundamental assertion:
// object#relation@subject[#predicate].
type RelationalTriple struct {
	Subject          Entity
	Relation         string
	Object           Entity
	SubjectPredicate Predicate // defaults to SelfRef{} when unset
}

// NewTriple builds a RelationalTriple whose subject predicate is SelfRef,
// the common case of "subject is directly related to object".
func NewTriple(subject Entity, relation string, object Entity) RelationalTriple {
	return RelationalTriple{Subject: subject, Relation: relation, Object: object, SubjectPredicate: SelfRef{}}
}

// NewUsersetTriple builds a RelationalTriple whose subject is a sub-relation
// of the subject entity, e.g. group:eng#member is a writer of document:b.
func NewUsersetTriple(subject Entity, subjectPredicate string, relation string, object Entity) RelationalTriple {
	return RelationalTriple{Subject: subject, Relation: relation, Object: object, SubjectPredicate: NamedPredicate(subjectPredicate)}
}

// predicateOrSelf normalizes a possibly-nil Predicate to SelfRef{}, so
// zero-valued RelationalTriples (built as struct literals without
// SubjectPredicate set) behave the same as ones built via NewTriple.
func predicateOrSelf(p Predicate) Predicate {
	if p == nil {
		return SelfRef{}
	}
	return p
}

// Node is the index's vertex type: an entity folded together with the
// relation or predicate that gave rise to it. The index never sees
// relations or predicates as edge labels directly — they are folded into
// vertex identity here, which is why Node (not Entity) is hashable and
// comparable the way the reach package requires.
type Node struct {
	Type      string
	Name      string
	Predicate Predicate
}

// String returns a debug-friendly representation of the node.
func (n Node) String() string {
	return n.Type + ":" + n.Name + "#" + n.Predicate.String()
}

// Node is comparable: every concrete Predicate this package defines
// (SelfRef, NamedPredicate) is itself comparable, so two Nodes compare
// equal by Go's ordinary interface-equality rule (same dynamic type, equal
// value) without any custom key-flattening. This lets package reach use
// Node directly as a map and MultiSet key.

// ToEdge maps a RelationalTriple to the two Nodes it connects in the
// reachability index, per the data model:
//
//	node_from = Node(subject.type, subject.name, subject_predicate)
//	node_to   = Node(object.type,  object.name,  relation)
func ToEdge(t RelationalTriple) (from, to Node) {
	from = Node{Type: t.Subject.Type, Name: t.Subject.Name, Predicate: predicateOrSelf(t.SubjectPredicate)}
	to = Node{Type: t.Object.Type, Name: t.Object.Name, Predicate: NamedPredicate(t.Relation)}
	return from, to
}

// Edge is an ordered pair of nodes, the reachability index's unlabeled edge
// identity. Edge is comparable for the same reason Node is.
type Edge struct {
	From Node
	To   Node
}

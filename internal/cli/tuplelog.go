package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm/relgraph/entity"
)

// tupleJSON is the on-disk shape of one asserted entity.RelationalTriple in
// the local tuple log relgraphctl uses to rebuild its in-memory index
// across invocations, since the index itself keeps no state between runs
// of the CLI and the optional store.Mirror is a write-only shadow, not a
// readable source of truth (see package store's doc comment).
type tupleJSON struct {
	SubjectType      string `json:"subject_type"`
	SubjectName      string `json:"subject_name"`
	Relation         string `json:"relation"`
	ObjectType       string `json:"object_type"`
	ObjectName       string `json:"object_name"`
	SubjectPredicate string `json:"subject_predicate,omitempty"` // "" means SelfRef
}

func toTupleJSON(t entity.RelationalTriple) tupleJSON {
	pred := ""
	if t.SubjectPredicate != nil {
		if _, self := t.SubjectPredicate.(entity.SelfRef); !self {
			pred = t.SubjectPredicate.String()
		}
	}
	return tupleJSON{
		SubjectType:      t.Subject.Type,
		SubjectName:      t.Subject.Name,
		Relation:         t.Relation,
		ObjectType:       t.Object.Type,
		ObjectName:       t.Object.Name,
		SubjectPredicate: pred,
	}
}

func (j tupleJSON) toTriple() entity.RelationalTriple {
	subject := entity.Entity{Type: j.SubjectType, Name: j.SubjectName}
	object := entity.Entity{Type: j.ObjectType, Name: j.ObjectName}
	if j.SubjectPredicate == "" {
		return entity.NewTriple(subject, j.Relation, object)
	}
	return entity.NewUsersetTriple(subject, j.SubjectPredicate, j.Relation, object)
}

// LoadTupleLog reads every asserted triple recorded at path, in insertion
// order. A missing file means an empty log, the usual state for a fresh
// demo session.
func LoadTupleLog(path string) ([]entity.RelationalTriple, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tuple log %s: %w", path, err)
	}

	var entries []tupleJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing tuple log %s: %w", path, err)
	}

	out := make([]entity.RelationalTriple, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.toTriple())
	}
	return out, nil
}

// SaveTupleLog overwrites path with triples, in the same format
// LoadTupleLog reads.
func SaveTupleLog(path string, triples []entity.RelationalTriple) error {
	entries := make([]tupleJSON, 0, len(triples))
	for _, t := range triples {
		entries = append(entries, toTupleJSON(t))
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tuple log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tuple log %s: %w", path, err)
	}
	return nil
}

// AppendTuple loads the log at path, appends t if not already present, and
// rewrites the file.
func AppendTuple(path string, t entity.RelationalTriple) error {
	existing, err := LoadTupleLog(path)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e == t {
			return nil
		}
	}
	return SaveTupleLog(path, append(existing, t))
}

// RemoveTuple loads the log at path, removes t if present, and rewrites the
// file.
func RemoveTuple(path string, t entity.RelationalTriple) error {
	existing, err := LoadTupleLog(path)
	if err != nil {
		return err
	}
	out := existing[:0]
	for _, e := range existing {
		if e != t {
			out = append(out, e)
		}
	}
	return SaveTupleLog(path, out)
}

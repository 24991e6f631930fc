package ruleset

import (
	"fmt"
	"strings"

	"github.com/pthm/relgraph/pattern"
)

// color represents the state of a relation during DFS cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // in current DFS path (cycle if revisited)
	black              // fully processed
)

// ValidateRules statically checks a rule list for a cyclic relation graph:
// an edge If.Relation -> Then.Relation for every rule whose relation fields
// are both pinned (wildcard relations can't be resolved to a single graph
// node and are skipped). A cycle here means every relation on it implies
// every other one. Saturation itself still terminates on such a rule list,
// since it dedups by the full triple; ValidateRules rejects it statically.
//
// A same-relation self-loop (If.Relation == Then.Relation) is not flagged:
// that is the ordinary shape of recursive chaining rules (e.g. "member of a
// group that is itself a member of another group"), which terminates
// because saturation dedups by the full triple, not by relation alone.
func ValidateRules(rules []pattern.Rule) error {
	graph := make(map[string]map[string]struct{})
	for _, r := range rules {
		from, fromPinned := r.If.Relation.Value()
		to, toPinned := r.Then.Relation.Value()
		if !fromPinned || !toPinned || from == to {
			continue
		}
		if graph[from] == nil {
			graph[from] = make(map[string]struct{})
		}
		graph[from][to] = struct{}{}
	}

	if cycle := detectCycle(graph); cycle != nil {
		return fmt.Errorf("%w: %s", ErrCyclicRelationGraph, strings.Join(cycle, " -> "))
	}
	return nil
}

func detectCycle(graph map[string]map[string]struct{}) []string {
	colors := make(map[string]color)
	parent := make(map[string]string)

	var dfs func(n string) []string
	dfs = func(n string) []string {
		colors[n] = gray
		for neighbor := range graph[n] {
			switch colors[neighbor] {
			case gray:
				return reconstructCycle(n, neighbor, parent)
			case white:
				parent[neighbor] = n
				if cycle := dfs(neighbor); cycle != nil {
					return cycle
				}
			}
		}
		colors[n] = black
		return nil
	}

	for n := range graph {
		if colors[n] == white {
			if cycle := dfs(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func reconstructCycle(from, to string, parent map[string]string) []string {
	cycle := []string{to}
	for n := from; n != to; n = parent[n] {
		cycle = append([]string{n}, cycle...)
	}
	cycle = append([]string{to}, cycle...)
	return cycle
}

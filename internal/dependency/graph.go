// Package dependency provides a small directed graph over test suite IDs to
// answer ordering queries and detect dependency cycles before a run starts.
package dependency

import (
	"fmt"
	"sort"
)

// Graph maps suite IDs to the IDs they depend on. Insertion order is
// preserved so cycle detection and topological sorts are deterministic.
// It is not thread-safe; callers must synchronise if they write concurrently.
type Graph struct {
	edges map[string][]string
	order []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// Add inserts (or replaces) a node with its dependency list.
func (g *Graph) Add(id string, dependsOn []string) {
	if _, exists := g.edges[id]; !exists {
		g.order = append(g.order, id)
	}
	deps := make([]string, len(dependsOn))
	copy(deps, dependsOn)
	g.edges[id] = deps
}

// Contains reports whether the node is in the graph.
func (g *Graph) Contains(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// Dependencies returns the immediate dependency IDs of a node.
func (g *Graph) Dependencies(id string) []string {
	deps := g.edges[id]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// UnknownRefs returns, per node, the dependency IDs that reference nodes not
// present in the graph. A plan cannot order unknown nodes, so callers treat
// these as validation errors.
func (g *Graph) UnknownRefs() map[string][]string {
	unknown := make(map[string][]string)
	for _, id := range g.order {
		for _, dep := range g.edges[id] {
			if !g.Contains(dep) {
				unknown[id] = append(unknown[id], dep)
			}
		}
	}
	return unknown
}

// FindCycle runs a depth-first traversal with a recursion stack over every
// unvisited start node and returns the first cycle it encounters as the path
// slice from the first occurrence of the revisited node to the current node,
// inclusive. It returns nil when the graph is acyclic. Only the first cycle
// is reported; the traversal does not enumerate every cycle.
func (g *Graph) FindCycle() []string {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		inStack[id] = true
		stack = append(stack, id)

		for _, dep := range g.edges[id] {
			if !g.Contains(dep) {
				continue // unknown refs are reported separately
			}
			if inStack[dep] {
				for i, node := range stack {
					if node == dep {
						cycle = append(append([]string{}, stack[i:]...), dep)
						return true
					}
				}
			}
			if !visited[dep] && visit(dep) {
				return true
			}
		}

		stack = stack[:len(stack)-1]
		inStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] && visit(id) {
			return cycle
		}
	}
	return nil
}

// TopoSort returns the node IDs in dependency order: every node appears after
// all of its dependencies. Ties are broken by the given priority function
// (lower first), then by insertion order. Fails if the graph has a cycle or
// unknown references.
func (g *Graph) TopoSort(priority func(id string) int) ([]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, fmt.Errorf("dependency cycle: %v", cycle)
	}
	if unknown := g.UnknownRefs(); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown dependency references: %v", unknown)
	}

	indegree := make(map[string]int, len(g.order))
	dependents := make(map[string][]string)
	for _, id := range g.order {
		indegree[id] = len(g.edges[id])
		for _, dep := range g.edges[id] {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	position := make(map[string]int, len(g.order))
	for i, id := range g.order {
		position[id] = i
	}

	var ready []string
	for _, id := range g.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	var sorted []string
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			pi, pj := priority(ready[i]), priority(ready[j])
			if pi != pj {
				return pi < pj
			}
			return position[ready[i]] < position[ready[j]]
		})
		next := ready[0]
		ready = ready[1:]
		sorted = append(sorted, next)

		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(sorted) != len(g.order) {
		return nil, fmt.Errorf("dependency graph is not a DAG")
	}
	return sorted, nil
}

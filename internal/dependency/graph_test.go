package dependency

import (
	"strings"
	"testing"
)

func TestFindCycleAcyclic(t *testing.T) {
	g := New()
	g.Add("a", nil)
	g.Add("b", []string{"a"})
	g.Add("c", []string{"a", "b"})

	if cycle := g.FindCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestFindCycleDirect(t *testing.T) {
	g := New()
	g.Add("a", []string{"b"})
	g.Add("b", []string{"a"})

	cycle := g.FindCycle()
	if cycle == nil {
		t.Fatal("expected a cycle")
	}
	joined := strings.Join(cycle, " -> ")
	if !strings.Contains(joined, "a") || !strings.Contains(joined, "b") {
		t.Errorf("cycle %v should mention both a and b", cycle)
	}
	// Path is inclusive: first and last node are the same.
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("cycle %v should start and end on the same node", cycle)
	}
}

func TestFindCycleSelfReference(t *testing.T) {
	g := New()
	g.Add("a", []string{"a"})

	cycle := g.FindCycle()
	if cycle == nil {
		t.Fatal("expected a self-reference cycle")
	}
	if len(cycle) != 2 || cycle[0] != "a" || cycle[1] != "a" {
		t.Errorf("cycle = %v, want [a a]", cycle)
	}
}

func TestFindCycleReportsFirstOnly(t *testing.T) {
	g := New()
	g.Add("a", []string{"b"})
	g.Add("b", []string{"a"})
	g.Add("c", []string{"d"})
	g.Add("d", []string{"c"})

	cycle := g.FindCycle()
	if cycle == nil {
		t.Fatal("expected a cycle")
	}
	joined := strings.Join(cycle, " ")
	if strings.Contains(joined, "c") || strings.Contains(joined, "d") {
		t.Errorf("first cycle should involve a/b, got %v", cycle)
	}
}

func TestFindCycleSkipsUnknownRefs(t *testing.T) {
	g := New()
	g.Add("a", []string{"ghost"})

	if cycle := g.FindCycle(); cycle != nil {
		t.Errorf("unknown refs must not produce cycles, got %v", cycle)
	}
	unknown := g.UnknownRefs()
	if len(unknown["a"]) != 1 || unknown["a"][0] != "ghost" {
		t.Errorf("UnknownRefs = %v", unknown)
	}
}

func TestTopoSort(t *testing.T) {
	g := New()
	g.Add("c", []string{"b"})
	g.Add("b", []string{"a"})
	g.Add("a", nil)

	order, err := g.TopoSort(func(string) int { return 0 })
	if err != nil {
		t.Fatalf("TopoSort failed: %v", err)
	}

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	if !(pos["a"] < pos["b"] && pos["b"] < pos["c"]) {
		t.Errorf("order %v violates dependencies", order)
	}
}

func TestTopoSortPriorityTieBreak(t *testing.T) {
	g := New()
	g.Add("low", nil)
	g.Add("high", nil)

	priorities := map[string]int{"low": 5, "high": 1}
	order, err := g.TopoSort(func(id string) int { return priorities[id] })
	if err != nil {
		t.Fatalf("TopoSort failed: %v", err)
	}
	if order[0] != "high" {
		t.Errorf("order %v, want high first", order)
	}
}

func TestTopoSortRejectsCycle(t *testing.T) {
	g := New()
	g.Add("a", []string{"b"})
	g.Add("b", []string{"a"})

	if _, err := g.TopoSort(func(string) int { return 0 }); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

package rgraph

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestAddEdgeBothDirections(t *testing.T) {
	g := NewGraph()
	a := wire(1, 1, "A")
	b := wire(1, 1, "B")
	g.AddEdge(a, b)

	if len(g.Fwd) != 1 || !g.Fwd[a].Has(b) {
		t.Errorf("forward adjacency should contain exactly A -> {B}")
	}
	if len(g.Rev) != 1 || !g.Rev[b].Has(a) {
		t.Errorf("reverse adjacency should contain exactly B -> {A}")
	}
	if !g.HasIncoming(b) {
		t.Errorf("B should have an incoming edge")
	}
	if g.HasIncoming(a) {
		t.Errorf("A should not have an incoming edge")
	}
}

func TestAddEdgeCollapsesDuplicates(t *testing.T) {
	g := NewGraph()
	a := wire(1, 1, "A")
	b := wire(1, 1, "B")
	g.AddEdge(a, b)
	g.AddEdge(a, b)

	if len(g.Fwd[a]) != 1 {
		t.Errorf("duplicate edges should collapse, got %d sinks", len(g.Fwd[a]))
	}
}

func TestComponents(t *testing.T) {
	g := NewGraph()
	// Two separate chains: A -> B -> C and X -> Y.
	g.AddEdge(wire(1, 1, "A"), wire(1, 1, "B"))
	g.AddEdge(wire(1, 1, "B"), wire(1, 1, "C"))
	g.AddEdge(wire(5, 5, "X"), wire(5, 5, "Y"))

	comps := g.Components()
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d", len(comps))
	}
	if len(comps[0].Nodes) != 3 {
		t.Errorf("first component should have 3 nodes, got %d", len(comps[0].Nodes))
	}
	if len(comps[1].Nodes) != 2 {
		t.Errorf("second component should have 2 nodes, got %d", len(comps[1].Nodes))
	}
}

func TestComponentsUndirected(t *testing.T) {
	g := NewGraph()
	// A -> B <- C: connected despite opposing directions.
	g.AddEdge(wire(1, 1, "A"), wire(1, 1, "B"))
	g.AddEdge(wire(1, 1, "C"), wire(1, 1, "B"))

	comps := g.Components()
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}
}

func TestRootsAndLeaves(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	g := NewGraph()
	a := wire(1, 1, "A")
	b := wire(1, 1, "B")
	c := wire(1, 1, "C")
	d := wire(1, 1, "D")
	// A -> B -> D, C -> B.
	g.AddEdge(a, b)
	g.AddEdge(b, d)
	g.AddEdge(c, b)

	comps := g.Components()
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}

	roots := comps[0].Roots(log)
	if len(roots) != 2 || !roots.Has(a) || !roots.Has(c) {
		t.Errorf("expected roots {A, C}, got %v", roots.Sorted())
	}
	leaves := comps[0].Leaves(log)
	if len(leaves) != 1 || !leaves.Has(d) {
		t.Errorf("expected leaves {D}, got %v", leaves.Sorted())
	}
}

func TestCycleTerminatesWithWarning(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	g := NewGraph()
	x := wire(1, 1, "X")
	y := wire(1, 1, "Y")
	z := wire(1, 1, "Z")
	// X <-> Y cycle feeding Z.
	g.AddEdge(x, y)
	g.AddEdge(y, x)
	g.AddEdge(y, z)

	comps := g.Components()
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}

	leaves := comps[0].Leaves(log)
	if len(leaves) != 1 || !leaves.Has(z) {
		t.Errorf("expected leaves {Z}, got %v", leaves.Sorted())
	}

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a cycle warning")
	}
}

func TestDiamondIsNotACycle(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	g := NewGraph()
	a := wire(1, 1, "A")
	b := wire(1, 1, "B")
	c := wire(1, 1, "C")
	d := wire(1, 1, "D")
	// A fans out to B and C which reconverge on D.
	g.AddEdge(a, b)
	g.AddEdge(a, c)
	g.AddEdge(b, d)
	g.AddEdge(c, d)

	comps := g.Components()
	roots := comps[0].Roots(log)
	if len(roots) != 1 || !roots.Has(a) {
		t.Errorf("expected roots {A}, got %v", roots.Sorted())
	}

	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			t.Errorf("reconvergent paths wrongly reported as a cycle: %s", entry.Message)
		}
	}
}

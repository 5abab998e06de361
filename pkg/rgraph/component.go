package rgraph

import (
	"github.com/sirupsen/logrus"
)

// Component is a maximal set of nodes connected when edges are treated as
// undirected. It keeps a back-reference to its graph so roots and leaves
// can be recomputed on demand.
type Component struct {
	graph *Graph
	Nodes NodeSet
}

// Traversal state for the root/leaf walks.
const (
	nodeUnvisited = iota
	nodeInProgress
	nodeDone
)

// Roots returns the nodes of the component with no upstream driver,
// discovered by walking reverse edges from every node. Cycles are logged
// and treated as resolved so the walk always terminates.
func (c *Component) Roots(log logrus.FieldLogger) NodeSet {
	return c.walk(c.graph.Rev, log)
}

// Leaves returns the nodes of the component with no downstream load,
// discovered by walking forward edges from every node.
func (c *Component) Leaves(log logrus.FieldLogger) NodeSet {
	return c.walk(c.graph.Fwd, log)
}

// walk runs an iterative depth-first search along the given adjacency from
// every node of the component, collecting dead ends. The explicit frame
// stack keeps depth bounded on long chains; re-entering an in-progress node
// is a cycle, reported once per encounter.
func (c *Component) walk(adj map[Node]NodeSet, log logrus.FieldLogger) NodeSet {
	type frame struct {
		node Node
		next []Node
		i    int
	}

	state := make(map[Node]int)
	ends := make(NodeSet)

	enter := func(n Node) frame {
		state[n] = nodeInProgress
		if len(adj[n]) == 0 {
			ends.Add(n)
		}
		return frame{node: n, next: adj[n].Sorted()}
	}

	for _, start := range c.Nodes.Sorted() {
		if state[start] != nodeUnvisited {
			continue
		}
		stack := []frame{enter(start)}
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.i >= len(f.next) {
				state[f.node] = nodeDone
				stack = stack[:len(stack)-1]
				continue
			}
			n := f.next[f.i]
			f.i++
			switch state[n] {
			case nodeInProgress:
				log.Warnf("node %s is part of a cycle", n)
			case nodeUnvisited:
				stack = append(stack, enter(n))
			}
		}
	}

	return ends
}

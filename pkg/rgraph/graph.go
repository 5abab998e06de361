package rgraph

import "sort"

// NodeSet is a set of nodes.
type NodeSet map[Node]struct{}

// Add inserts a node into the set.
func (s NodeSet) Add(n Node) {
	s[n] = struct{}{}
}

// Has reports whether the set contains the node.
func (s NodeSet) Has(n Node) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the set's nodes ordered by (row, column, label).
func (s NodeSet) Sorted() []Node {
	nodes := make([]Node, 0, len(s))
	for n := range s {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Less(nodes[j]) {
			return true
		}
		if nodes[j].Less(nodes[i]) {
			return false
		}
		// Same row/column/label: break ties on the pin so the order is total.
		return nodes[i].Pin.Label < nodes[j].Pin.Label
	})
	return nodes
}

// Graph is a directed graph of nodes kept as forward and reverse adjacency
// sets. An edge always exists in both maps or in neither.
type Graph struct {
	Fwd map[Node]NodeSet
	Rev map[Node]NodeSet
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Fwd: make(map[Node]NodeSet),
		Rev: make(map[Node]NodeSet),
	}
}

// AddEdge inserts the edge source->sink. This is the only mutation point;
// callers that need device-specific edge rewriting wrap it (see package
// connect), so the graph itself stays policy-free.
func (g *Graph) AddEdge(source, sink Node) {
	fwd, ok := g.Fwd[source]
	if !ok {
		fwd = make(NodeSet)
		g.Fwd[source] = fwd
	}
	fwd.Add(sink)

	rev, ok := g.Rev[sink]
	if !ok {
		rev = make(NodeSet)
		g.Rev[sink] = rev
	}
	rev.Add(source)
}

// HasIncoming reports whether any edge terminates at the node.
func (g *Graph) HasIncoming(n Node) bool {
	return len(g.Rev[n]) > 0
}

// Components partitions the graph into connected components, treating edges
// as undirected. Components come back ordered by their smallest node so two
// runs over the same graph agree.
func (g *Graph) Components() []*Component {
	seen := make(NodeSet)
	all := make(NodeSet)
	for n := range g.Rev {
		all.Add(n)
	}
	for n := range g.Fwd {
		all.Add(n)
	}

	var components []*Component
	for _, start := range all.Sorted() {
		if seen.Has(start) {
			continue
		}
		comp := &Component{graph: g, Nodes: make(NodeSet)}
		queue := []Node{start}
		seen.Add(start)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			comp.Nodes.Add(n)
			for next := range g.Fwd[n] {
				if !seen.Has(next) {
					seen.Add(next)
					queue = append(queue, next)
				}
			}
			for next := range g.Rev[n] {
				if !seen.Has(next) {
					seen.Add(next)
					queue = append(queue, next)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

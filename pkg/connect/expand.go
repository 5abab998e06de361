package connect

import (
	"sort"
	"strconv"
	"strings"

	"github.com/opentrellis/ecpvlog/pkg/rgraph"
	"github.com/opentrellis/ecpvlog/pkg/trellis"
)

// expander carries the per-run state of one expansion pass. A node is
// expanded at most once, whichever path reaches it first.
type expander struct {
	b    *Builder
	cfg  *rgraph.Graph // configured arcs only; consulted for zero-bit inference
	out  *rgraph.Graph
	seen map[rgraph.Node]bool
}

// Expand closes the configured-arc graph over the connectivity that bit
// decoding cannot see: zero-bit mux defaults, fixed block-pin wiring, fixed
// wire-to-wire arcs and the global clock network. Only nodes reachable from
// a configured arc are expanded; a second pass then links the wires
// adjacent to every block reached that way. This bounds the work to the
// parts of the device the configuration actually uses.
func (b *Builder) Expand(cfg *rgraph.Graph) *rgraph.Graph {
	ex := &expander{
		b:    b,
		cfg:  cfg,
		out:  rgraph.NewGraph(),
		seen: make(map[rgraph.Node]bool),
	}

	// Visit both endpoints of every configured arc, recording the blocks
	// reached through fixed wiring along the way.
	bels := make(rgraph.NodeSet)
	sources := make([]rgraph.Node, 0, len(cfg.Fwd))
	for source := range cfg.Fwd {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Less(sources[j]) })
	for _, source := range sources {
		for _, sink := range cfg.Fwd[source].Sorted() {
			b.FilteredAddEdge(ex.out, source, sink)
			ex.visit(source, bels.Add)
			ex.visit(sink, bels.Add)
		}
	}

	// Expanding every fixed connection in the device would be far too
	// expensive. Instead, link in only the wires adjacent to blocks that
	// configured arcs reached, without further recursive expansion.
	for _, bel := range bels.Sorted() {
		rtile := b.Chip.Routing.TileAt(locOf(bel))
		if rtile == nil {
			continue
		}
		wireIDs := make([]int32, 0, len(rtile.Wires))
		for id := range rtile.Wires {
			wireIDs = append(wireIDs, id)
		}
		sort.Slice(wireIDs, func(i, j int) bool { return wireIDs[i] < wireIDs[j] })
		for _, id := range wireIDs {
			rwire := rtile.Wires[id]
			wnode := rgraph.Node{Y: bel.Y, X: bel.X, ID: b.Reg.Intern(rwire.ID, b.Chip.Routing)}
			for _, bp := range rwire.BelsUphill {
				if bp.Bel.ID == bel.ID.ID {
					b.FilteredAddEdge(ex.out, b.belNode(bp), wnode)
					ex.visit(wnode, nil)
				}
			}
			for _, bp := range rwire.BelsDownhill {
				if bp.Bel.ID == bel.ID.ID {
					b.FilteredAddEdge(ex.out, wnode, b.belNode(bp))
					ex.visit(wnode, nil)
				}
			}
		}
	}

	return ex.out
}

// visit expands a node and everything newly discovered from it. The work
// list replaces call recursion so chain depth cannot blow the stack on
// large devices. belFunc, when non-nil, is told about every block adjacent
// to an expanded wire.
func (ex *expander) visit(start rgraph.Node, belFunc func(rgraph.Node)) {
	work := []rgraph.Node{start}
	for len(work) > 0 {
		node := work[len(work)-1]
		work = work[:len(work)-1]
		if ex.seen[node] {
			continue
		}
		ex.seen[node] = true
		work = append(work, ex.expandNode(node, belFunc)...)
	}
}

// expandNode adds the implicit edges for one node and returns the nodes to
// expand next.
func (ex *expander) expandNode(node rgraph.Node, belFunc func(rgraph.Node)) []rgraph.Node {
	b := ex.b

	var rwire *trellis.RoutingWire
	if rtile := b.Chip.Routing.TileAt(locOf(node)); rtile != nil {
		rwire = rtile.Wires[node.ID.ID]
	}
	if rwire == nil {
		// A handful of database entries reference wires outside their own
		// tile (e.g. G_ULDDRDEL); nothing useful can be expanded from them.
		b.Log.Warnf("failed to find node %s in the routing graph", node)
		return nil
	}

	var next []rgraph.Node

	// No configured arc drives this node: the mux may be selecting an input
	// whose bit pattern is all zeroes, which decodes to no arc at all.
	if !ex.cfg.HasIncoming(node) {
		for _, td := range b.Chip.TilesAt(locOf(node)) {
			arcs := b.Chip.ZeroBitArcs(td.Tile.Type)
			for _, source := range arcs[node.Name()] {
				sourceNode := b.labelNode(locOf(node), source)
				b.FilteredAddEdge(ex.out, sourceNode, node)
				next = append(next, sourceNode)
			}
		}
	}

	// Block pins hardwired to this wire.
	for _, bp := range rwire.BelsUphill {
		b.FilteredAddEdge(ex.out, b.belNode(bp), node)
		if belFunc != nil {
			belFunc(b.wireNode(bp.Bel))
		}
	}
	for _, bp := range rwire.BelsDownhill {
		b.FilteredAddEdge(ex.out, node, b.belNode(bp))
		if belFunc != nil {
			belFunc(b.wireNode(bp.Bel))
		}
	}

	// Fixed wire-to-wire arcs conduct regardless of configuration.
	for _, refs := range [][]trellis.RoutingID{rwire.Uphill, rwire.Downhill} {
		for _, rid := range refs {
			atile := b.Chip.Routing.TileAt(rid.Loc)
			if atile == nil {
				continue
			}
			rarc := atile.Arcs[rid.ID]
			if rarc == nil || rarc.Configurable {
				continue
			}
			sourceNode := b.wireNode(rarc.Source)
			sinkNode := b.wireNode(rarc.Sink)
			b.FilteredAddEdge(ex.out, sourceNode, sinkNode)
			next = append(next, sourceNode, sinkNode)
		}
	}

	// Global clock distribution is not in the per-tile databases at all.
	if n := ex.expandGlobal(node); len(n) > 0 {
		next = append(next, n...)
	}

	return next
}

// expandGlobal adds the global clock network edges for a node, dispatched
// by wire name prefix: tap drive to fabric row (G_HPBX), spine to tap drive
// (G_VPTX), and center mux to spine (G_HPRX).
func (ex *expander) expandGlobal(node rgraph.Node) []rgraph.Node {
	b := ex.b
	name := node.Name()

	switch {
	case strings.HasPrefix(name, "G_HPBX"):
		tap, ok := b.Chip.Globals.TapDriver(node.Y, node.X)
		if !ok {
			b.Log.Warnf("no tap driver for %s", node)
			return nil
		}
		prefix := "L_HPBX"
		if tap.Dir == trellis.TapRight {
			prefix = "R_HPBX"
		}
		tapNode := b.labelNode(
			trellis.Location{X: tap.Col, Y: node.Y},
			strings.Replace(name, "G_HPBX", prefix, 1),
		)
		b.FilteredAddEdge(ex.out, tapNode, node)
		return []rgraph.Node{tapNode}

	case strings.HasPrefix(name, "G_VPTX"):
		tap, ok := b.Chip.Globals.TapDriver(node.Y, node.X)
		if !ok || tap.Col != node.X {
			// This column is a tap, not a spine output; the G_HPBX case
			// links it in from the other direction.
			return nil
		}
		quadrant := b.Chip.Globals.Quadrant(node.Y, node.X)
		spine, ok := b.Chip.Globals.SpineDriver(quadrant, node.X)
		if !ok {
			b.Log.Warnf("no spine driver for %s in quadrant %s", node, quadrant)
			return nil
		}
		spineNode := rgraph.Node{Y: spine.Y, X: spine.X, ID: node.ID}
		b.FilteredAddEdge(ex.out, spineNode, node)
		return []rgraph.Node{spineNode}

	case strings.HasPrefix(name, "G_HPRX"):
		// qqPCLKn -> G_HPRXnn00
		if !strings.HasSuffix(name, "00") {
			b.Log.Warnf("unexpected spine input wire %s", node)
			return nil
		}
		clkid, err := strconv.Atoi(name[6 : len(name)-2])
		if err != nil {
			b.Log.Warnf("unexpected spine input wire %s", node)
			return nil
		}
		quadrant := b.Chip.Globals.Quadrant(node.Y, node.X)
		globalNode := b.labelNode(
			trellis.Location{},
			"G_"+quadrant+"PCLK"+strconv.Itoa(clkid),
		)
		b.FilteredAddEdge(ex.out, globalNode, node)
		return []rgraph.Node{globalNode}
	}
	return nil
}

// Package connect turns a chip's decoded per-tile configuration into a
// connection graph: it builds the configured-arc graph, applies device-
// specific edge disambiguation rules, and expands the result with the
// implicit connectivity (zero-bit mux defaults, fixed block and wire
// wiring, global clock distribution) that bit decoding cannot see.
package connect

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opentrellis/ecpvlog/pkg/rgraph"
	"github.com/opentrellis/ecpvlog/pkg/trellis"
)

// Builder drives graph construction for one chip. It owns no mutable state
// beyond the identifier registry it was given; each Build/Expand call reads
// the chip database and produces a fresh graph.
type Builder struct {
	Chip *trellis.Chip
	Reg  *rgraph.Registry
	Log  logrus.FieldLogger
}

// NewBuilder creates a builder over the given chip.
func NewBuilder(chip *trellis.Chip, reg *rgraph.Registry, log logrus.FieldLogger) *Builder {
	return &Builder{Chip: chip, Reg: reg, Log: log}
}

func locOf(n rgraph.Node) trellis.Location {
	return trellis.Location{X: n.X, Y: n.Y}
}

// wireNode builds the node for a wire reference in the routing graph.
func (b *Builder) wireNode(rid trellis.RoutingID) rgraph.Node {
	return rgraph.Node{
		Y:  rid.Loc.Y,
		X:  rid.Loc.X,
		ID: b.Reg.Intern(rid.ID, b.Chip.Routing),
	}
}

// belNode builds the node for a block pin attached to a wire.
func (b *Builder) belNode(bp trellis.BelPort) rgraph.Node {
	return rgraph.Node{
		Y:   bp.Bel.Loc.Y,
		X:   bp.Bel.Loc.X,
		ID:  b.Reg.Intern(bp.Bel.ID, b.Chip.Routing),
		Pin: b.Reg.Intern(bp.Pin, b.Chip.Routing),
	}
}

// labelNode builds a wire node from a label at a location.
func (b *Builder) labelNode(loc trellis.Location, label string) rgraph.Node {
	return rgraph.Node{
		Y:  loc.Y,
		X:  loc.X,
		ID: b.Reg.InternLabel(b.Chip.Routing, label),
	}
}

// BuildConfigGraph converts every configured arc of every tile into a graph
// edge. Arc endpoints are resolved through the routing tile's arc table; a
// miss is logged and the arc skipped, since a handful of database entries
// reference wires outside their own tile.
func (b *Builder) BuildConfigGraph() *rgraph.Graph {
	g := rgraph.NewGraph()
	for _, loc := range b.Chip.Locations() {
		rtile := b.Chip.Routing.TileAt(loc)
		for _, td := range b.Chip.TilesAt(loc) {
			for _, arc := range td.Config.Arcs {
				if rtile == nil {
					b.Log.Warnf("no routing tile at R%dC%d for arc %s->%s", loc.Y, loc.X, arc.Source, arc.Sink)
					continue
				}
				name := fmt.Sprintf("%s->%s", arc.Source, arc.Sink)
				rarc := rtile.Arcs[b.Chip.Routing.IdentOf(name)]
				if rarc == nil {
					b.Log.Warnf("failed to resolve arc %s at R%dC%d", name, loc.Y, loc.X)
					continue
				}
				b.FilteredAddEdge(g, b.wireNode(rarc.Source), b.wireNode(rarc.Sink))
			}
		}
	}
	return g
}

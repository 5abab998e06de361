package verilog

import (
	"fmt"
	"strings"

	"github.com/facette/natsort"

	"github.com/opentrellis/ecpvlog/pkg/rgraph"
	"github.com/opentrellis/ecpvlog/pkg/trellis"
)

// Instance is one synthesized functional-block instance: the block's name,
// the tile config its settings decode from, and the mapping from pin names
// to the nets driving them. Pin mappings accumulate as the emitter walks
// nets; everything else is fixed at creation.
type Instance struct {
	Name   string
	Kind   BlockKind
	Tile   *trellis.TileData
	PinMap map[string]rgraph.Node
}

// newInstance resolves the tile config owning the block named by node. The
// routing database and the tile database must agree: failing to find a tile
// of the kind's expected type at the block's location is a database
// inconsistency, as is finding more than one candidate.
func newInstance(node rgraph.Node, kind BlockKind, tiles []*trellis.TileData) (*Instance, error) {
	var match *trellis.TileData
	for _, td := range tiles {
		if !strings.HasPrefix(td.Tile.Type, kind.TileType()) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("verilog: multiple %s tiles at R%dC%d for node %s", kind.TileType(), node.Y, node.X, node)
		}
		match = td
	}
	if match == nil {
		return nil, fmt.Errorf("verilog: tile type %s not found for node %s", kind.TileType(), node)
	}
	return &Instance{
		Name:   node.Name(),
		Kind:   kind,
		Tile:   match,
		PinMap: make(map[string]rgraph.Node),
	}, nil
}

// parameterLines renders the instance's enums and words as a Verilog
// parameter list, consuming only the fields namespaced by this block.
// Words render as binary literals, most significant bit first.
func (inst *Instance) parameterLines() []string {
	renames := inst.Kind.spec().paramRenames
	var lines []string

	for _, e := range inst.Tile.Config.Enums {
		bel, name, ok := strings.Cut(e.Name, ".")
		if !ok || bel != inst.Name {
			continue
		}
		name = strings.ReplaceAll(name, ".", "_")
		if r, ok := renames[name]; ok {
			name = r
		}
		lines = append(lines, fmt.Sprintf("  .%s(%q)", name, e.Value))
	}
	for _, w := range inst.Tile.Config.Words {
		bel, name, ok := strings.Cut(w.Name, ".")
		if !ok || bel != inst.Name {
			continue
		}
		name = strings.ReplaceAll(name, ".", "_")
		if r, ok := renames[name]; ok {
			name = r
		}
		lines = append(lines, fmt.Sprintf("  .%s(%d'b%s)", name, len(w.Bits), bitString(w.Bits)))
	}

	return lines
}

// bitString renders an LSB-first bit slice as a Verilog binary literal body.
func bitString(bits []bool) string {
	var sb strings.Builder
	for i := len(bits) - 1; i >= 0; i-- {
		if bits[i] {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// pinLines renders the instance's pin connections, inputs before outputs,
// each group in natural order. display resolves a net's driving node to its
// final (possibly renamed) text.
func (inst *Instance) pinLines(display func(rgraph.Node) string) []string {
	inputs := make(map[string]bool, len(inst.Kind.spec().inputPins))
	for _, p := range inst.Kind.spec().inputPins {
		inputs[p] = true
	}

	var inPins, outPins []string
	for pin := range inst.PinMap {
		if inputs[pin] {
			inPins = append(inPins, pin)
		} else {
			outPins = append(outPins, pin)
		}
	}
	natsort.Sort(inPins)
	natsort.Sort(outPins)

	var lines []string
	for _, pin := range append(inPins, outPins...) {
		lines = append(lines, fmt.Sprintf("  .%s( %s )", pin, display(inst.PinMap[pin])))
	}
	return lines
}

package verilog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/facette/natsort"
	"github.com/sirupsen/logrus"

	"github.com/opentrellis/ecpvlog/pkg/rgraph"
	"github.com/opentrellis/ecpvlog/pkg/trellis"
)

// RenameTable maps canonical instance names (R<row>C<col>_<label>) to
// user-facing names, typically package pin names. It affects display text
// only; graph identity never consults it.
type RenameTable map[string]string

// Emitter assembles the top-level Verilog module from an expanded
// connection graph.
type Emitter struct {
	Chip    *trellis.Chip
	Renames RenameTable
	Log     logrus.FieldLogger
	Out     io.Writer
}

// display renders a node for output, applying the rename table to the
// instance name part.
func (e *Emitter) display(n rgraph.Node) string {
	name := n.InstName()
	if r, ok := e.Renames[name]; ok {
		name = r
	}
	if pin := n.PinName(); pin != "" {
		name += "$" + pin
	}
	return name
}

// net is one emittable component with its filtered, sorted endpoints.
type net struct {
	roots  []rgraph.Node
	leaves []rgraph.Node
}

// Emit writes the complete Verilog module for the graph: a leading comment
// listing multi-root nets and pruned ports, the definitions of every block
// kind in use, and the top-level module with ports, internal wires,
// assigns, instances and a trailing comment of unconsumed config fields.
// Output is byte-identical across runs over the same input.
func (e *Emitter) Emit(g *rgraph.Graph, topName string) error {
	nets := e.collectNets(g)

	modSources := make(rgraph.NodeSet)
	modSinks := make(map[rgraph.Node]rgraph.Node)
	modGlobals := make(rgraph.NodeSet)
	instances := make(map[string]*Instance)

	w := e.Out
	fmt.Fprintln(w, "/* Automatically generated by ecpvlog")
	for _, nt := range nets {
		if len(nt.roots) > 1 {
			// The output format cannot express a wire with several drivers.
			e.Log.Warnf("unhandled multi-root component rooted at %s", nt.roots[0])
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Unhandled multi-root component:")
			fmt.Fprintln(w, e.joinNodes(nt.roots))
			fmt.Fprintf(w, " -> %s\n", e.joinNodes(nt.leaves))
			continue
		}

		root := nt.roots[0]
		modSources.Add(root)
		for _, leaf := range nt.leaves {
			modSinks[leaf] = root
		}
		for _, node := range append(append([]rgraph.Node{}, nt.roots...), nt.leaves...) {
			if inst, ok := instances[node.InstName()]; ok {
				inst.PinMap[node.PinName()] = root
				continue
			}
			kind, ok := ClassifyBlock(node.Name())
			if !ok {
				modGlobals.Add(node)
				continue
			}
			inst, err := newInstance(node, kind, e.Chip.TilesAt(trellis.Location{X: node.X, Y: node.Y}))
			if err != nil {
				return err
			}
			inst.PinMap[node.PinName()] = root
			instances[node.InstName()] = inst
		}
	}

	// Global outputs that just copy another global carry no logic; drop
	// them rather than emit an empty feed-through port.
	for _, node := range modGlobals.Sorted() {
		if src, ok := modSinks[node]; ok && modGlobals.Has(src) {
			fmt.Fprintf(w, "filtered out passed-through output: %s -> %s\n", e.display(src), e.display(node))
			delete(modSinks, node)
		}
	}
	allSources := make(rgraph.NodeSet)
	for _, src := range modSinks {
		allSources.Add(src)
	}
	for _, node := range modGlobals.Sorted() {
		if modSources.Has(node) && !allSources.Has(node) {
			fmt.Fprintf(w, "filtered out unused input: %s\n", e.display(node))
			delete(modSources, node)
		}
	}
	fmt.Fprintln(w, "*/")

	usedKinds := make(map[BlockKind]bool)
	for _, inst := range instances {
		usedKinds[inst.Kind] = true
	}
	for _, kind := range allKinds {
		if usedKinds[kind] {
			fmt.Fprintln(w, kind.Definition())
		}
	}

	fmt.Fprintf(w, "module %s(\n", topName)
	var ports []string
	for node := range modGlobals {
		if modSources.Has(node) {
			ports = append(ports, "  input wire "+e.display(node))
		}
	}
	for node := range modGlobals {
		if _, ok := modSinks[node]; ok {
			ports = append(ports, "  output wire "+e.display(node))
		}
	}
	natsort.Sort(ports)
	fmt.Fprintln(w, strings.Join(ports, " ,\n"))
	fmt.Fprintln(w, ");")
	fmt.Fprintln(w)

	// Internal nets: driven by some block output, consumed by name inside
	// the instances below.
	var wires []string
	for node := range modSources {
		if !modGlobals.Has(node) {
			wires = append(wires, e.display(node))
		}
	}
	natsort.Sort(wires)
	for _, name := range wires {
		fmt.Fprintf(w, "wire %s ;\n", name)
	}
	fmt.Fprintln(w)

	// Global outputs are fed by assignment from their net's root. Sorting
	// the nodes (rather than display strings looked back up) keeps each
	// sink paired with its own root even when renames collide.
	var assigns []rgraph.Node
	for node := range modSinks {
		if modGlobals.Has(node) {
			assigns = append(assigns, node)
		}
	}
	sort.Slice(assigns, func(i, j int) bool {
		return natsort.Compare(e.display(assigns[i]), e.display(assigns[j]))
	})
	for _, node := range assigns {
		fmt.Fprintf(w, "assign %s = %s ;\n", e.display(node), e.display(modSinks[node]))
	}
	fmt.Fprintln(w)

	instNames := make([]string, 0, len(instances))
	for name := range instances {
		instNames = append(instNames, name)
	}
	natsort.Sort(instNames)
	for _, name := range instNames {
		e.printInstance(instances[name], name)
	}

	e.printUnconsumed(instances)
	fmt.Fprintln(w, "endmodule")
	return nil
}

// collectNets extracts the graph's components and reduces them to their
// filtered, sorted roots and leaves. Components with no interesting root or
// leaf are internal wiring and dropped here.
func (e *Emitter) collectNets(g *rgraph.Graph) []net {
	var nets []net
	for _, comp := range g.Components() {
		roots := filterNodes(comp.Roots(e.Log))
		if len(roots) == 0 {
			continue
		}
		leaves := filterNodes(comp.Leaves(e.Log))
		if len(leaves) == 0 {
			continue
		}
		nets = append(nets, net{roots: roots, leaves: leaves})
	}
	sort.Slice(nets, func(i, j int) bool {
		return nets[i].roots[0].Less(nets[j].roots[0])
	})
	return nets
}

func filterNodes(set rgraph.NodeSet) []rgraph.Node {
	var nodes []rgraph.Node
	for _, n := range set.Sorted() {
		if KeepEndpoint(n) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (e *Emitter) joinNodes(nodes []rgraph.Node) string {
	strs := make([]string, len(nodes))
	for i, n := range nodes {
		strs[i] = e.display(n)
	}
	return strings.Join(strs, ", ")
}

func (e *Emitter) printInstance(inst *Instance, name string) {
	w := e.Out
	fmt.Fprintf(w, "%s #(\n", inst.Kind.ModuleName())
	if params := inst.parameterLines(); len(params) > 0 {
		fmt.Fprintln(w, strings.Join(params, ",\n"))
	}
	fmt.Fprintf(w, ") %s (\n", name)
	if pins := inst.pinLines(e.display); len(pins) > 0 {
		fmt.Fprintln(w, strings.Join(pins, ",\n"))
	}
	fmt.Fprintln(w, ");")
	fmt.Fprintln(w)
}

// printUnconsumed reports every decoded enum and word that no instance
// rendered as a parameter, for diagnostic visibility.
func (e *Emitter) printUnconsumed(instances map[string]*Instance) {
	w := e.Out

	seenEnums := make(map[*trellis.TileConfig]map[int]bool)
	seenWords := make(map[*trellis.TileConfig]map[int]bool)
	mark := func(seen map[*trellis.TileConfig]map[int]bool, cfg *trellis.TileConfig, i int) {
		m, ok := seen[cfg]
		if !ok {
			m = make(map[int]bool)
			seen[cfg] = m
		}
		m[i] = true
	}
	for _, inst := range instances {
		cfg := inst.Tile.Config
		for i, en := range cfg.Enums {
			if bel, _, ok := strings.Cut(en.Name, "."); ok && bel == inst.Name {
				mark(seenEnums, cfg, i)
			}
		}
		for i, word := range cfg.Words {
			if bel, _, ok := strings.Cut(word.Name, "."); ok && bel == inst.Name {
				mark(seenWords, cfg, i)
			}
		}
	}

	fmt.Fprintln(w, "/* Unhandled enums/words:")
	for _, loc := range e.Chip.Locations() {
		for _, td := range e.Chip.TilesAt(loc) {
			for i, en := range td.Config.Enums {
				if !seenEnums[td.Config][i] {
					fmt.Fprintf(w, "  %s enum: %s %s\n", td.Tile.Name, en.Name, en.Value)
				}
			}
			for i, word := range td.Config.Words {
				if !seenWords[td.Config][i] {
					fmt.Fprintf(w, "  %s word: %s %s\n", td.Tile.Name, word.Name, bitString(word.Bits))
				}
			}
		}
	}
	fmt.Fprintln(w, "*/")
}

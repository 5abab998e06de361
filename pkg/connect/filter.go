package connect

import (
	"regexp"
	"strings"

	"github.com/opentrellis/ecpvlog/pkg/rgraph"
	"github.com/opentrellis/ecpvlog/pkg/trellis"
)

var (
	fxSourceRe = regexp.MustCompile(`^F[5X][ABCD]_SLICE$`)
	fnSinkRe   = regexp.MustCompile(`^F\d$`)
)

// FilteredAddEdge inserts an edge after applying the device's two
// disambiguation rules. Every edge destined for a graph goes through here
// so the rules are applied uniformly.
func (b *Builder) FilteredAddEdge(g *rgraph.Graph, source, sink rgraph.Node) {
	switch {
	case fxSourceRe.MatchString(source.Name()) && fnSinkRe.MatchString(sink.Name()):
		// The F[5X] -> Fn mux bits are shared with the CCU2.INJECT enums.
		// In CCU2 mode the mux must be treated as the fixed passthrough
		// Fn_SLICE -> Fn, whatever the decoded bits say.
		source = b.rewriteCarrySource(source, sink)
	case strings.HasPrefix(source.PinName(), "RXDATA") && !b.dataPinValid(source):
		return
	case strings.HasPrefix(sink.PinName(), "TXDATA") && !b.dataPinValid(sink):
		return
	}
	g.AddEdge(source, sink)
}

// rewriteCarrySource checks the owning slice's mode enumeration and, in
// CCU2 mode, rewrites the F[5X]x_SLICE source to the matching Fn_SLICE.
func (b *Builder) rewriteCarrySource(source, sink rgraph.Node) rgraph.Node {
	enumName := "SLICE" + string(source.Name()[2]) + ".MODE"
	loc := trellis.Location{X: source.X, Y: sink.Y}
	for _, td := range b.Chip.TilesAt(loc) {
		if !strings.HasPrefix(td.Tile.Type, "PLC2") {
			continue
		}
		if v, ok := td.Config.Enum(enumName); ok && v == "CCU2" {
			return b.labelNode(locOf(source), sink.Name()+"_SLICE")
		}
	}
	return source
}

// dataPinValid resolves the gearing mutual exclusion on [RT]XDATA pins.
// IOLOGIC[AC].[RT]XDATA[456] alias IOLOGIC[BD].[RT]XDATA[0123] in hardware:
// 7:1 gearing occupies two adjacent IOLOGIC units, so which pin set is live
// depends on the configured gearing mode. Pins 0-3 on units A and C never
// conflict.
func (b *Builder) dataPinValid(node rgraph.Node) bool {
	name := node.InstName()
	belID := name[len(name)-1]
	pin := node.PinName()
	pinID := pin[len(pin)-1]

	if (belID == 'A' || belID == 'C') && pinID >= '0' && pinID <= '3' {
		return true
	}

	var loc trellis.Location
	var mainMod string
	if belID == 'A' || belID == 'B' {
		loc = locOf(node)
		mainMod = "IOLOGICA"
	} else {
		// The IOLOGICC enums live in the PIC[LR]2 tiles, two rows below the
		// PIC[LR]0 tiles carrying the pins themselves.
		loc = trellis.Location{X: node.X, Y: node.Y + 2}
		mainMod = "IOLOGICC"
	}

	var tile *trellis.TileData
	for _, td := range b.Chip.TilesAt(loc) {
		if td.Tile.HasSite(mainMod) {
			tile = td
			break
		}
	}
	if tile == nil {
		b.Log.Errorf("could not locate %s gearing enums for %s", mainMod, node)
		return true
	}

	var enumName, mode71 string
	if strings.HasPrefix(pin, "RX") {
		enumName = mainMod + "IDDRXN.MODE"
		mode71 = "IDDR71"
	} else {
		enumName = mainMod + "ODDRXN.MODE"
		mode71 = "ODDR71"
	}
	v, _ := tile.Config.Enum(enumName)
	is71 := v == mode71

	// Pins [456][BD] do not exist, so the two checks below cover everything.
	if pinID >= '4' && is71 {
		return true
	}
	if pinID <= '3' && !is71 {
		return true
	}
	return false
}

package verilog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/opentrellis/ecpvlog/pkg/connect"
	"github.com/opentrellis/ecpvlog/pkg/rgraph"
	"github.com/opentrellis/ecpvlog/pkg/trellis"
)

// venv assembles a chip and registry for emitter tests.
type venv struct {
	chip *trellis.Chip
	reg  *rgraph.Registry
}

func newVenv() *venv {
	return &venv{
		chip: trellis.NewChip("ECP5", "LFE5U-25F"),
		reg:  rgraph.NewRegistry(),
	}
}

func (v *venv) addTile(loc trellis.Location, tileType string, cfg *trellis.TileConfig) {
	v.chip.AddTile(loc, &trellis.TileData{
		Tile:   &trellis.Tile{Name: tileType, Type: tileType, Sites: nil},
		Config: cfg,
	})
}

func (v *venv) node(loc trellis.Location, label string) rgraph.Node {
	return rgraph.Node{Y: loc.Y, X: loc.X, ID: v.reg.InternLabel(v.chip.Routing, label)}
}

func (v *venv) pinNode(loc trellis.Location, label, pin string) rgraph.Node {
	n := v.node(loc, label)
	n.Pin = v.reg.InternLabel(v.chip.Routing, pin)
	return n
}

func (v *venv) emitter(out *bytes.Buffer, renames RenameTable) *Emitter {
	log, _ := logtest.NewNullLogger()
	return &Emitter{Chip: v.chip, Renames: renames, Log: log, Out: out}
}

var (
	r2c2  = trellis.Location{X: 2, Y: 2}
	r10c2 = trellis.Location{X: 2, Y: 10}
)

// sliceScenario builds a small design: an input pad feeding a slice, whose
// output drives an output pad.
func sliceScenario(v *venv) *rgraph.Graph {
	v.addTile(r2c2, "PLC2", &trellis.TileConfig{
		Enums: []trellis.ConfigEnum{
			{Name: "SLICEA.MODE", Value: "LOGIC"},
		},
		Words: []trellis.ConfigWord{
			{Name: "SLICEA.K0.INIT", Bits: []bool{false, true, false, true}},
		},
	})
	g := rgraph.NewGraph()
	g.AddEdge(v.pinNode(r2c2, "PIOA", "O"), v.pinNode(r2c2, "SLICEA", "A0"))
	g.AddEdge(v.pinNode(r2c2, "SLICEA", "F0"), v.pinNode(r10c2, "PIOB", "I"))
	return g
}

func emit(t *testing.T, v *venv, g *rgraph.Graph, renames RenameTable) string {
	t.Helper()
	var buf bytes.Buffer
	if err := v.emitter(&buf, renames).Emit(g, "top"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return buf.String()
}

func TestEmitSliceScenario(t *testing.T) {
	v := newVenv()
	out := emit(t, v, sliceScenario(v), nil)

	for _, want := range []string{
		"/* Automatically generated by ecpvlog",
		"module top(",
		"  input wire R2C2_PIOA$O",
		"  output wire R10C2_PIOB$I",
		"wire R2C2_SLICEA$F0 ;",
		"assign R10C2_PIOB$I = R2C2_SLICEA$F0 ;",
		"ECP5_SLICE #(",
		"  .MODE(\"LOGIC\")",
		"  .LUT0_INITVAL(4'b1010)",
		") R2C2_SLICEA (",
		"  .A0( R2C2_PIOA$O )",
		"  .F0( R2C2_SLICEA$F0 )",
		"module ECP5_SLICE",
		"endmodule",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "ECP5_EBR") {
		t.Errorf("unused block definitions must not be emitted")
	}
	// Inputs come before outputs in the pin list.
	if strings.Index(out, ".A0(") > strings.Index(out, ".F0(") {
		t.Errorf("instance inputs must precede outputs")
	}
}

func TestEmitDeterministic(t *testing.T) {
	run := func() string {
		v := newVenv()
		return emit(t, v, sliceScenario(v), nil)
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("output differs between runs (-first +second):\n%s", diff)
	}
}

// pipelineOutput builds a chip from scratch, runs the whole
// build/expand/emit pipeline over it and returns the generated text. Each
// call starts from fresh maps so iteration-order effects surface.
func pipelineOutput(t *testing.T) string {
	t.Helper()
	chip := trellis.NewChip("ECP5", "LFE5U-25F")
	rg := chip.Routing
	tile := rg.EnsureTile(r2c2)

	arc := func(source, sink string) {
		ref := trellis.RoutingID{Loc: r2c2, ID: rg.IdentOf(source + "->" + sink)}
		tile.Arcs[ref.ID] = &trellis.RoutingArc{
			Source:       trellis.RoutingID{Loc: r2c2, ID: rg.IdentOf(source)},
			Sink:         trellis.RoutingID{Loc: r2c2, ID: rg.IdentOf(sink)},
			Configurable: true,
		}
		src := tile.EnsureWire(rg.IdentOf(source))
		src.Downhill = append(src.Downhill, ref)
		dst := tile.EnsureWire(rg.IdentOf(sink))
		dst.Uphill = append(dst.Uphill, ref)
	}
	port := func(bel, pin string) trellis.BelPort {
		return trellis.BelPort{
			Bel: trellis.RoutingID{Loc: r2c2, ID: rg.IdentOf(bel)},
			Pin: rg.IdentOf(pin),
		}
	}

	// Pad in -> slice LUT -> pad out.
	arc("W_IN", "W_A0")
	arc("W_F0", "W_OUT")
	win := tile.EnsureWire(rg.IdentOf("W_IN"))
	win.BelsUphill = append(win.BelsUphill, port("PIOA", "O"))
	wa0 := tile.EnsureWire(rg.IdentOf("W_A0"))
	wa0.BelsDownhill = append(wa0.BelsDownhill, port("SLICEA", "A0"))
	wf0 := tile.EnsureWire(rg.IdentOf("W_F0"))
	wf0.BelsUphill = append(wf0.BelsUphill, port("SLICEA", "F0"))
	wout := tile.EnsureWire(rg.IdentOf("W_OUT"))
	wout.BelsDownhill = append(wout.BelsDownhill, port("PIOB", "I"))

	chip.AddTile(r2c2, &trellis.TileData{
		Tile: &trellis.Tile{Name: "PLC2", Type: "PLC2"},
		Config: &trellis.TileConfig{
			Arcs: []trellis.ConfigArc{
				{Source: "W_IN", Sink: "W_A0"},
				{Source: "W_F0", Sink: "W_OUT"},
			},
			Enums: []trellis.ConfigEnum{{Name: "SLICEA.MODE", Value: "LOGIC"}},
			Words: []trellis.ConfigWord{{Name: "SLICEA.K0.INIT", Bits: []bool{true, false}}},
		},
	})

	log, _ := logtest.NewNullLogger()
	reg := rgraph.NewRegistry()
	b := connect.NewBuilder(chip, reg, log)
	g := b.Expand(b.BuildConfigGraph())

	var buf bytes.Buffer
	e := &Emitter{Chip: chip, Log: log, Out: &buf}
	if err := e.Emit(g, "top"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return buf.String()
}

func TestPipelineDeterministic(t *testing.T) {
	first := pipelineOutput(t)
	if !strings.Contains(first, "ECP5_SLICE") {
		t.Fatalf("pipeline produced no slice instance\n%s", first)
	}
	if diff := cmp.Diff(first, pipelineOutput(t)); diff != "" {
		t.Errorf("pipeline output differs between runs (-first +second):\n%s", diff)
	}
}

func TestEmitAssignBindingSurvivesRenameCollision(t *testing.T) {
	v := newVenv()
	v.addTile(r2c2, "PLC2", &trellis.TileConfig{})
	g := rgraph.NewGraph()
	g.AddEdge(v.pinNode(r2c2, "SLICEA", "F0"), v.pinNode(r2c2, "PIOB", "I"))
	g.AddEdge(v.pinNode(r2c2, "SLICEA", "F1"), v.pinNode(r10c2, "PIOC", "I"))

	// Both pads collapse to the same display name; each assign must still
	// bind its own net's root.
	out := emit(t, v, g, RenameTable{"R2C2_PIOB": "X", "R10C2_PIOC": "X"})

	if !strings.Contains(out, "assign X$I = R2C2_SLICEA$F0 ;") {
		t.Errorf("first collided sink lost its root\n%s", out)
	}
	if !strings.Contains(out, "assign X$I = R2C2_SLICEA$F1 ;") {
		t.Errorf("second collided sink lost its root\n%s", out)
	}
}

func TestEmitMultiRootExcluded(t *testing.T) {
	v := newVenv()
	g := rgraph.NewGraph()
	sink := v.pinNode(r2c2, "PIOB", "I")
	g.AddEdge(v.pinNode(r2c2, "PIOA", "O"), sink)
	g.AddEdge(v.pinNode(r10c2, "PIOA", "O"), sink)

	out := emit(t, v, g, nil)

	if !strings.Contains(out, "Unhandled multi-root component:") {
		t.Errorf("multi-root net must be reported in the leading comment")
	}
	if !strings.Contains(out, "R2C2_PIOA$O, R10C2_PIOA$O") {
		t.Errorf("multi-root report should list both roots\n%s", out)
	}
	if strings.Contains(out, "assign") && strings.Contains(out[strings.Index(out, "module top"):], "R2C2_PIOB$I") {
		t.Errorf("multi-root net must not reach the module body")
	}
}

func TestEmitRenameDisplayOnly(t *testing.T) {
	v := newVenv()
	g := sliceScenario(v)
	out := emit(t, v, g, RenameTable{"R2C2_PIOA": "A2"})

	if !strings.Contains(out, "  input wire A2$O") {
		t.Errorf("renamed port missing\n%s", out)
	}
	if !strings.Contains(out, ".A0( A2$O )") {
		t.Errorf("rename must flow through pin references")
	}
	if strings.Contains(out, "R2C2_PIOA") {
		t.Errorf("canonical name must not leak once renamed")
	}
}

func TestEmitPrunesPassthroughAndUnused(t *testing.T) {
	v := newVenv()
	g := rgraph.NewGraph()
	// A pad copying straight to another pad carries no logic.
	g.AddEdge(v.pinNode(r2c2, "PIOA", "O"), v.pinNode(r10c2, "PIOB", "I"))

	out := emit(t, v, g, nil)

	if !strings.Contains(out, "filtered out passed-through output: R2C2_PIOA$O -> R10C2_PIOB$I") {
		t.Errorf("pass-through output not reported\n%s", out)
	}
	if !strings.Contains(out, "filtered out unused input: R2C2_PIOA$O") {
		t.Errorf("unused input not reported\n%s", out)
	}
	if strings.Contains(out, "input wire") || strings.Contains(out, "output wire") {
		t.Errorf("pruned ports must not be declared")
	}
}

func TestEmitPortNaturalOrder(t *testing.T) {
	v := newVenv()
	v.addTile(r2c2, "PLC2", &trellis.TileConfig{})
	g := rgraph.NewGraph()
	// Lexicographic order would put R10 before R2.
	g.AddEdge(v.pinNode(r2c2, "PIOA", "O"), v.pinNode(r2c2, "SLICEA", "A0"))
	g.AddEdge(v.pinNode(r10c2, "PIOB", "O"), v.pinNode(r2c2, "SLICEA", "B0"))

	out := emit(t, v, g, nil)

	lo := strings.Index(out, "input wire R2C2_PIOA$O")
	hi := strings.Index(out, "input wire R10C2_PIOB$O")
	if lo < 0 || hi < 0 {
		t.Fatalf("expected both input ports\n%s", out)
	}
	if lo > hi {
		t.Errorf("ports must be in natural order: R2 before R10")
	}
}

func TestEmitUnconsumedComment(t *testing.T) {
	v := newVenv()
	g := sliceScenario(v)
	// SLICEB is configured but never instantiated.
	cfg := v.chip.TilesAt(r2c2)[0].Config
	cfg.Enums = append(cfg.Enums, trellis.ConfigEnum{Name: "SLICEB.MODE", Value: "CCU2"})
	cfg.Words = append(cfg.Words, trellis.ConfigWord{Name: "SLICEB.K1.INIT", Bits: []bool{true, true}})

	out := emit(t, v, g, nil)

	if !strings.Contains(out, "/* Unhandled enums/words:") {
		t.Errorf("trailing diagnostic comment missing")
	}
	if !strings.Contains(out, "  PLC2 enum: SLICEB.MODE CCU2") {
		t.Errorf("unconsumed enum not reported\n%s", out)
	}
	if !strings.Contains(out, "  PLC2 word: SLICEB.K1.INIT 11") {
		t.Errorf("unconsumed word not reported\n%s", out)
	}
	if strings.Contains(out, "enum: SLICEA.MODE") {
		t.Errorf("consumed enum must not be reported")
	}
}

func TestEmitInstanceResolutionErrors(t *testing.T) {
	v := newVenv()
	g := rgraph.NewGraph()
	g.AddEdge(v.pinNode(r2c2, "PIOA", "O"), v.pinNode(r2c2, "SLICEA", "A0"))

	// No PLC2 tile at R2C2 at all.
	var buf bytes.Buffer
	if err := v.emitter(&buf, nil).Emit(g, "top"); err == nil {
		t.Errorf("expected error for missing tile")
	}

	v.addTile(r2c2, "PLC2", &trellis.TileConfig{})
	v.addTile(r2c2, "PLC2", &trellis.TileConfig{})
	buf.Reset()
	if err := v.emitter(&buf, nil).Emit(g, "top"); err == nil {
		t.Errorf("expected error for ambiguous tile")
	}
}

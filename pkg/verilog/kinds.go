package verilog

import (
	"fmt"
	"strings"
)

// BlockKind is the closed set of functional-block types the emitter can
// synthesize. Classification is done once, by name prefix; everything else
// dispatches on the kind.
type BlockKind int

const (
	BlockSlice BlockKind = iota
	BlockEBR
)

var allKinds = []BlockKind{BlockSlice, BlockEBR}

// ClassifyBlock maps a block instance label to its kind. Labels with no
// recognized prefix belong to blocks this tool does not synthesize; their
// pins surface as top-level ports instead.
func ClassifyBlock(label string) (BlockKind, bool) {
	switch {
	case strings.HasPrefix(label, "SLICE"):
		return BlockSlice, true
	case strings.HasPrefix(label, "EBR"):
		return BlockEBR, true
	}
	return 0, false
}

// kindSpec is the fixed template for one block kind: module name, the tile
// type prefix its configuration lives in, ordered pin name tables, and the
// renames from database field names to instance parameter names.
type kindSpec struct {
	name         string
	tileType     string
	inputPins    []string
	outputPins   []string
	paramRenames map[string]string
}

func (k BlockKind) spec() *kindSpec {
	return &kindSpecs[k]
}

// ModuleName returns the Verilog module name for the kind.
func (k BlockKind) ModuleName() string {
	return k.spec().name
}

// TileType returns the tile type prefix holding the kind's configuration.
func (k BlockKind) TileType() string {
	return k.spec().tileType
}

var kindSpecs = [...]kindSpec{
	BlockSlice: {
		name:     "ECP5_SLICE",
		tileType: "PLC2",
		inputPins: []string{
			"A0", "B0", "C0", "D0",
			"A1", "B1", "C1", "D1",
			"M0", "M1",
			"FCI", "FXA", "FXB",
			"CLK", "LSR", "CE",
			"DI0", "DI1",
			"WD0", "WD1",
			"WAD0", "WAD1", "WAD2", "WAD3",
			"WRE", "WCK",
		},
		outputPins: []string{
			"F0", "Q0",
			"F1", "Q1",
			"FCO",
			"OFX0", "OFX1",
			"WDO0", "WDO1", "WDO2", "WDO3",
			"WADO0", "WADO1", "WADO2", "WADO3",
		},
		paramRenames: map[string]string{
			"K0_INIT": "LUT0_INITVAL",
			"K1_INIT": "LUT1_INITVAL",
		},
	},
	BlockEBR: {
		name:     "ECP5_EBR",
		tileType: "MIB_EBR",
		inputPins: []string{
			// Byte enable wires
			"ADA0", "ADA1", "ADA2", "ADA3",
			// ADW
			"ADA5", "ADA6", "ADA7", "ADA8", "ADA9",
			"ADA10", "ADA11", "ADA12", "ADA13",
			// ADR
			"ADB5", "ADB6", "ADB7", "ADB8", "ADB9",
			"ADB10", "ADB11", "ADB12", "ADB13",
			"CEB",  // CER
			"CLKA", // CLKW
			"CLKB", // CLKR
			// DI
			"DIA0", "DIA1", "DIA2", "DIA3", "DIA4", "DIA5",
			"DIA6", "DIA7", "DIA8", "DIA9", "DIA10", "DIA11",
			"DIA12", "DIA13", "DIA14", "DIA15", "DIA16", "DIA17",
			"DIB0", "DIB1", "DIB2", "DIB3", "DIB4", "DIB5",
			"DIB6", "DIB7", "DIB8", "DIB9", "DIB10", "DIB11",
			"DIB12", "DIB13", "DIB14", "DIB15", "DIB16", "DIB17",
		},
		outputPins: []string{
			// DO
			"DOA0", "DOA1", "DOA2", "DOA3", "DOA4", "DOA5",
			"DOA6", "DOA7", "DOA8", "DOA9", "DOA10", "DOA11",
			"DOA12", "DOA13", "DOA14", "DOA15", "DOA16", "DOA17",
			"DOB0", "DOB1", "DOB2", "DOB3", "DOB4", "DOB5",
			"DOB6", "DOB7", "DOB8", "DOB9", "DOB10", "DOB11",
			"DOB12", "DOB13", "DOB14", "DOB15", "DOB16", "DOB17",
		},
		paramRenames: map[string]string{},
	},
}

// sliceParams are the TRELLIS_SLICE parameters forwarded by the ECP5_SLICE
// wrapper, in instantiation order.
var sliceParams = []string{
	"MODE", "GSR", "SRMODE", "CEMUX", "CLKMUX", "LSRMUX",
	"LUT0_INITVAL", "LUT1_INITVAL",
	"REG0_SD", "REG1_SD",
	"REG0_REGSET", "REG1_REGSET",
	"REG0_LSRMODE", "REG1_LSRMODE",
	"CCU2_INJECT1_0", "CCU2_INJECT1_1",
	"WREMUX", "WCKMUX",
	"A0MUX", "A1MUX", "B0MUX", "B1MUX",
	"C0MUX", "C1MUX", "D0MUX", "D1MUX",
}

// Definition returns the Verilog module definition backing instances of the
// kind. The EBR body is still a stub: only its parameter surface is
// modelled, enough for connectivity-level simulation setups to elaborate.
func (k BlockKind) Definition() string {
	spec := k.spec()
	var sb strings.Builder

	switch k {
	case BlockSlice:
		sb.WriteString("/* This module requires the cells_sim library from yosys/techlibs/ecp5/cells.sim.v\n")
		sb.WriteString("   for the TRELLIS_SLICE definition. Include that cell library before including this\n")
		sb.WriteString("   file. */\n")
		fmt.Fprintf(&sb, "module %s(\n", spec.name)
		fmt.Fprintf(&sb, "    input %s,\n", strings.Join(spec.inputPins, ", "))
		fmt.Fprintf(&sb, "    output %s\n", strings.Join(spec.outputPins, ", "))
		sb.WriteString(");\n\n")
		sb.WriteString(`    /* These defaults correspond to all-zero-bit enumeration values */
    parameter MODE = "LOGIC";
    parameter GSR = "ENABLED";
    parameter SRMODE = "LSR_OVER_CE";
    parameter [127:0] CEMUX = "CE";
    parameter CLKMUX = "CLK";
    parameter LSRMUX = "LSR";
    parameter LUT0_INITVAL = 16'hFFFF;
    parameter LUT1_INITVAL = 16'hFFFF;
    parameter REG0_SD = "1";
    parameter REG1_SD = "1";
    parameter REG0_REGSET = "SET";
    parameter REG1_REGSET = "SET";
    parameter REG0_LSRMODE = "LSR";
    parameter REG1_LSRMODE = "LSR";
    parameter [127:0] CCU2_INJECT1_0 = "YES";
    parameter [127:0] CCU2_INJECT1_1 = "YES";
    parameter WREMUX = "WRE";
    parameter WCKMUX = "WCK";

    parameter A0MUX = "A0";
    parameter A1MUX = "A1";
    parameter B0MUX = "B0";
    parameter B1MUX = "B1";
    parameter C0MUX = "C0";
    parameter C1MUX = "C1";
    parameter D0MUX = "D0";
    parameter D1MUX = "D1";

`)
		params := make([]string, len(sliceParams))
		for i, p := range sliceParams {
			params[i] = fmt.Sprintf(".%s(%s)", p, p)
		}
		pins := make([]string, 0, len(spec.inputPins)+len(spec.outputPins))
		for _, p := range spec.inputPins {
			pins = append(pins, fmt.Sprintf(".%s(%s)", p, p))
		}
		for _, p := range spec.outputPins {
			pins = append(pins, fmt.Sprintf(".%s(%s)", p, p))
		}
		sb.WriteString("    TRELLIS_SLICE #(\n")
		fmt.Fprintf(&sb, "        %s\n", strings.Join(params, ", "))
		sb.WriteString("    ) impl (\n")
		fmt.Fprintf(&sb, "        %s\n", strings.Join(pins, ", "))
		sb.WriteString("    );\n")
		sb.WriteString("endmodule\n")

	case BlockEBR:
		fmt.Fprintf(&sb, "module %s(\n", spec.name)
		fmt.Fprintf(&sb, "    input %s,\n", strings.Join(spec.inputPins, ", "))
		fmt.Fprintf(&sb, "    output %s\n", strings.Join(spec.outputPins, ", "))
		sb.WriteString(");\n\n")
		sb.WriteString(`    /* These defaults correspond to all-zero-bit enumeration values */
    parameter CSDECODE_A = 3'b111;
    parameter CSDECODE_B = 3'b111;
    parameter ADA0MUX = "ADA0";
    parameter ADA2MUX = "ADA2";
    parameter ADA3MUX = "ADA3";
    parameter ADB0MUX = "ADB0";
    parameter ADB1MUX = "ADB1";
    parameter CEAMUX = "CEA";
    parameter CEBMUX = "CEB";
    parameter CLKAMUX = "CLKA";
    parameter CLKBMUX = "CLKB";
    parameter DP16KD_DATA_WIDTH_A = "18";
    parameter DP16KD_DATA_WIDTH_B = "18";
    parameter DP16KD_WRITEMODE_A = "NORMAL";
    parameter DP16KD_WRITEMODE_B = "NORMAL";
    parameter MODE = "NONE";
    parameter OCEAMUX = "OCEA";
    parameter OCEBMUX = "OCEB";
    parameter PDPW16KD_DATA_WIDTH_R = "18";
    parameter PDPW16KD_RESETMODE = "SYNC";
    parameter WEAMUX = "WEA";
    parameter WEBMUX = "WEB";

    /* TODO! */

endmodule
`)
	}

	return sb.String()
}

// Package verilog renders the expanded connection graph as a structural
// Verilog module: it filters net endpoints down to block pins worth
// exposing, groups them into typed block instances, and emits the top-level
// module with its ports, internal wires and instances.
package verilog

import (
	"strings"

	"github.com/opentrellis/ecpvlog/pkg/rgraph"
)

// KeepEndpoint decides whether a node may appear as a net endpoint in the
// output. It is a pure predicate over the node's name and pin; it never
// alters the graph.
func KeepEndpoint(node rgraph.Node) bool {
	if node.Pin.IsZero() {
		// All useful nets terminate on block pins; bare wires are routing.
		return false
	}
	if strings.Contains(node.InstName(), "_ECLKSYNC") {
		// ECLKSYNC BELs coincide with ECLKBUF BELs, making them redundant
		// here.
		return false
	}
	if strings.HasPrefix(node.PinName(), "IOLDO") || strings.HasPrefix(node.PinName(), "IOLTO") {
		// Dedicated interconnect between IOLOGIC and PIO, internal use only.
		return false
	}
	if node.PinName() == "INDD" {
		// Input after the delay block. The undelayed source (PIO$O) is
		// exposed as an independent input already, so keeping INDD would
		// only create a second driver for the same net.
		return false
	}
	return true
}

package rgraph

import "fmt"

// Node names either a routing wire (Pin zero) or a specific pin of a
// functional block at a grid location. Nodes are plain values: cheap to
// copy and usable as map keys. Two nodes are equal only if all four fields
// match; ordering deliberately ignores the pin so that all pins of one
// wire sort together.
type Node struct {
	Y   int // row
	X   int // column
	ID  Ident
	Pin Ident
}

// Less orders nodes by row, then column, then wire label. The pin does not
// participate in ordering.
func (n Node) Less(o Node) bool {
	if n.Y != o.Y {
		return n.Y < o.Y
	}
	if n.X != o.X {
		return n.X < o.X
	}
	return n.ID.Label < o.ID.Label
}

// Name returns the wire label.
func (n Node) Name() string {
	return n.ID.Label
}

// PinName returns the pin label, or "" for a bare wire.
func (n Node) PinName() string {
	return n.Pin.Label
}

// InstName returns the canonical instance name R<row>C<col>_<label>,
// without any pin suffix.
func (n Node) InstName() string {
	return fmt.Sprintf("R%dC%d_%s", n.Y, n.X, n.ID.Label)
}

// String renders the node as its instance name, with a $<pin> suffix for
// block pins. Display renaming is applied later by the emitter, never here,
// so graph identity stays independent of user-facing names.
func (n Node) String() string {
	if n.Pin.IsZero() {
		return n.InstName()
	}
	return n.InstName() + "$" + n.Pin.Label
}

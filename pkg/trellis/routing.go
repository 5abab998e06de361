package trellis

// RoutingID names a wire or arc in the routing graph: an interned identifier
// at a grid location.
type RoutingID struct {
	Loc Location
	ID  int32
}

// BelPort is a connection between a wire and a named pin of a functional
// block (BEL).
type BelPort struct {
	Bel RoutingID
	Pin int32
}

// RoutingArc is a directed wire-to-wire connection. Configurable arcs are
// switched by configuration bits; fixed arcs always conduct.
type RoutingArc struct {
	Source       RoutingID
	Sink         RoutingID
	Configurable bool
}

// RoutingWire is one wire of a routing tile together with its adjacency:
// arcs entering and leaving it, and the block pins hardwired to it.
type RoutingWire struct {
	ID           int32
	Uphill       []RoutingID // arcs driving this wire
	Downhill     []RoutingID // arcs driven by this wire
	BelsUphill   []BelPort   // block pins driving this wire
	BelsDownhill []BelPort   // block pins driven by this wire
}

// RoutingTile holds the wires and arcs owned by one grid location.
type RoutingTile struct {
	Wires map[int32]*RoutingWire
	Arcs  map[int32]*RoutingArc
}

// RoutingGraph is the device-wide routing database: a symbol table of
// identifiers plus per-location tiles. Identifier 0 is reserved as invalid
// so that the zero value of an interned identifier never aliases a real one.
type RoutingGraph struct {
	labels []string
	ids    map[string]int32
	tiles  map[Location]*RoutingTile
}

// NewRoutingGraph creates an empty routing graph.
func NewRoutingGraph() *RoutingGraph {
	return &RoutingGraph{
		labels: []string{""},
		ids:    make(map[string]int32),
		tiles:  make(map[Location]*RoutingTile),
	}
}

// IdentOf interns a label and returns its identifier, allocating one if the
// label has not been seen before.
func (rg *RoutingGraph) IdentOf(label string) int32 {
	if id, ok := rg.ids[label]; ok {
		return id
	}
	id := int32(len(rg.labels))
	rg.labels = append(rg.labels, label)
	rg.ids[label] = id
	return id
}

// LabelOf returns the label for an identifier, or "" if the identifier was
// never allocated.
func (rg *RoutingGraph) LabelOf(id int32) string {
	if id < 0 || int(id) >= len(rg.labels) {
		return ""
	}
	return rg.labels[id]
}

// TileAt returns the routing tile at a location, or nil if none exists.
func (rg *RoutingGraph) TileAt(loc Location) *RoutingTile {
	return rg.tiles[loc]
}

// EnsureTile returns the routing tile at a location, creating it if needed.
func (rg *RoutingGraph) EnsureTile(loc Location) *RoutingTile {
	if t, ok := rg.tiles[loc]; ok {
		return t
	}
	t := &RoutingTile{
		Wires: make(map[int32]*RoutingWire),
		Arcs:  make(map[int32]*RoutingArc),
	}
	rg.tiles[loc] = t
	return t
}

// EnsureWire returns the wire with the given identifier in the tile,
// creating it if needed.
func (t *RoutingTile) EnsureWire(id int32) *RoutingWire {
	if w, ok := t.Wires[id]; ok {
		return w
	}
	w := &RoutingWire{ID: id}
	t.Wires[id] = w
	return w
}

// Package trellis models the chip and routing database that the conversion
// pipeline queries: per-tile decoded configuration, wire/pin adjacency,
// per-tile-type bit tables and global clock topology. The database itself is
// produced by an external bitstream toolchain and loaded here from a chip
// dump file; this package never touches raw bitstreams.
package trellis

import (
	"sort"
)

// Location is a grid coordinate on the device fabric. X is the column and Y
// is the row, matching the routing database convention.
type Location struct {
	X int
	Y int
}

// ConfigArc is a configured source->sink connection decoded from the
// configuration bits of one tile.
type ConfigArc struct {
	Source string
	Sink   string
}

// ConfigEnum is a decoded enumeration setting, namespaced by the owning
// block (e.g. "SLICEA.MODE").
type ConfigEnum struct {
	Name  string
	Value string
}

// ConfigWord is a decoded multi-bit word setting. Bits are stored least
// significant first.
type ConfigWord struct {
	Name string
	Bits []bool
}

// TileConfig holds everything decoded from one tile's configuration bits.
type TileConfig struct {
	Arcs  []ConfigArc
	Enums []ConfigEnum
	Words []ConfigWord
}

// Enum returns the value of the named enumeration setting, if present.
func (c *TileConfig) Enum(name string) (string, bool) {
	for _, e := range c.Enums {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Tile describes one tile of device fabric.
type Tile struct {
	Name  string
	Type  string
	Sites []string // site (BEL) types present in this tile
}

// HasSite reports whether the tile carries a site of the given type.
func (t *Tile) HasSite(site string) bool {
	for _, s := range t.Sites {
		if s == site {
			return true
		}
	}
	return false
}

// TileData pairs a tile with its decoded configuration.
type TileData struct {
	Tile   *Tile
	Config *TileConfig
}

// Chip is the root handle for one configured device: its tiles and their
// decoded configuration, the routing graph, global clock topology, per-tile-
// type bit tables, and package pin tables.
type Chip struct {
	Family  string
	Device  string
	Routing *RoutingGraph
	Globals *GlobalsInfo

	// Packages maps package name -> physical pin name -> pin site.
	Packages map[string]map[string]PackagePin

	tiles   map[Location][]*TileData
	bitdbs  map[string]*TileBitDB
	zeroBit map[string]map[string][]string
}

// PackagePin locates a physical package pin on the fabric grid.
type PackagePin struct {
	Row int    `json:"row"`
	Col int    `json:"col"`
	Pio string `json:"pio"` // A-D
}

// NewChip creates an empty chip with a fresh routing graph.
func NewChip(family, device string) *Chip {
	return &Chip{
		Family:   family,
		Device:   device,
		Routing:  NewRoutingGraph(),
		Globals:  NewGlobalsInfo(),
		Packages: make(map[string]map[string]PackagePin),
		tiles:    make(map[Location][]*TileData),
		bitdbs:   make(map[string]*TileBitDB),
	}
}

// AddTile registers a tile's data at a grid location. Several tiles can
// share one location.
func (c *Chip) AddTile(loc Location, td *TileData) {
	c.tiles[loc] = append(c.tiles[loc], td)
}

// TilesAt returns all tiles at the given location.
func (c *Chip) TilesAt(loc Location) []*TileData {
	return c.tiles[loc]
}

// Locations returns every location holding at least one tile, sorted by row
// then column so that iteration order is stable.
func (c *Chip) Locations() []Location {
	locs := make([]Location, 0, len(c.tiles))
	for loc := range c.tiles {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Y != locs[j].Y {
			return locs[i].Y < locs[j].Y
		}
		return locs[i].X < locs[j].X
	})
	return locs
}

// SetBitDB registers the bit database for a tile type.
func (c *Chip) SetBitDB(tileType string, db *TileBitDB) {
	c.bitdbs[tileType] = db
}

// ZeroBitArcs returns, per sink wire, the source wires selected when all of
// the sink mux's configuration bits are unset. Bit decoding produces no
// configured arc in that case, so these connections have to be inferred.
// The table is derived from the tile type's bit database once and cached.
func (c *Chip) ZeroBitArcs(tileType string) map[string][]string {
	if arcs, ok := c.zeroBit[tileType]; ok {
		return arcs
	}
	arcs := make(map[string][]string)
	if db := c.bitdbs[tileType]; db != nil {
		for sink, muxArcs := range db.Sinks {
			for _, arc := range muxArcs {
				if arc.Bits == 0 {
					arcs[sink] = append(arcs[sink], arc.Source)
				}
			}
		}
	}
	if c.zeroBit == nil {
		c.zeroBit = make(map[string]map[string][]string)
	}
	c.zeroBit[tileType] = arcs
	return arcs
}

// MuxArc is one selectable input of a sink mux in a tile's bit database.
// Bits is the number of configuration bits that select this input.
type MuxArc struct {
	Source string
	Bits   int
}

// TileBitDB is the per-tile-type routing mux table: for every sink wire,
// the arcs that can drive it.
type TileBitDB struct {
	Sinks map[string][]MuxArc
}

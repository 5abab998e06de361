package trellis

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// The chip dump is a JSON file produced by the external bitstream toolchain
// after parsing a .bit file and decoding every tile's configuration bits.
// It carries the decoded tile configs, the routing graph trimmed to wires
// and arcs, the global clock topology, the per-tile-type mux tables, and
// the package pin tables. All identifiers appear as labels; they are
// interned on load.

type dumpFile struct {
	Family    string                           `json:"family"`
	Device    string                           `json:"device"`
	Tiles     []dumpTile                       `json:"tiles"`
	Routing   dumpRouting                      `json:"routing"`
	Globals   dumpGlobals                      `json:"globals"`
	TileTypes map[string]dumpBitDB             `json:"tiletypes"`
	Packages  map[string]map[string]PackagePin `json:"packages"`
}

type dumpTile struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Row    int      `json:"row"`
	Col    int      `json:"col"`
	Sites  []string `json:"sites,omitempty"`
	Config struct {
		Arcs  []ConfigArc  `json:"arcs,omitempty"`
		Enums []ConfigEnum `json:"enums,omitempty"`
		Words []dumpWord   `json:"words,omitempty"`
	} `json:"config"`
}

type dumpWord struct {
	Name string `json:"name"`
	Bits string `json:"bits"` // "0"/"1" characters, least significant first
}

type dumpRouting struct {
	Tiles []dumpRoutingTile `json:"tiles"`
}

type dumpRoutingTile struct {
	Row   int        `json:"row"`
	Col   int        `json:"col"`
	Wires []dumpWire `json:"wires,omitempty"`
	Arcs  []dumpArc  `json:"arcs,omitempty"`
}

type dumpWire struct {
	Name         string        `json:"name"`
	Uphill       []dumpRef     `json:"uphill,omitempty"`
	Downhill     []dumpRef     `json:"downhill,omitempty"`
	BelsUphill   []dumpBelPort `json:"bels_uphill,omitempty"`
	BelsDownhill []dumpBelPort `json:"bels_downhill,omitempty"`
}

type dumpRef struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Name string `json:"name"`
}

type dumpBelPort struct {
	Bel dumpRef `json:"bel"`
	Pin string  `json:"pin"`
}

type dumpArc struct {
	Name         string  `json:"name"`
	Source       dumpRef `json:"source"`
	Sink         dumpRef `json:"sink"`
	Configurable bool    `json:"configurable"`
}

type dumpGlobals struct {
	Taps      []dumpTap      `json:"taps,omitempty"`
	Quadrants []dumpQuadrant `json:"quadrants,omitempty"`
	Spines    []dumpSpine    `json:"spines,omitempty"`
}

type dumpTap struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	DriveCol int    `json:"drive_col"`
	Dir      string `json:"dir"` // "left" or "right"
}

type dumpQuadrant struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Name string `json:"name"`
}

type dumpSpine struct {
	Quadrant string `json:"quadrant"`
	Col      int    `json:"col"`
	SpineRow int    `json:"spine_row"`
	SpineCol int    `json:"spine_col"`
}

type dumpBitDB struct {
	Sinks map[string][]MuxArc `json:"sinks"`
}

// LoadChipDump reads a chip dump file and builds the in-memory database.
func LoadChipDump(path string) (*Chip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trellis: failed to open chip dump: %w", err)
	}
	defer f.Close()
	return ReadChipDump(f)
}

// ReadChipDump parses a chip dump from a reader.
func ReadChipDump(r io.Reader) (*Chip, error) {
	var dump dumpFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&dump); err != nil {
		return nil, fmt.Errorf("trellis: failed to parse chip dump: %w", err)
	}

	chip := NewChip(dump.Family, dump.Device)

	for _, dt := range dump.Tiles {
		cfg := &TileConfig{
			Arcs:  dt.Config.Arcs,
			Enums: dt.Config.Enums,
		}
		for _, w := range dt.Config.Words {
			word := ConfigWord{Name: w.Name}
			for _, c := range w.Bits {
				switch c {
				case '0':
					word.Bits = append(word.Bits, false)
				case '1':
					word.Bits = append(word.Bits, true)
				default:
					return nil, fmt.Errorf("trellis: tile %s word %s: bad bit %q", dt.Name, w.Name, c)
				}
			}
			cfg.Words = append(cfg.Words, word)
		}
		td := &TileData{
			Tile:   &Tile{Name: dt.Name, Type: dt.Type, Sites: dt.Sites},
			Config: cfg,
		}
		chip.AddTile(Location{X: dt.Col, Y: dt.Row}, td)
	}

	rg := chip.Routing
	ref := func(r dumpRef) RoutingID {
		return RoutingID{Loc: Location{X: r.Col, Y: r.Row}, ID: rg.IdentOf(r.Name)}
	}
	for _, drt := range dump.Routing.Tiles {
		tile := rg.EnsureTile(Location{X: drt.Col, Y: drt.Row})
		for _, dw := range drt.Wires {
			wire := tile.EnsureWire(rg.IdentOf(dw.Name))
			for _, u := range dw.Uphill {
				wire.Uphill = append(wire.Uphill, ref(u))
			}
			for _, d := range dw.Downhill {
				wire.Downhill = append(wire.Downhill, ref(d))
			}
			for _, b := range dw.BelsUphill {
				wire.BelsUphill = append(wire.BelsUphill, BelPort{Bel: ref(b.Bel), Pin: rg.IdentOf(b.Pin)})
			}
			for _, b := range dw.BelsDownhill {
				wire.BelsDownhill = append(wire.BelsDownhill, BelPort{Bel: ref(b.Bel), Pin: rg.IdentOf(b.Pin)})
			}
		}
		for _, da := range drt.Arcs {
			tile.Arcs[rg.IdentOf(da.Name)] = &RoutingArc{
				Source:       ref(da.Source),
				Sink:         ref(da.Sink),
				Configurable: da.Configurable,
			}
		}
	}

	for _, tap := range dump.Globals.Taps {
		dir := TapLeft
		switch tap.Dir {
		case "left":
		case "right":
			dir = TapRight
		default:
			return nil, fmt.Errorf("trellis: bad tap direction %q at R%dC%d", tap.Dir, tap.Row, tap.Col)
		}
		chip.Globals.SetTapDriver(tap.Row, tap.Col, TapDriver{Col: tap.DriveCol, Dir: dir})
	}
	for _, q := range dump.Globals.Quadrants {
		chip.Globals.SetQuadrant(q.Row, q.Col, q.Name)
	}
	for _, s := range dump.Globals.Spines {
		chip.Globals.SetSpineDriver(s.Quadrant, s.Col, Location{X: s.SpineCol, Y: s.SpineRow})
	}

	for tileType, db := range dump.TileTypes {
		chip.SetBitDB(tileType, &TileBitDB{Sinks: db.Sinks})
	}
	chip.Packages = dump.Packages
	if chip.Packages == nil {
		chip.Packages = make(map[string]map[string]PackagePin)
	}

	return chip, nil
}

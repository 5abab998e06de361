package trellis

// TapDir is the horizontal direction a tap drive serves.
type TapDir int

const (
	TapLeft TapDir = iota
	TapRight
)

// TapDriver locates the tap-drive column feeding a fabric location and the
// side of the spine it sits on.
type TapDriver struct {
	Col int
	Dir TapDir
}

// GlobalsInfo describes the device's global clock distribution topology:
// which tap column serves each location, which quadrant each location
// belongs to, and where each quadrant's spine drivers sit. The per-tile
// configuration database does not capture this wiring, so the expansion
// pass has to consult it separately.
type GlobalsInfo struct {
	taps      map[Location]TapDriver
	quadrants map[Location]string
	spines    map[string]map[int]Location
}

// NewGlobalsInfo creates an empty topology table.
func NewGlobalsInfo() *GlobalsInfo {
	return &GlobalsInfo{
		taps:      make(map[Location]TapDriver),
		quadrants: make(map[Location]string),
		spines:    make(map[string]map[int]Location),
	}
}

// SetTapDriver records the tap driver serving (row, col).
func (g *GlobalsInfo) SetTapDriver(row, col int, tap TapDriver) {
	g.taps[Location{X: col, Y: row}] = tap
}

// TapDriver returns the tap driver serving (row, col).
func (g *GlobalsInfo) TapDriver(row, col int) (TapDriver, bool) {
	tap, ok := g.taps[Location{X: col, Y: row}]
	return tap, ok
}

// SetQuadrant records the quadrant name (e.g. "UL") for (row, col).
func (g *GlobalsInfo) SetQuadrant(row, col int, name string) {
	g.quadrants[Location{X: col, Y: row}] = name
}

// Quadrant returns the quadrant name for (row, col), or "" if unknown.
func (g *GlobalsInfo) Quadrant(row, col int) string {
	return g.quadrants[Location{X: col, Y: row}]
}

// SetSpineDriver records the spine driver location for a quadrant/column.
func (g *GlobalsInfo) SetSpineDriver(quadrant string, col int, loc Location) {
	m, ok := g.spines[quadrant]
	if !ok {
		m = make(map[int]Location)
		g.spines[quadrant] = m
	}
	m[col] = loc
}

// SpineDriver returns the location of the spine driver feeding the given
// column within a quadrant.
func (g *GlobalsInfo) SpineDriver(quadrant string, col int) (Location, bool) {
	loc, ok := g.spines[quadrant][col]
	return loc, ok
}

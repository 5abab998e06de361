// Package rgraph holds the connectivity model the pipeline is built around:
// interned identifiers, grid-located nodes, the directed connection graph,
// and connected-component analysis with driver/load discovery.
package rgraph

// Ident is an interned identifier from the routing database: a display
// label paired with the database's integer id. Two idents with the same id
// always carry the same label within one run.
type Ident struct {
	Label string
	ID    int32
}

// IsZero reports whether the ident is the zero value. Identifier 0 is
// reserved as invalid by the routing database, so the zero Ident never
// names a real wire or pin.
func (i Ident) IsZero() bool {
	return i.ID == 0
}

func (i Ident) String() string {
	return i.Label
}

// Interner resolves between identifier labels and database ids. It is
// satisfied by *trellis.RoutingGraph.
type Interner interface {
	IdentOf(label string) int32
	LabelOf(id int32) string
}

// Registry caches Ident values by database id so that interning the same id
// repeatedly yields the same value without re-resolving the label. One
// registry is scoped to one pipeline run; it is not safe for concurrent use.
type Registry struct {
	byID map[int32]Ident
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int32]Ident)}
}

// Intern returns the cached Ident for id, resolving the label on first use.
func (r *Registry) Intern(id int32, in Interner) Ident {
	if ident, ok := r.byID[id]; ok {
		return ident
	}
	ident := Ident{Label: in.LabelOf(id), ID: id}
	r.byID[id] = ident
	return ident
}

// InternLabel interns by label, allocating a database id if the label is new.
func (r *Registry) InternLabel(in Interner, label string) Ident {
	return r.Intern(in.IdentOf(label), in)
}

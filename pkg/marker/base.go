// Package marker implements the persisted marker kinds and the rules for
// reading them from, and writing them to, a confignode document.
package marker

import (
	"sync"

	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

// Marker kind discriminators, written to the "type" key.
const (
	TypeHTML    = "html"
	TypeLine    = "line"
	TypePOI     = "poi"
	TypeShape   = "shape"
	TypeExtrude = "extrude"
)

// Marker is implemented by every marker kind in this package. The set of
// kinds is closed.
type Marker interface {
	ID() string
	Type() string
	Map() core.MapRef
	Position() core.Position3D
	SetPosition(p core.Position3D)
	Label() string
	SetLabel(label string)

	// Dirty reports unsaved in-memory changes.
	Dirty() bool

	// Load populates the marker from n. The map, position and label are
	// always refreshed. The kind's own fields are only replaced when
	// overwriteChanges is set or the marker has no unsaved changes. On error
	// nothing is modified.
	Load(maps MapResolver, n confignode.Node, overwriteChanges bool) error

	// Save writes every field into n and clears the dirty flag.
	Save(n confignode.Node)

	base() *Base
}

var (
	_ Marker = (*HTMLMarker)(nil)
	_ Marker = (*POIMarker)(nil)
	_ Marker = (*LineMarker)(nil)
	_ Marker = (*ShapeMarker)(nil)
	_ Marker = (*ExtrudeMarker)(nil)
)

// MapResolver looks up the map a persisted map id refers to.
type MapResolver interface {
	Map(id string) (core.MapRef, bool)
}

// MapResolverFunc adapts a function to MapResolver
type MapResolverFunc func(id string) (core.MapRef, bool)

func (f MapResolverFunc) Map(id string) (core.MapRef, bool) {
	return f(id)
}

// Base holds the fields shared by all kinds and the per-marker lock that
// guards every field of the embedding kind.
type Base struct {
	mu sync.RWMutex

	id       string
	mapRef   core.MapRef
	position core.Position3D
	label    string
	dirty    bool
}

func (b *Base) init(id string, mapRef core.MapRef, position core.Position3D) {
	b.id = id
	b.mapRef = mapRef
	b.position = position
	b.label = id
	b.dirty = true
}

func (b *Base) base() *Base { return b }

// ID returns the marker id. It never changes.
func (b *Base) ID() string {
	return b.id
}

// Map returns the map the marker is placed on
func (b *Base) Map() core.MapRef {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mapRef
}

// Position returns the marker position
func (b *Base) Position() core.Position3D {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position
}

// SetPosition moves the marker
func (b *Base) SetPosition(p core.Position3D) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = p
	b.dirty = true
}

// Label returns the display label
func (b *Base) Label() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.label
}

// SetLabel changes the display label
func (b *Base) SetLabel(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.label = label
	b.dirty = true
}

// Dirty reports whether the marker changed since it was last saved or loaded.
func (b *Base) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// update runs fn under the marker lock and marks the marker dirty.
func (b *Base) update(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
	b.dirty = true
}

type coreFields struct {
	mapRef   core.MapRef
	position core.Position3D
	label    string
}

// decodeFunc reads the fields owned by a kind. It must not touch the marker;
// the returned commit assigns the decoded values and runs under the lock.
type decodeFunc func(n confignode.Node, label string) (commit func(), err error)

// load decodes the core region and, unless guarded, the kind region. Both
// are validated before anything is assigned.
func (b *Base) load(maps MapResolver, n confignode.Node, overwriteChanges bool, decode decodeFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cf, err := b.decodeCore(maps, n)
	if err != nil {
		return err
	}

	applyKind := overwriteChanges || !b.dirty
	var commit func()
	if applyKind {
		commit, err = decode(n, cf.label)
		if err != nil {
			return err
		}
	}

	b.mapRef = cf.mapRef
	b.position = cf.position
	b.label = cf.label

	if applyKind {
		commit()
		b.dirty = false
	}
	return nil
}

func (b *Base) decodeCore(maps MapResolver, n confignode.Node) (coreFields, error) {
	cf := coreFields{mapRef: b.mapRef, position: b.position, label: b.label}

	if mn := n.Child("map"); !mn.Virtual() {
		id := mn.String("")
		if id == "" {
			return cf, formatError("map", "map id is empty", nil)
		}
		switch {
		case maps == nil:
			cf.mapRef = core.MapRef{ID: id}
		default:
			ref, ok := maps.Map(id)
			if !ok {
				return cf, formatError("map", "unknown map '"+id+"'", nil)
			}
			cf.mapRef = ref
		}
	}

	if pn := n.Child("position"); !pn.Virtual() {
		pos, err := readPosition(pn, "position")
		if err != nil {
			return cf, err
		}
		cf.position = pos
	}

	cf.label = n.Child("label").String(cf.label)
	return cf, nil
}

// save writes the core fields, then the kind fields, and clears dirty.
func (b *Base) save(markerType string, n confignode.Node, encode func(n confignode.Node)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n.Child("id").Set(b.id)
	n.Child("type").Set(markerType)
	if !b.mapRef.IsZero() {
		n.Child("map").Set(b.mapRef.ID)
	}
	writePosition(n.Child("position"), b.position)
	n.Child("label").Set(b.label)
	encode(n)

	b.dirty = false
}

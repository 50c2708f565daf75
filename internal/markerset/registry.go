package markerset

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/OCAP2/markerset/pkg/core"
	"github.com/OCAP2/markerset/pkg/marker"
)

// ErrUnknownType is returned when no constructor is registered for a type
var ErrUnknownType = errors.New("unknown marker type")

// Constructor builds an empty marker of one kind, ready to be loaded.
type Constructor func(id string, mapRef core.MapRef) marker.Marker

// Registry maps type discriminators to marker constructors
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates a registry without any types
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry returns a new registry that knows every marker kind
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(marker.TypeHTML, func(id string, mapRef core.MapRef) marker.Marker {
		return marker.NewHTML(id, mapRef, core.Position3D{}, "")
	})
	r.Register(marker.TypePOI, func(id string, mapRef core.MapRef) marker.Marker {
		return marker.NewPOI(id, mapRef, core.Position3D{})
	})
	r.Register(marker.TypeLine, func(id string, mapRef core.MapRef) marker.Marker {
		m, _ := marker.NewLine(id, mapRef, core.Position3D{}, core.NewLine())
		return m
	})
	r.Register(marker.TypeShape, func(id string, mapRef core.MapRef) marker.Marker {
		m, _ := marker.NewShape(id, mapRef, core.Position3D{}, core.NewShape(), 0)
		return m
	})
	r.Register(marker.TypeExtrude, func(id string, mapRef core.MapRef) marker.Marker {
		m, _ := marker.NewExtrude(id, mapRef, core.Position3D{}, core.NewShape(), 0, 0)
		return m
	})
	return r
}

// Register adds or replaces the constructor for a type
func (r *Registry) Register(markerType string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[markerType] = ctor
}

// New constructs an unloaded marker of the given type
func (r *Registry) New(markerType, id string, mapRef core.MapRef) (marker.Marker, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[markerType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownType, markerType)
	}
	return ctor(id, mapRef), nil
}

// Types lists the registered types in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// NewID returns a random marker id
func NewID() string {
	return uuid.NewString()
}

// Package markerset groups markers into sets and reads and writes whole
// sets and documents of sets.
package markerset

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
	"github.com/OCAP2/markerset/pkg/marker"
)

// ErrDuplicateMarker is returned when a marker id is already part of a set
var ErrDuplicateMarker = errors.New("duplicate marker id")

// Skipped describes a document entry that could not be loaded.
type Skipped struct {
	Index int
	ID    string
	Err   error
}

// LoadReport summarizes a set load.
type LoadReport struct {
	Loaded  []string
	Skipped []Skipped
	Removed []string
}

// Set holds the markers of one marker set, indexed by id. The set lock only
// guards membership and set properties; markers carry their own locks.
type Set struct {
	mu sync.RWMutex

	id            string
	mapRef        core.MapRef
	label         string
	toggleable    bool
	defaultHidden bool
	markers       map[string]marker.Marker
	changed       bool

	registry *Registry
	logger   Logger
}

// New creates an empty, toggleable set
func New(id string, mapRef core.MapRef, opts ...Option) *Set {
	o := buildOptions(opts)
	return &Set{
		id:         id,
		mapRef:     mapRef,
		label:      id,
		toggleable: true,
		markers:    make(map[string]marker.Marker),
		changed:    true,
		registry:   o.registry,
		logger:     o.logger,
	}
}

// ID returns the set id
func (s *Set) ID() string {
	return s.id
}

// Map returns the map new markers of this set are placed on
func (s *Set) Map() core.MapRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapRef
}

// Label returns the display label
func (s *Set) Label() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.label
}

// SetLabel changes the display label
func (s *Set) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	s.changed = true
}

// Toggleable reports whether viewers may hide the set
func (s *Set) Toggleable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toggleable
}

// SetToggleable sets whether viewers may hide the set
func (s *Set) SetToggleable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggleable = v
	s.changed = true
}

// DefaultHidden reports whether the set starts hidden
func (s *Set) DefaultHidden() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultHidden
}

// SetDefaultHidden sets whether the set starts hidden
func (s *Set) SetDefaultHidden(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultHidden = v
	s.changed = true
}

// Add puts m into the set
func (s *Set) Add(m marker.Marker) error {
	if m == nil {
		return fmt.Errorf("%w: marker is nil", marker.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[m.ID()]; ok {
		return fmt.Errorf("%w: '%s'", ErrDuplicateMarker, m.ID())
	}
	s.markers[m.ID()] = m
	s.changed = true
	return nil
}

// Get retrieves a marker by id
func (s *Set) Get(id string) (marker.Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markers[id]
	return m, ok
}

// Remove deletes a marker by id and reports whether it was present
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return false
	}
	delete(s.markers, id)
	s.changed = true
	return true
}

// Markers returns all markers sorted by id
func (s *Set) Markers() []marker.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted()
}

func (s *Set) sorted() []marker.Marker {
	out := make([]marker.Marker, 0, len(s.markers))
	for _, m := range s.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of markers
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// Dirty reports unsaved changes to the set or any of its markers
func (s *Set) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.changed {
		return true
	}
	for _, m := range s.markers {
		if m.Dirty() {
			return true
		}
	}
	return false
}

// Load reads the set from n. A marker that cannot be read is logged and
// skipped; its siblings still load. Set properties follow the same guard as
// marker fields: they are only replaced with overwriteChanges or when the set
// has no unsaved property changes. An unknown map keeps the current one. With
// overwriteChanges, markers missing from n are removed.
func (s *Set) Load(maps marker.MapResolver, n confignode.Node, overwriteChanges bool) LoadReport {
	mapRef, hasMap, err := resolveMap(maps, n.Child("map"))
	if err != nil {
		s.logger.Error("failed to resolve marker set map, keeping current map", "set", s.id, "error", err)
	}
	return s.load(maps, n, mapRef, hasMap, overwriteChanges)
}

func (s *Set) load(maps marker.MapResolver, n confignode.Node, mapRef core.MapRef, hasMap, overwriteChanges bool) LoadReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report LoadReport

	if overwriteChanges || !s.changed {
		if hasMap {
			s.mapRef = mapRef
		}
		s.label = n.Child("label").String(s.label)
		s.toggleable = n.Child("toggleable").Bool(true)
		s.defaultHidden = n.Child("defaultHidden").Bool(false)
		s.changed = false
	}

	seen := make(map[string]bool)
	for i, item := range n.Child("markers").List() {
		id := item.Child("id").String("")
		if id == "" {
			s.skip(&report, i, id, errors.New("marker has no id"))
			continue
		}
		if seen[id] {
			s.skip(&report, i, id, fmt.Errorf("%w: '%s'", ErrDuplicateMarker, id))
			continue
		}
		seen[id] = true

		if err := s.loadMarker(maps, item, id, overwriteChanges); err != nil {
			s.skip(&report, i, id, err)
			continue
		}
		report.Loaded = append(report.Loaded, id)
	}

	if overwriteChanges {
		for id := range s.markers {
			if !seen[id] {
				delete(s.markers, id)
				report.Removed = append(report.Removed, id)
			}
		}
		sort.Strings(report.Removed)
	}

	s.logger.Debug("marker set loaded",
		"set", s.id,
		"loaded", len(report.Loaded),
		"skipped", len(report.Skipped),
		"removed", len(report.Removed))
	return report
}

func (s *Set) loadMarker(maps marker.MapResolver, item confignode.Node, id string, overwriteChanges bool) error {
	markerType := item.Child("type").String("")
	existing, ok := s.markers[id]
	if ok && existing.Type() == markerType {
		return existing.Load(maps, item, overwriteChanges)
	}
	// a changed type is a new marker; keep local edits unless told otherwise
	if ok && !overwriteChanges && existing.Dirty() {
		return nil
	}

	m, err := s.registry.New(markerType, id, s.mapRef)
	if err != nil {
		return err
	}
	if err := m.Load(maps, item, true); err != nil {
		return err
	}
	s.markers[id] = m
	return nil
}

func (s *Set) skip(report *LoadReport, index int, id string, err error) {
	report.Skipped = append(report.Skipped, Skipped{Index: index, ID: id, Err: err})
	s.logger.Error("failed to load marker, skipping",
		"set", s.id,
		"index", index,
		"id", id,
		"error", err)
}

// Save writes the set properties and every marker, in id order, into n.
func (s *Set) Save(n confignode.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.Child("id").Set(s.id)
	if !s.mapRef.IsZero() {
		n.Child("map").Set(s.mapRef.ID)
	}
	n.Child("label").Set(s.label)
	n.Child("toggleable").Set(s.toggleable)
	n.Child("defaultHidden").Set(s.defaultHidden)

	list := n.Child("markers")
	list.Set([]any{})
	for _, m := range s.sorted() {
		m.Save(list.Append())
	}
	s.changed = false
}

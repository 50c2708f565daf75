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

// ErrDuplicateSet is returned when a set id is already part of a document
var ErrDuplicateSet = errors.New("duplicate marker set id")

// DocumentReport summarizes a document load.
type DocumentReport struct {
	Sets        map[string]LoadReport
	SkippedSets []Skipped
	RemovedSets []string
}

// SkippedMarkers counts the markers skipped across all sets.
func (r DocumentReport) SkippedMarkers() int {
	total := 0
	for _, rep := range r.Sets {
		total += len(rep.Skipped)
	}
	return total
}

// Document is the persisted unit: every marker set stored under one name.
type Document struct {
	mu      sync.RWMutex
	sets    map[string]*Set
	changed bool

	o options
}

// NewDocument creates an empty document. Options are passed on to every set
// the document creates.
func NewDocument(opts ...Option) *Document {
	return &Document{
		sets: make(map[string]*Set),
		o:    buildOptions(opts),
	}
}

// CreateSet adds a new, empty set
func (d *Document) CreateSet(id string, mapRef core.MapRef) (*Set, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: set id is empty", marker.ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sets[id]; ok {
		return nil, fmt.Errorf("%w: '%s'", ErrDuplicateSet, id)
	}
	s := d.newSet(id, mapRef)
	d.sets[id] = s
	d.changed = true
	return s, nil
}

func (d *Document) newSet(id string, mapRef core.MapRef) *Set {
	return New(id, mapRef, WithRegistry(d.o.registry), WithLogger(d.o.logger))
}

// Set retrieves a set by id
func (d *Document) Set(id string) (*Set, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sets[id]
	return s, ok
}

// Sets returns all sets sorted by id
func (d *Document) Sets() []*Set {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sorted()
}

func (d *Document) sorted() []*Set {
	out := make([]*Set, 0, len(d.sets))
	for _, s := range d.sets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// RemoveSet deletes a set and reports whether it was present
func (d *Document) RemoveSet(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sets[id]; !ok {
		return false
	}
	delete(d.sets, id)
	d.changed = true
	return true
}

// Dirty reports unsaved changes anywhere in the document
func (d *Document) Dirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.changed {
		return true
	}
	for _, s := range d.sets {
		if s.Dirty() {
			return true
		}
	}
	return false
}

// MarkDirty flags the document as changed, so the next save writes it even
// if no set reports changes. Used after a failed write.
func (d *Document) MarkDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changed = true
}

// Load reads every set under "markerSets". A set without an id, or on an
// unknown map, is skipped and an existing set of that id is left as it is.
// Sets new to the document are loaded in full; existing sets follow the
// overwriteChanges guard. With overwriteChanges, sets missing from the
// document are removed.
func (d *Document) Load(maps marker.MapResolver, root confignode.Node, overwriteChanges bool) DocumentReport {
	d.mu.Lock()
	defer d.mu.Unlock()

	report := DocumentReport{Sets: make(map[string]LoadReport)}
	seen := make(map[string]bool)

	for i, item := range root.Child("markerSets").List() {
		id := item.Child("id").String("")
		if id == "" {
			d.skipSet(&report, i, id, errors.New("marker set has no id"))
			continue
		}
		if seen[id] {
			d.skipSet(&report, i, id, fmt.Errorf("%w: '%s'", ErrDuplicateSet, id))
			continue
		}
		seen[id] = true

		mapRef, hasMap, err := resolveMap(maps, item.Child("map"))
		if err != nil {
			d.skipSet(&report, i, id, err)
			continue
		}

		s, ok := d.sets[id]
		if !ok {
			// a set read from the document has nothing local to protect
			s = d.newSet(id, mapRef)
			d.sets[id] = s
			report.Sets[id] = s.load(maps, item, mapRef, hasMap, true)
			continue
		}
		report.Sets[id] = s.load(maps, item, mapRef, hasMap, overwriteChanges)
	}

	if overwriteChanges {
		for id := range d.sets {
			if !seen[id] {
				delete(d.sets, id)
				report.RemovedSets = append(report.RemovedSets, id)
			}
		}
		sort.Strings(report.RemovedSets)
		d.changed = false
	}

	d.o.logger.Info("marker document loaded",
		"sets", len(report.Sets),
		"skippedSets", len(report.SkippedSets),
		"skippedMarkers", report.SkippedMarkers())
	return report
}

// resolveMap reads the map key of a set. present is false when the key is
// absent or empty.
func resolveMap(maps marker.MapResolver, n confignode.Node) (ref core.MapRef, present bool, err error) {
	id := n.String("")
	if id == "" {
		return core.MapRef{}, false, nil
	}
	if maps == nil {
		return core.MapRef{ID: id}, true, nil
	}
	ref, ok := maps.Map(id)
	if !ok {
		return core.MapRef{}, false, fmt.Errorf("unknown map '%s'", id)
	}
	return ref, true, nil
}

func (d *Document) skipSet(report *DocumentReport, index int, id string, err error) {
	report.SkippedSets = append(report.SkippedSets, Skipped{Index: index, ID: id, Err: err})
	d.o.logger.Error("failed to load marker set, skipping", "index", index, "id", id, "error", err)
}

// Save writes every set, in id order, into a fresh "markerSets" list.
func (d *Document) Save(root confignode.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := root.Child("markerSets")
	list.Set([]any{})
	for _, s := range d.sorted() {
		s.Save(list.Append())
	}
	d.changed = false
}

// Tree saves the document into a new tree
func (d *Document) Tree() *confignode.Tree {
	t := confignode.New()
	d.Save(t.Root())
	return t
}

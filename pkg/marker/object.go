package marker

import (
	"github.com/OCAP2/markerset/pkg/confignode"
)

// Visibility defaults for object markers.
const (
	DefaultMinDistance = 0.0
	DefaultMaxDistance = 100000.0
)

// objectFields are shared by the spatially extended kinds.
type objectFields struct {
	detail      string
	link        string
	newTab      bool
	minDistance float64
	maxDistance float64
}

// Object is embedded by line, shape and extrude markers. Its fields are
// guarded by the marker lock.
type Object struct {
	Base
	obj objectFields
}

func (o *Object) init(id string) {
	o.obj = objectFields{
		detail:      id,
		minDistance: DefaultMinDistance,
		maxDistance: DefaultMaxDistance,
	}
}

// Detail returns the detail text, shown when the marker is clicked
func (o *Object) Detail() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.obj.detail
}

// SetDetail sets the detail text
func (o *Object) SetDetail(detail string) {
	o.update(func() { o.obj.detail = detail })
}

// Link returns the link target and whether it opens in a new tab
func (o *Object) Link() (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.obj.link, o.obj.newTab
}

// SetLink sets the link target. An empty link removes it.
func (o *Object) SetLink(link string, newTab bool) {
	o.update(func() {
		o.obj.link = link
		o.obj.newTab = newTab && link != ""
	})
}

// Distances returns the render distance range
func (o *Object) Distances() (minDistance, maxDistance float64) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.obj.minDistance, o.obj.maxDistance
}

// SetDistances sets the render distance range. The marker is only shown
// while the camera is between min and max.
func (o *Object) SetDistances(minDistance, maxDistance float64) error {
	if minDistance < 0 || maxDistance < minDistance {
		return invalidArgument("distance range [%g, %g]", minDistance, maxDistance)
	}
	o.update(func() {
		o.obj.minDistance = minDistance
		o.obj.maxDistance = maxDistance
	})
	return nil
}

func decodeObject(n confignode.Node, label string) (objectFields, error) {
	f := objectFields{
		detail:      n.Child("detail").String(label),
		link:        n.Child("link").String(""),
		minDistance: n.Child("minDistance").Float64(DefaultMinDistance),
		maxDistance: n.Child("maxDistance").Float64(DefaultMaxDistance),
	}
	f.newTab = f.link != "" && n.Child("newTab").Bool(false)

	if f.minDistance < 0 {
		return f, formatError("minDistance", "must not be negative", nil)
	}
	if f.maxDistance < f.minDistance {
		return f, formatError("maxDistance", "must not be lower than minDistance", nil)
	}
	return f, nil
}

func encodeObject(n confignode.Node, f objectFields) {
	n.Child("detail").Set(f.detail)
	if f.link != "" {
		n.Child("link").Set(f.link)
		n.Child("newTab").Set(f.newTab)
	} else {
		n.Child("link").Set(nil)
		n.Child("newTab").Set(nil)
	}
	n.Child("minDistance").Set(f.minDistance)
	n.Child("maxDistance").Set(f.maxDistance)
}

package marker

import (
	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

// DefaultIcon is used by POI markers that do not name an icon.
const DefaultIcon = "assets/poi.svg"

// POIMarker is a point of interest shown as an icon
type POIMarker struct {
	Base
	icon   string
	anchor core.Anchor
}

// NewPOI creates a poi marker with the default icon and anchor
func NewPOI(id string, mapRef core.MapRef, position core.Position3D) *POIMarker {
	m := &POIMarker{icon: DefaultIcon, anchor: core.DefaultAnchor}
	m.init(id, mapRef, position)
	return m
}

// Type returns "poi"
func (m *POIMarker) Type() string { return TypePOI }

// Icon returns the icon address and its anchor
func (m *POIMarker) Icon() (string, core.Anchor) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.icon, m.anchor
}

// SetIcon sets the icon address and anchor
func (m *POIMarker) SetIcon(icon string, anchor core.Anchor) error {
	if icon == "" {
		return invalidArgument("icon must not be empty")
	}
	m.update(func() {
		m.icon = icon
		m.anchor = anchor
	})
	return nil
}

// Load implements Marker
func (m *POIMarker) Load(maps MapResolver, n confignode.Node, overwriteChanges bool) error {
	return m.load(maps, n, overwriteChanges, func(n confignode.Node, _ string) (func(), error) {
		icon := n.Child("icon").String(DefaultIcon)
		if icon == "" {
			icon = DefaultIcon
		}
		anchor := readAnchor(n.Child("anchor"))
		return func() {
			m.icon = icon
			m.anchor = anchor
		}, nil
	})
}

// Save implements Marker
func (m *POIMarker) Save(n confignode.Node) {
	m.save(TypePOI, n, func(n confignode.Node) {
		n.Child("icon").Set(m.icon)
		writeAnchor(n.Child("anchor"), m.anchor)
	})
}

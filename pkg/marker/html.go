package marker

import (
	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

// HTMLMarker places free-form html at a position on the map
type HTMLMarker struct {
	Base
	html   string
	anchor core.Anchor
}

// NewHTML creates an html marker with the default anchor
func NewHTML(id string, mapRef core.MapRef, position core.Position3D, html string) *HTMLMarker {
	m := &HTMLMarker{html: html, anchor: core.DefaultAnchor}
	m.init(id, mapRef, position)
	return m
}

// Type returns "html"
func (m *HTMLMarker) Type() string { return TypeHTML }

// HTML returns the html content
func (m *HTMLMarker) HTML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.html
}

// SetHTML replaces the html content
func (m *HTMLMarker) SetHTML(html string) {
	m.update(func() { m.html = html })
}

// Anchor returns the pixel offset of the content relative to the position
func (m *HTMLMarker) Anchor() core.Anchor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.anchor
}

// SetAnchor sets the pixel offset
func (m *HTMLMarker) SetAnchor(a core.Anchor) {
	m.update(func() { m.anchor = a })
}

// Load implements Marker
func (m *HTMLMarker) Load(maps MapResolver, n confignode.Node, overwriteChanges bool) error {
	return m.load(maps, n, overwriteChanges, func(n confignode.Node, _ string) (func(), error) {
		html := n.Child("html").String("")
		anchor := readAnchor(n.Child("anchor"))
		return func() {
			m.html = html
			m.anchor = anchor
		}, nil
	})
}

// Save implements Marker
func (m *HTMLMarker) Save(n confignode.Node) {
	m.save(TypeHTML, n, func(n confignode.Node) {
		n.Child("html").Set(m.html)
		writeAnchor(n.Child("anchor"), m.anchor)
	})
}

package marker

import (
	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

// Styling defaults shared by line, shape and extrude markers.
const (
	DefaultLineWidth = 2
	DefaultDepthTest = true
)

var (
	// DefaultLineColor is red at roughly 78% opacity.
	DefaultLineColor = core.RGBA(255, 0, 0, 200)
	// DefaultFillColor is a dimmer, more transparent red.
	DefaultFillColor = core.RGBA(200, 0, 0, 100)
)

// LineMarker draws a polyline through the world
type LineMarker struct {
	Object
	line      core.Line
	depthTest bool
	lineWidth int
	lineColor core.Color
}

// NewLine creates a line marker with default styling. line must not be nil.
func NewLine(id string, mapRef core.MapRef, position core.Position3D, line core.Line) (*LineMarker, error) {
	if line.IsNil() {
		return nil, invalidArgument("line must not be nil")
	}
	m := &LineMarker{
		line:      line,
		depthTest: DefaultDepthTest,
		lineWidth: DefaultLineWidth,
		lineColor: DefaultLineColor,
	}
	m.Base.init(id, mapRef, position)
	m.Object.init(id)
	return m, nil
}

// Type returns "line"
func (m *LineMarker) Type() string { return TypeLine }

// Line returns the polyline
func (m *LineMarker) Line() core.Line {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.line
}

// SetLine replaces the polyline. Short lines are accepted here and only
// rejected when read back from a document.
func (m *LineMarker) SetLine(line core.Line) error {
	if line.IsNil() {
		return invalidArgument("line must not be nil")
	}
	m.update(func() { m.line = line })
	return nil
}

// DepthTestEnabled reports whether the line is hidden behind terrain
func (m *LineMarker) DepthTestEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.depthTest
}

// SetDepthTestEnabled toggles depth testing
func (m *LineMarker) SetDepthTestEnabled(enabled bool) {
	m.update(func() { m.depthTest = enabled })
}

// LineWidth returns the stroke width in pixels
func (m *LineMarker) LineWidth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lineWidth
}

// SetLineWidth sets the stroke width
func (m *LineMarker) SetLineWidth(width int) error {
	if width < 0 {
		return invalidArgument("line width %d is negative", width)
	}
	m.update(func() { m.lineWidth = width })
	return nil
}

// LineColor returns the stroke color
func (m *LineMarker) LineColor() core.Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lineColor
}

// SetLineColor sets the stroke color
func (m *LineMarker) SetLineColor(c core.Color) {
	m.update(func() { m.lineColor = c })
}

// Load implements Marker
func (m *LineMarker) Load(maps MapResolver, n confignode.Node, overwriteChanges bool) error {
	return m.load(maps, n, overwriteChanges, func(n confignode.Node, label string) (func(), error) {
		obj, err := decodeObject(n, label)
		if err != nil {
			return nil, err
		}
		line, err := readLine(n.Child("line"))
		if err != nil {
			return nil, err
		}
		st, err := decodeStroke(n)
		if err != nil {
			return nil, err
		}
		return func() {
			m.obj = obj
			m.line = line
			m.depthTest = st.depthTest
			m.lineWidth = st.lineWidth
			m.lineColor = st.lineColor
		}, nil
	})
}

// Save implements Marker
func (m *LineMarker) Save(n confignode.Node) {
	m.save(TypeLine, n, func(n confignode.Node) {
		encodeObject(n, m.obj)
		writeLine(n.Child("line"), m.line)
		encodeStroke(n, stroke{depthTest: m.depthTest, lineWidth: m.lineWidth, lineColor: m.lineColor})
	})
}

type stroke struct {
	depthTest bool
	lineWidth int
	lineColor core.Color
}

func decodeStroke(n confignode.Node) (stroke, error) {
	st := stroke{
		depthTest: n.Child("depthTest").Bool(DefaultDepthTest),
		lineWidth: n.Child("lineWidth").Int(DefaultLineWidth),
	}
	if st.lineWidth < 0 {
		return st, formatError("lineWidth", "must not be negative", nil)
	}
	c, err := readColor(n.Child("lineColor"), "lineColor", DefaultLineColor)
	if err != nil {
		return st, err
	}
	st.lineColor = c
	return st, nil
}

func encodeStroke(n confignode.Node, st stroke) {
	n.Child("depthTest").Set(st.depthTest)
	n.Child("lineWidth").Set(st.lineWidth)
	writeColor(n.Child("lineColor"), st.lineColor)
}

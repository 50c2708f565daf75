package marker

import (
	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

// fill holds the styling of shape and extrude markers.
type fill struct {
	stroke
	fillColor core.Color
}

func defaultFill() fill {
	return fill{
		stroke: stroke{
			depthTest: DefaultDepthTest,
			lineWidth: DefaultLineWidth,
			lineColor: DefaultLineColor,
		},
		fillColor: DefaultFillColor,
	}
}

func decodeFill(n confignode.Node) (fill, error) {
	st, err := decodeStroke(n)
	if err != nil {
		return fill{}, err
	}
	c, err := readColor(n.Child("fillColor"), "fillColor", DefaultFillColor)
	if err != nil {
		return fill{}, err
	}
	return fill{stroke: st, fillColor: c}, nil
}

func encodeFill(n confignode.Node, f fill) {
	encodeStroke(n, f.stroke)
	writeColor(n.Child("fillColor"), f.fillColor)
}

// styled exposes the fill accessors shared by ShapeMarker and ExtrudeMarker.
type styled struct {
	Object
	style fill
}

// DepthTestEnabled reports whether the marker is hidden behind terrain
func (s *styled) DepthTestEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style.depthTest
}

// SetDepthTestEnabled toggles depth testing
func (s *styled) SetDepthTestEnabled(enabled bool) {
	s.update(func() { s.style.depthTest = enabled })
}

// LineWidth returns the border width in pixels
func (s *styled) LineWidth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style.lineWidth
}

// SetLineWidth sets the border width
func (s *styled) SetLineWidth(width int) error {
	if width < 0 {
		return invalidArgument("line width %d is negative", width)
	}
	s.update(func() { s.style.lineWidth = width })
	return nil
}

// LineColor returns the border color
func (s *styled) LineColor() core.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style.lineColor
}

// SetLineColor sets the border color
func (s *styled) SetLineColor(c core.Color) {
	s.update(func() { s.style.lineColor = c })
}

// FillColor returns the area color
func (s *styled) FillColor() core.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style.fillColor
}

// SetFillColor sets the area color
func (s *styled) SetFillColor(c core.Color) {
	s.update(func() { s.style.fillColor = c })
}

// ShapeMarker is a flat polygon at a fixed height
type ShapeMarker struct {
	styled
	shape  core.Shape
	shapeY float64
}

// NewShape creates a shape marker. shape must not be nil.
func NewShape(id string, mapRef core.MapRef, position core.Position3D, shape core.Shape, y float64) (*ShapeMarker, error) {
	if shape.IsNil() {
		return nil, invalidArgument("shape must not be nil")
	}
	m := &ShapeMarker{shape: shape, shapeY: y}
	m.style = defaultFill()
	m.Base.init(id, mapRef, position)
	m.Object.init(id)
	return m, nil
}

// Type returns "shape"
func (m *ShapeMarker) Type() string { return TypeShape }

// Shape returns the polygon and its height
func (m *ShapeMarker) Shape() (core.Shape, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shape, m.shapeY
}

// SetShape replaces the polygon and its height
func (m *ShapeMarker) SetShape(shape core.Shape, y float64) error {
	if shape.IsNil() {
		return invalidArgument("shape must not be nil")
	}
	m.update(func() {
		m.shape = shape
		m.shapeY = y
	})
	return nil
}

// Load implements Marker
func (m *ShapeMarker) Load(maps MapResolver, n confignode.Node, overwriteChanges bool) error {
	return m.load(maps, n, overwriteChanges, func(n confignode.Node, label string) (func(), error) {
		obj, err := decodeObject(n, label)
		if err != nil {
			return nil, err
		}
		shape, err := readShape(n.Child("shape"))
		if err != nil {
			return nil, err
		}
		ny := n.Child("shapeY")
		if ny.Virtual() {
			return nil, formatError("shapeY", "node is not set", nil)
		}
		y := ny.Float64(0)
		style, err := decodeFill(n)
		if err != nil {
			return nil, err
		}
		return func() {
			m.obj = obj
			m.shape = shape
			m.shapeY = y
			m.style = style
		}, nil
	})
}

// Save implements Marker
func (m *ShapeMarker) Save(n confignode.Node) {
	m.save(TypeShape, n, func(n confignode.Node) {
		encodeObject(n, m.obj)
		writeShape(n.Child("shape"), m.shape)
		n.Child("shapeY").Set(round3(m.shapeY))
		encodeFill(n, m.style)
	})
}

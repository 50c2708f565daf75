package marker

import (
	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

// ExtrudeMarker is a polygon extruded between two heights
type ExtrudeMarker struct {
	styled
	shape core.Shape
	minY  float64
	maxY  float64
}

// NewExtrude creates an extrude marker. shape must not be nil and minY must
// not exceed maxY.
func NewExtrude(id string, mapRef core.MapRef, position core.Position3D, shape core.Shape, minY, maxY float64) (*ExtrudeMarker, error) {
	if err := checkExtrude(shape, minY, maxY); err != nil {
		return nil, err
	}
	m := &ExtrudeMarker{shape: shape, minY: minY, maxY: maxY}
	m.style = defaultFill()
	m.Base.init(id, mapRef, position)
	m.Object.init(id)
	return m, nil
}

func checkExtrude(shape core.Shape, minY, maxY float64) error {
	if shape.IsNil() {
		return invalidArgument("shape must not be nil")
	}
	if minY > maxY {
		return invalidArgument("minY %g is above maxY %g", minY, maxY)
	}
	return nil
}

// Type returns "extrude"
func (m *ExtrudeMarker) Type() string { return TypeExtrude }

// Shape returns the polygon and its height range
func (m *ExtrudeMarker) Shape() (shape core.Shape, minY, maxY float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shape, m.minY, m.maxY
}

// SetShape replaces the polygon and its height range
func (m *ExtrudeMarker) SetShape(shape core.Shape, minY, maxY float64) error {
	if err := checkExtrude(shape, minY, maxY); err != nil {
		return err
	}
	m.update(func() {
		m.shape = shape
		m.minY = minY
		m.maxY = maxY
	})
	return nil
}

// Load implements Marker
func (m *ExtrudeMarker) Load(maps MapResolver, n confignode.Node, overwriteChanges bool) error {
	return m.load(maps, n, overwriteChanges, func(n confignode.Node, label string) (func(), error) {
		obj, err := decodeObject(n, label)
		if err != nil {
			return nil, err
		}
		shape, err := readShape(n.Child("shape"))
		if err != nil {
			return nil, err
		}
		nmin, nmax := n.Child("shapeMinY"), n.Child("shapeMaxY")
		if nmin.Virtual() || nmax.Virtual() {
			return nil, formatError("shapeMinY", "node shapeMinY or shapeMaxY is not set", nil)
		}
		minY, maxY := nmin.Float64(0), nmax.Float64(0)
		if minY > maxY {
			return nil, formatError("shapeMinY", "shapeMinY is above shapeMaxY", nil)
		}
		style, err := decodeFill(n)
		if err != nil {
			return nil, err
		}
		return func() {
			m.obj = obj
			m.shape = shape
			m.minY = minY
			m.maxY = maxY
			m.style = style
		}, nil
	})
}

// Save implements Marker
func (m *ExtrudeMarker) Save(n confignode.Node) {
	m.save(TypeExtrude, n, func(n confignode.Node) {
		encodeObject(n, m.obj)
		writeShape(n.Child("shape"), m.shape)
		n.Child("shapeMinY").Set(round3(m.minY))
		n.Child("shapeMaxY").Set(round3(m.maxY))
		encodeFill(n, m.style)
	})
}

package geo

import (
	"github.com/OCAP2/markerset/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Bounds accumulates the map plane extent of marker geometry.
// The zero value is empty.
type Bounds struct {
	env geom.Envelope
}

// AddPosition extends the bounds by a single position
func (b *Bounds) AddPosition(p core.Position3D) {
	b.env = b.env.ExpandToIncludeXY(geom.XY{X: p.X, Y: p.Z})
}

// AddLine extends the bounds by every point of a line
func (b *Bounds) AddLine(l core.Line) {
	for i := 0; i < l.Len(); i++ {
		b.AddPosition(l.Point(i))
	}
}

// AddShape extends the bounds by every corner of a shape
func (b *Bounds) AddShape(s core.Shape) {
	for i := 0; i < s.Len(); i++ {
		p := s.Point(i)
		b.env = b.env.ExpandToIncludeXY(geom.XY{X: p.X, Y: p.Y})
	}
}

// MinMax returns the lower and upper corners. ok is false while nothing was
// added.
func (b *Bounds) MinMax() (lo, hi core.Position2D, ok bool) {
	minXY, maxXY, ok := b.env.MinMaxXYs()
	if !ok {
		return core.Position2D{}, core.Position2D{}, false
	}
	return core.Position2D{X: minXY.X, Y: minXY.Y}, core.Position2D{X: maxXY.X, Y: maxXY.Y}, true
}

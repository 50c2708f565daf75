// pkg/core/geometry.go
package core

// Line is an ordered polyline of world positions.
// The zero value is a nil line; use NewLine to build one.
type Line struct {
	points []Position3D
}

// NewLine copies points into a new Line
func NewLine(points ...Position3D) Line {
	cp := make([]Position3D, len(points))
	copy(cp, points)
	return Line{points: cp}
}

// IsNil reports whether the line was never built with NewLine
func (l Line) IsNil() bool {
	return l.points == nil
}

// Len returns the number of points
func (l Line) Len() int {
	return len(l.points)
}

// Point returns the point at index i
func (l Line) Point(i int) Position3D {
	return l.points[i]
}

// Points returns a copy of all points
func (l Line) Points() []Position3D {
	if l.points == nil {
		return nil
	}
	cp := make([]Position3D, len(l.points))
	copy(cp, l.points)
	return cp
}

// Shape is a polygon on the horizontal map plane.
// The zero value is a nil shape; use NewShape to build one.
type Shape struct {
	points []Position2D
}

// NewShape copies points into a new Shape
func NewShape(points ...Position2D) Shape {
	cp := make([]Position2D, len(points))
	copy(cp, points)
	return Shape{points: cp}
}

// IsNil reports whether the shape was never built with NewShape
func (s Shape) IsNil() bool {
	return s.points == nil
}

// Len returns the number of points
func (s Shape) Len() int {
	return len(s.points)
}

// Point returns the point at index i
func (s Shape) Point(i int) Position2D {
	return s.points[i]
}

// Points returns a copy of all points
func (s Shape) Points() []Position2D {
	if s.points == nil {
		return nil
	}
	cp := make([]Position2D, len(s.points))
	copy(cp, s.points)
	return cp
}

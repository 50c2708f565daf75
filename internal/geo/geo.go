package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OCAP2/markerset/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Marker geometry lives in world block coordinates. Measurements are taken
// on the horizontal map plane, x against z; heights are ignored.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses a "x,y,z" string into a core.Position3D.
// A missing z defaults to 0.
func Position3DFromString(coords string) (core.Position3D, error) {
	coords = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(coords), "["), "]")
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 || len(coordsSplit) > 3 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var vals [3]float64
	for i, s := range coordsSplit {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
		vals[i] = v
	}
	return core.Position3D{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// Point projects a position onto the map plane
func Point(p core.Position3D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Z},
		Type: geom.DimXY,
	})
}

// LineString projects a marker line onto the map plane
func LineString(l core.Line) geom.LineString {
	flat := make([]float64, 0, l.Len()*2)
	for i := 0; i < l.Len(); i++ {
		p := l.Point(i)
		flat = append(flat, p.X, p.Z)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}

// LineLength returns the length of the line on the map plane
func LineLength(l core.Line) float64 {
	if l.Len() < 2 {
		return 0
	}
	return LineString(l).Length()
}

// Polygon closes a marker shape into a polygon ring
func Polygon(s core.Shape) geom.Polygon {
	if s.Len() == 0 {
		return geom.Polygon{}
	}
	flat := make([]float64, 0, (s.Len()+1)*2)
	for i := 0; i < s.Len(); i++ {
		p := s.Point(i)
		flat = append(flat, p.X, p.Y)
	}
	first := s.Point(0)
	flat = append(flat, first.X, first.Y)

	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ring})
}

// ShapeArea returns the enclosed area of a shape in square blocks
func ShapeArea(s core.Shape) float64 {
	if s.Len() < 3 {
		return 0
	}
	return Polygon(s).Area()
}

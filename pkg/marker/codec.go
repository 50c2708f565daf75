package marker

import (
	"fmt"
	"math"

	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

// minPoints is the smallest point count accepted for lines and shapes.
const minPoints = 3

// round3 rounds to three decimals, half away from zero.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func readPosition(n confignode.Node, field string) (core.Position3D, error) {
	nx, ny, nz := n.Child("x"), n.Child("y"), n.Child("z")
	if nx.Virtual() || ny.Virtual() || nz.Virtual() {
		return core.Position3D{}, formatError(field, "node x, y or z is not set", nil)
	}
	return core.Position3D{
		X: nx.Float64(0),
		Y: ny.Float64(0),
		Z: nz.Float64(0),
	}, nil
}

func writePosition(n confignode.Node, p core.Position3D) {
	n.Child("x").Set(p.X)
	n.Child("y").Set(p.Y)
	n.Child("z").Set(p.Z)
}

func readAnchor(n confignode.Node) core.Anchor {
	return core.Anchor{
		X: n.Child("x").Int(core.DefaultAnchor.X),
		Y: n.Child("y").Int(core.DefaultAnchor.Y),
	}
}

func writeAnchor(n confignode.Node, a core.Anchor) {
	n.Child("x").Set(a.X)
	n.Child("y").Set(a.Y)
}

func readLine(n confignode.Node) (core.Line, error) {
	items := n.List()
	if len(items) < minPoints {
		// the message predates the three point minimum and is kept as is
		return core.Line{}, formatError("line", "point-list has fewer than 2 entries", nil)
	}

	points := make([]core.Position3D, len(items))
	for i, item := range items {
		p, err := readPosition(item, fmt.Sprintf("line position %d", i))
		if err != nil {
			return core.Line{}, err
		}
		points[i] = p
	}
	return core.NewLine(points...), nil
}

// writeLine replaces the list in n with the rounded points of l.
func writeLine(n confignode.Node, l core.Line) {
	n.Set([]any{})
	for i := 0; i < l.Len(); i++ {
		p := l.Point(i)
		item := n.Append()
		item.Child("x").Set(round3(p.X))
		item.Child("y").Set(round3(p.Y))
		item.Child("z").Set(round3(p.Z))
	}
}

func readShape(n confignode.Node) (core.Shape, error) {
	items := n.List()
	if len(items) < minPoints {
		return core.Shape{}, formatError("shape", "point-list has fewer than 3 entries", nil)
	}

	points := make([]core.Position2D, len(items))
	for i, item := range items {
		nx, nz := item.Child("x"), item.Child("z")
		if nx.Virtual() || nz.Virtual() {
			return core.Shape{}, formatError(fmt.Sprintf("shape position %d", i), "node x or z is not set", nil)
		}
		points[i] = core.Position2D{X: nx.Float64(0), Y: nz.Float64(0)}
	}
	return core.NewShape(points...), nil
}

func writeShape(n confignode.Node, s core.Shape) {
	n.Set([]any{})
	for i := 0; i < s.Len(); i++ {
		p := s.Point(i)
		item := n.Append()
		item.Child("x").Set(round3(p.X))
		item.Child("z").Set(round3(p.Y))
	}
}

// readColor decodes an r,g,b,a color node. An absent node yields def, a
// present one must carry r, g and b.
func readColor(n confignode.Node, field string, def core.Color) (core.Color, error) {
	if n.Virtual() {
		return def, nil
	}

	nr, ng, nb, na := n.Child("r"), n.Child("g"), n.Child("b"), n.Child("a")
	if nr.Virtual() || ng.Virtual() || nb.Virtual() {
		return core.Color{}, formatError(field, "node r, g or b is not set", nil)
	}

	alpha := na.Float64(1)
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return core.Color{}, formatError(field, "alpha value out of range (0-1)", nil)
	}

	c, err := core.NewColor(nr.Int(0), ng.Int(0), nb.Int(0), int(math.Round(alpha*255)))
	if err != nil {
		return core.Color{}, formatError(field, "invalid color", err)
	}
	return c, nil
}

func writeColor(n confignode.Node, c core.Color) {
	n.Child("r").Set(int(c.R))
	n.Child("g").Set(int(c.G))
	n.Child("b").Set(int(c.B))
	n.Child("a").Set(c.AlphaFraction())
}

package marker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
)

var testMap = core.MapRef{ID: "world", World: "overworld"}

func parseNode(t *testing.T, src string) confignode.Node {
	t.Helper()
	tree, err := confignode.Unmarshal([]byte(src))
	require.NoError(t, err)
	return tree.Root()
}

func saved(m Marker) confignode.Node {
	tree := confignode.New()
	m.Save(tree.Root())
	return tree.Root()
}

func triangle() core.Line {
	return core.NewLine(
		core.Position3D{X: 0, Y: 0, Z: 0},
		core.Position3D{X: 1, Y: 0, Z: 0},
		core.Position3D{X: 1, Y: 1, Z: 0},
	)
}

func square() core.Shape {
	return core.NewShape(
		core.Position2D{X: 0, Y: 0},
		core.Position2D{X: 10, Y: 0},
		core.Position2D{X: 10, Y: 10},
		core.Position2D{X: 0, Y: 10},
	)
}

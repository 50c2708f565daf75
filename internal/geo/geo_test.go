package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/markerset/pkg/core"
)

func TestPosition3DFromString(t *testing.T) {
	tests := []struct {
		input   string
		want    core.Position3D
		wantErr bool
	}{
		{input: "100.5,64,-200.25", want: core.Position3D{X: 100.5, Y: 64, Z: -200.25}},
		{input: "[1, 2, 3]", want: core.Position3D{X: 1, Y: 2, Z: 3}},
		{input: "1,2", want: core.Position3D{X: 1, Y: 2}},
		{input: "1", wantErr: true},
		{input: "1,2,3,4", wantErr: true},
		{input: "a,b,c", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Position3DFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCoordinates))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoint_UsesMapPlane(t *testing.T) {
	coords, ok := Point(core.Position3D{X: 1, Y: 64, Z: 2}).Coordinates()
	require.True(t, ok)
	assert.Equal(t, 1.0, coords.X)
	assert.Equal(t, 2.0, coords.Y)
}

func TestLineLength(t *testing.T) {
	l := core.NewLine(
		core.Position3D{X: 0, Y: 0, Z: 0},
		core.Position3D{X: 3, Y: 100, Z: 4},
		core.Position3D{X: 3, Y: 0, Z: 10},
	)
	assert.InDelta(t, 11.0, LineLength(l), 1e-9, "height does not count")
	assert.Equal(t, 0.0, LineLength(core.NewLine(core.Position3D{X: 1})))
}

func TestShapeArea(t *testing.T) {
	square := core.NewShape(
		core.Position2D{X: 0, Y: 0},
		core.Position2D{X: 10, Y: 0},
		core.Position2D{X: 10, Y: 10},
		core.Position2D{X: 0, Y: 10},
	)
	assert.InDelta(t, 100.0, ShapeArea(square), 1e-9)
	assert.Equal(t, 0.0, ShapeArea(core.NewShape(core.Position2D{}, core.Position2D{X: 1})))
}

func TestBounds(t *testing.T) {
	var b Bounds
	_, _, ok := b.MinMax()
	assert.False(t, ok)

	b.AddPosition(core.Position3D{X: 5, Y: 70, Z: 5})
	b.AddLine(core.NewLine(core.Position3D{X: -3, Z: 8}, core.Position3D{X: 2, Z: -1}))
	b.AddShape(core.NewShape(core.Position2D{X: 20, Y: 0}))

	lo, hi, ok := b.MinMax()
	require.True(t, ok)
	assert.Equal(t, core.Position2D{X: -3, Y: -1}, lo)
	assert.Equal(t, core.Position2D{X: 20, Y: 8}, hi)
}

// pkg/core/types.go
package core

// Position3D represents a world coordinate
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"` // height
	Z float64 `json:"z"`
}

// Position2D is a point on the horizontal map plane. Y holds the world z axis.
type Position2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Anchor is an integer pixel offset used to place html and icon markers
type Anchor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DefaultAnchor is the offset used when a marker does not define one.
var DefaultAnchor = Anchor{X: 25, Y: 45}

// MapRef identifies the map a marker is placed on.
// Markers only carry the reference, the map itself lives elsewhere.
type MapRef struct {
	ID    string `json:"id"`
	World string `json:"world,omitempty"`
}

// IsZero reports whether the reference points at no map
func (m MapRef) IsZero() bool {
	return m.ID == ""
}

// pkg/core/color.go
package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrColorOutOfRange is returned when a channel does not fit into 0-255
var ErrColorOutOfRange = errors.New("color channel out of range")

// Color is an RGBA color with 8 bits per channel
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// NewColor validates the channels and builds a Color.
func NewColor(r, g, b, a int) (Color, error) {
	for _, ch := range []struct {
		name  string
		value int
	}{{"red", r}, {"green", g}, {"blue", b}, {"alpha", a}} {
		if ch.value < 0 || ch.value > 255 {
			return Color{}, fmt.Errorf("%w: %s=%d", ErrColorOutOfRange, ch.name, ch.value)
		}
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, nil
}

// RGBA builds a Color from channels that are known to be in range
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// AlphaByte converts an opacity fraction in [0,1] to a channel value.
// Values outside the range are clamped.
func AlphaByte(fraction float64) uint8 {
	if fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return 255
	}
	return uint8(math.Round(fraction * 255))
}

// AlphaFraction returns the opacity as a fraction of 255
func (c Color) AlphaFraction() float32 {
	return float32(c.A) / 255
}

// String renders the color as a css rgba() value
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, c.AlphaFraction())
}

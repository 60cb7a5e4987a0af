package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Rect is an axis-aligned rectangle in PDF user space.
// (X0, Y0) is the lower-left corner and (X1, Y1) the upper-right one.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Union returns the smallest rectangle containing both r and other.
// An empty r is treated as the identity.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	return Rect{
		X0: min(r.X0, other.X0),
		Y0: min(r.Y0, other.Y0),
		X1: max(r.X1, other.X1),
		Y1: max(r.Y1, other.Y1),
	}
}

// Color is an RGB colour with components in the range [0, 1],
// the form PDF annotation dictionaries expect.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Red is the default highlight stroke colour.
var Red = Color{R: 1, G: 0, B: 0}

// ErrInvalidColor is returned by ParseColor for malformed input.
var ErrInvalidColor = errors.New("invalid color: expected \"r,g,b\" with components in [0,1]")

// ParseColor parses a colour written as "r,g,b" with each component in [0, 1].
func ParseColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, ErrInvalidColor
	}

	var comps [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 || v > 1 {
			return Color{}, ErrInvalidColor
		}
		comps[i] = v
	}
	return Color{R: comps[0], G: comps[1], B: comps[2]}, nil
}

// String formats the colour in the form accepted by ParseColor.
func (c Color) String() string {
	return fmt.Sprintf("%s,%s,%s", formatComponent(c.R), formatComponent(c.G), formatComponent(c.B))
}

func formatComponent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

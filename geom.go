package paint

import "math"

// Rect is an axis-aligned rectangle in device-independent pixels.
// X and Y locate the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a rectangle from its top-left corner and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersects reports whether r and other overlap.
// Rectangles that merely share an edge are considered intersecting,
// matching the open-interval test
// NOT (a.right < b.left OR b.right < a.left OR a.bottom < b.top OR b.bottom < a.top).
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right() < other.X || other.Right() < r.X ||
		r.Bottom() < other.Y || other.Bottom() < r.Y)
}

// Union returns the minimal rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Intersect returns the overlapping region of r and other.
// Returns a zero Rect if they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x := math.Max(r.X, other.X)
	y := math.Max(r.Y, other.Y)
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	if right <= x || bottom <= y {
		return Rect{}
	}
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Transform describes how a layer's content maps onto its parent:
// translate, then rotate about the origin point, then scale.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	Rotation   float64 `json:"rotation"` // radians
	OriginX    float64 `json:"originX"`
	OriginY    float64 `json:"originY"`
}

// IdentityTransform returns the transform that maps content unchanged.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// IsIdentity returns true if the transform has no effect.
func (t Transform) IsIdentity() bool {
	return t.TranslateX == 0 && t.TranslateY == 0 &&
		t.ScaleX == 1 && t.ScaleY == 1 && t.Rotation == 0
}

// HasRotationOrScale returns true if the transform rotates or scales.
// Pure translation does not count: translated content can be composited
// by blitting, while rotation and scale need resampling.
func (t Transform) HasRotationOrScale() bool {
	return t.Rotation != 0 || t.ScaleX != 1 || t.ScaleY != 1
}

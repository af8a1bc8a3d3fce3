// Package tile subdivides a layer's bounds into fixed-size tiles that
// rasterize independently. Every tile of a grid shares the layer's
// display list; rasterizing a tile is a clip-and-replay of that list,
// not independent command generation. Tiles carry a viewport-distance
// priority that orders rasterization and GPU upload: visible before
// near, near before far, far before offscreen.
package tile

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/displaylist"
)

// DefaultSize is the tile edge length in pixels.
const DefaultSize = 256

// Viewport-distance thresholds for priority ranking, in pixels.
const (
	nearThreshold = 500
	farThreshold  = 1500
)

// State is a tile's rasterization state.
type State uint8

const (
	// Pending means the tile has never rasterized.
	Pending State = iota
	// Rasterizing means a rasterization is in flight.
	Rasterizing
	// Ready means the tile holds a valid bitmap.
	Ready
	// Invalid means the bitmap is stale or rasterization failed; the
	// tile may re-enter Rasterizing.
	Invalid
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Rasterizing:
		return "rasterizing"
	case Ready:
		return "ready"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Priority ranks a tile by viewport distance. Lower values upload first.
type Priority uint8

const (
	// Visible tiles intersect the viewport.
	Visible Priority = iota
	// NearViewport tiles lie within the near threshold of the viewport.
	NearViewport
	// FarFromViewport tiles lie within the far threshold.
	FarFromViewport
	// Offscreen tiles are beyond the far threshold.
	Offscreen
)

func (p Priority) String() string {
	switch p {
	case Visible:
		return "visible"
	case NearViewport:
		return "near"
	case FarFromViewport:
		return "far"
	case Offscreen:
		return "offscreen"
	default:
		return "unknown"
	}
}

// ID addresses a tile by grid cell.
type ID struct {
	Col int
	Row int
}

func (id ID) String() string { return fmt.Sprintf("%d,%d", id.Col, id.Row) }

// Bitmap is a tile's rasterized pixels.
type Bitmap struct {
	Pixels *image.RGBA
	Width  int
	Height int
}

// Tile is one grid cell. Fixed size except at grid edges, where bounds
// are clipped to the remaining layer bounds.
type Tile struct {
	id       ID
	bounds   paint.Rect
	state    State
	priority Priority

	list    *displaylist.List
	factory paint.SurfaceFactory
	data    *Bitmap
}

// ID returns the tile's grid address.
func (t *Tile) ID() ID { return t.id }

// Bounds returns the tile's rectangle in layer coordinates.
func (t *Tile) Bounds() paint.Rect { return t.bounds }

// State returns the tile's rasterization state.
func (t *Tile) State() State { return t.state }

// Priority returns the most recently calculated priority.
func (t *Tile) Priority() Priority { return t.priority }

// Data returns the rasterized bitmap, non-nil iff the state is Ready.
func (t *Tile) Data() *Bitmap { return t.data }

// Rasterize produces the tile's bitmap at the given scale. It is a no-op
// unless the state is Pending or Invalid; a call while Rasterizing
// returns immediately, keeping at most one rasterization in flight per
// tile. On failure the tile transitions to Invalid and the error is
// returned.
func (t *Tile) Rasterize(scale float64) error {
	if t.state == Rasterizing || t.state == Ready {
		return nil
	}
	if scale <= 0 {
		scale = 1
	}
	t.state = Rasterizing

	w := int(math.Ceil(t.bounds.Width * scale))
	h := int(math.Ceil(t.bounds.Height * scale))
	surface, err := t.factory.NewSurface(w, h)
	if err != nil {
		t.state = Invalid
		return fmt.Errorf("tile %s: %w", t.id, err)
	}

	surface.Clear()
	canvas := surface.Canvas()
	canvas.Scale(scale, scale)
	canvas.Translate(-t.bounds.X, -t.bounds.Y)
	t.list.Clip(t.bounds).Replay(canvas)

	t.data = &Bitmap{Pixels: surface.RGBA(), Width: w, Height: h}
	t.state = Ready
	return nil
}

// Invalidate drops the tile's bitmap and marks it for re-rasterization.
func (t *Tile) Invalidate() {
	t.data = nil
	t.state = Invalid
}

// CalculatePriority ranks the tile against the viewport and stores the
// result. Distance is measured from the tile to the viewport center,
// clamped per axis by the viewport half-extents so points inside the
// viewport band measure zero on that axis.
func (t *Tile) CalculatePriority(viewport paint.Rect) Priority {
	if t.bounds.Intersects(viewport) {
		t.priority = Visible
		return t.priority
	}

	vcx, vcy := viewport.Center()
	tcx, tcy := t.bounds.Center()
	dx := math.Max(0, math.Abs(tcx-vcx)-viewport.Width/2)
	dy := math.Max(0, math.Abs(tcy-vcy)-viewport.Height/2)
	dist := math.Hypot(dx, dy)

	switch {
	case dist < nearThreshold:
		t.priority = NearViewport
	case dist < farThreshold:
		t.priority = FarFromViewport
	default:
		t.priority = Offscreen
	}
	return t.priority
}

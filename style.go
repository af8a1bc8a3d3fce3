package paint

import "image"

// ComputedStyle exposes resolved CSS property values for one render object.
// The cascade itself is owned by the style subsystem; paint code only reads
// property strings ("opacity" -> "0.5", "transform" -> "translate(10px,20px)").
//
// GetPropertyValue returns the empty string for properties that are unset.
type ComputedStyle interface {
	GetPropertyValue(name string) string
}

// Layout is the box geometry of a render object in pixel units,
// produced by the layout subsystem. Paint code treats it as read-only.
type Layout struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Bounds returns the layout box as a Rect.
func (l Layout) Bounds() Rect {
	return Rect{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height}
}

// RenderObject is a node of the styled render tree. Its lifecycle is owned
// by the layout subsystem; the paint pipeline reads the tree, asks nodes to
// emit drawing commands, and may clear the needs-paint flag after painting.
type RenderObject interface {
	// Style returns the node's computed style.
	Style() ComputedStyle

	// Layout returns the node's box geometry.
	Layout() Layout

	// Parent returns the parent node, or nil for the tree root.
	Parent() RenderObject

	// Children returns the child nodes in document order.
	Children() []RenderObject

	// NeedsPaint reports whether the node's content changed since it
	// last painted.
	NeedsPaint() bool

	// ClearNeedsPaint marks the node as painted.
	ClearNeedsPaint()

	// Paint emits the node's drawing commands into the canvas.
	Paint(canvas Canvas)
}

// Canvas is the 2D drawing sink every paint command is issued against.
// displaylist.List implements Canvas by recording; raster.Context implements
// it by rasterizing into pixels. Geometry is in device-independent pixels;
// style values are CSS strings, resolved by the implementation.
type Canvas interface {
	// Save pushes the current graphics state (transform, clip, styles).
	Save()

	// Restore pops the most recently saved graphics state.
	// A Restore without a matching Save is a no-op.
	Restore()

	// Translate moves the origin by (dx, dy).
	Translate(dx, dy float64)

	// Scale scales subsequent drawing by (sx, sy).
	Scale(sx, sy float64)

	// Rotate rotates subsequent drawing by the angle in radians.
	Rotate(radians float64)

	// ClipRect intersects the clip region with the rectangle.
	ClipRect(r Rect)

	// FillRect fills the rectangle with the current fill style.
	FillRect(r Rect)

	// StrokeRect outlines the rectangle with the current stroke style.
	StrokeRect(r Rect)

	// FillText draws filled text with the baseline origin at (x, y).
	FillText(text string, x, y float64)

	// StrokeText draws outlined text with the baseline origin at (x, y).
	StrokeText(text string, x, y float64)

	// DrawImage draws the src region of img into the dst rectangle.
	DrawImage(img image.Image, src, dst Rect)

	// SetFillStyle sets the fill style from a CSS color string.
	SetFillStyle(style string)

	// SetStrokeStyle sets the stroke style from a CSS color string.
	SetStrokeStyle(style string)

	// SetLineWidth sets the stroke width in pixels.
	SetLineWidth(width float64)

	// SetFont sets the font from a CSS shorthand ("16px sans-serif").
	SetFont(font string)

	// SetGlobalAlpha sets the global opacity multiplier in [0, 1].
	SetGlobalAlpha(alpha float64)

	// SetShadow configures the drop shadow for subsequent fills.
	// A zero blur with zero offsets disables the shadow.
	SetShadow(offsetX, offsetY, blur float64, color string)
}

// TextMeasurer is implemented by canvases that can measure text with the
// current font. Recording canvases do not measure; rasterizing ones do.
type TextMeasurer interface {
	// MeasureText returns the advance width of the text in pixels.
	MeasureText(text string) float64
}

// Surface is a pixel destination a display list can be rasterized into.
// Implementations wrap a CPU pixmap (raster.ImageSurface) and hand out a
// Canvas that draws into it.
type Surface interface {
	// Canvas returns the drawing sink for this surface.
	Canvas() Canvas

	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// RGBA returns the backing pixels. The image shares memory with the
	// surface; callers must not hold it across a Reset.
	RGBA() *image.RGBA

	// Clear resets every pixel to transparent black.
	Clear()
}

// SurfaceFactory creates rasterization surfaces. It is injected into any
// component that rasterizes (tiles, the render coordinator) so nothing
// depends on ambient global state for surface creation.
type SurfaceFactory interface {
	// NewSurface allocates a surface of the given pixel dimensions.
	NewSurface(width, height int) (Surface, error)
}

// CompositingMode is the pixel-blending function applied when a layer is
// drawn over its background.
type CompositingMode uint8

// Compositing modes supported by the compositor. The set mirrors the CSS
// mix-blend-mode keywords the pipeline accepts; unrecognized keywords map
// to ModeSourceOver.
const (
	// ModeSourceOver is standard alpha compositing (the default).
	ModeSourceOver CompositingMode = iota
	// ModeMultiply multiplies source and destination channels.
	ModeMultiply
	// ModeScreen inverts, multiplies, and inverts again.
	ModeScreen
	// ModeOverlay multiplies or screens depending on the destination.
	ModeOverlay
	// ModeDarken keeps the darker of source and destination.
	ModeDarken
	// ModeLighten keeps the lighter of source and destination.
	ModeLighten
)

// String returns the CSS keyword for the compositing mode.
func (m CompositingMode) String() string {
	switch m {
	case ModeSourceOver:
		return "source-over"
	case ModeMultiply:
		return "multiply"
	case ModeScreen:
		return "screen"
	case ModeOverlay:
		return "overlay"
	case ModeDarken:
		return "darken"
	case ModeLighten:
		return "lighten"
	default:
		return "unknown"
	}
}

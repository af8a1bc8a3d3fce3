// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster rasterizes paint commands into CPU pixel buffers. It is
// the software drawing sink behind tiles and full-surface composites: a
// display list replayed into a Context produces pixels in an image.RGBA.
//
// The rasterizer favors predictable output over optimized coverage: solid
// fills, axis-aligned fast paths, and a per-pixel inverse-transform test
// for rotated geometry. Shadow blur is approximated as a hard offset
// silhouette.
package raster

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/internal/blend"
)

type shadowState struct {
	offsetX float64
	offsetY float64
	blur    float64
	color   paint.RGBA
	enabled bool
}

// drawState is one entry of the save/restore stack.
type drawState struct {
	transform   matrix
	clip        image.Rectangle
	fill        paint.RGBA
	stroke      paint.RGBA
	lineWidth   float64
	font        string
	globalAlpha float64
	shadow      shadowState
	mode        paint.CompositingMode
}

// Context draws into an image.RGBA. It implements paint.Canvas,
// paint.TextMeasurer, and compositing-mode selection.
//
// A Context is bound to one image for its lifetime and is not safe for
// concurrent use.
type Context struct {
	img   *image.RGBA
	state drawState
	stack []drawState
}

// NewContext creates a context drawing into img with identity transform,
// the full image as clip, black fill and stroke, and source-over
// compositing.
func NewContext(img *image.RGBA) *Context {
	return &Context{
		img: img,
		state: drawState{
			transform:   identityMatrix(),
			clip:        img.Bounds(),
			fill:        paint.Black,
			stroke:      paint.Black,
			lineWidth:   1,
			globalAlpha: 1,
		},
	}
}

// Save pushes the current graphics state.
func (c *Context) Save() {
	c.stack = append(c.stack, c.state)
}

// Restore pops the most recently saved state. Without a matching Save it
// is a no-op.
func (c *Context) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// Translate moves the origin by (dx, dy).
func (c *Context) Translate(dx, dy float64) {
	c.state.transform = c.state.transform.translate(dx, dy)
}

// Scale scales subsequent drawing by (sx, sy).
func (c *Context) Scale(sx, sy float64) {
	c.state.transform = c.state.transform.scale(sx, sy)
}

// Rotate rotates subsequent drawing by the angle in radians.
func (c *Context) Rotate(radians float64) {
	c.state.transform = c.state.transform.rotate(radians)
}

// ClipRect intersects the clip with the device-space bounding box of the
// transformed rectangle. Rotated clips are approximated by their
// bounding box.
func (c *Context) ClipRect(r paint.Rect) {
	c.state.clip = c.state.clip.Intersect(c.deviceBounds(r))
}

// FillRect fills the rectangle with the current fill style.
func (c *Context) FillRect(r paint.Rect) {
	if c.state.shadow.enabled {
		sh := c.state.shadow
		c.fillTransformed(paint.Rect{
			X: r.X + sh.offsetX, Y: r.Y + sh.offsetY,
			Width: r.Width, Height: r.Height,
		}, sh.color)
	}
	c.fillTransformed(r, c.state.fill)
}

// StrokeRect outlines the rectangle with the current stroke style. The
// stroke is centered on the rectangle edge.
func (c *Context) StrokeRect(r paint.Rect) {
	half := c.state.lineWidth / 2
	w := c.state.lineWidth
	// Top, bottom, left, right edge bands.
	c.fillTransformed(paint.Rect{X: r.X - half, Y: r.Y - half, Width: r.Width + w, Height: w}, c.state.stroke)
	c.fillTransformed(paint.Rect{X: r.X - half, Y: r.Bottom() - half, Width: r.Width + w, Height: w}, c.state.stroke)
	c.fillTransformed(paint.Rect{X: r.X - half, Y: r.Y + half, Width: w, Height: r.Height - w}, c.state.stroke)
	c.fillTransformed(paint.Rect{X: r.Right() - half, Y: r.Y + half, Width: w, Height: r.Height - w}, c.state.stroke)
}

// FillText draws text with the fill style, baseline origin at (x, y).
func (c *Context) FillText(text string, x, y float64) {
	c.drawText(text, x, y, c.state.fill)
}

// StrokeText draws text with the stroke style. The bitmap face has no
// outline form, so stroked text renders as a solid fill in the stroke
// color.
func (c *Context) StrokeText(text string, x, y float64) {
	c.drawText(text, x, y, c.state.stroke)
}

func (c *Context) drawText(text string, x, y float64, col paint.RGBA) {
	if text == "" || col.A == 0 {
		return
	}
	clip := c.state.clip.Intersect(c.img.Bounds())
	if clip.Empty() {
		return
	}
	dx, dy := c.state.transform.apply(x, y)

	col.A *= c.state.globalAlpha
	d := font.Drawer{
		Dst:  c.img.SubImage(clip).(*image.RGBA),
		Src:  image.NewUniform(col.Color()),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(dx)), int(math.Round(dy))),
	}
	d.DrawString(text)
}

// MeasureText returns the advance width of text in pixels with the
// current face.
func (c *Context) MeasureText(text string) float64 {
	return float64(font.MeasureString(basicfont.Face7x13, text)) / 64
}

// DrawImage draws the src region of img into the dst rectangle, scaling
// with a bilinear filter. A zero src means the whole image.
func (c *Context) DrawImage(src image.Image, srcRect, dstRect paint.Rect) {
	if src == nil {
		return
	}
	if srcRect.IsEmpty() {
		b := src.Bounds()
		srcRect = paint.Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
	clip := c.state.clip.Intersect(c.img.Bounds())
	if clip.Empty() {
		return
	}
	if c.state.globalAlpha >= 1 && c.state.mode == paint.ModeSourceOver {
		dst := c.img.SubImage(clip).(*image.RGBA)
		draw.ApproxBiLinear.Scale(dst, c.deviceBounds(dstRect), src, rectToImageRect(srcRect), draw.Over, nil)
		return
	}

	// Alpha or a blend mode is in effect. Scale into a staging image and
	// blend per pixel so the mode applies to the scaled result.
	device := c.deviceBounds(dstRect)
	area := device.Intersect(clip)
	if area.Empty() {
		return
	}
	staging := image.NewRGBA(device)
	draw.ApproxBiLinear.Scale(staging, device, src, rectToImageRect(srcRect), draw.Src, nil)

	alpha := c.state.globalAlpha
	if alpha < 0 {
		alpha = 0
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			i := staging.PixOffset(x, y)
			p := staging.Pix[i : i+4 : i+4]
			sa := byte(float64(p[3]) * alpha)
			if sa == 0 {
				continue
			}
			// Rescale the premultiplied channels to the reduced alpha.
			sr := byte(float64(p[0]) * alpha)
			sg := byte(float64(p[1]) * alpha)
			sb := byte(float64(p[2]) * alpha)
			c.blendPixel(x, y, sr, sg, sb, sa)
		}
	}
}

// SetFillStyle sets the fill color from a CSS color string. Unparseable
// values are ignored.
func (c *Context) SetFillStyle(style string) {
	if col, ok := paint.ParseColor(style); ok {
		c.state.fill = col
	}
}

// SetStrokeStyle sets the stroke color from a CSS color string.
func (c *Context) SetStrokeStyle(style string) {
	if col, ok := paint.ParseColor(style); ok {
		c.state.stroke = col
	}
}

// SetLineWidth sets the stroke width in pixels. Non-positive widths are
// ignored.
func (c *Context) SetLineWidth(width float64) {
	if width > 0 {
		c.state.lineWidth = width
	}
}

// SetFont sets the font shorthand. The bitmap face is fixed-size, so the
// shorthand only affects text measurement consumers that parse it.
func (c *Context) SetFont(fontSpec string) {
	c.state.font = fontSpec
}

// SetGlobalAlpha sets the opacity multiplier, clamped to [0, 1].
func (c *Context) SetGlobalAlpha(alpha float64) {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	c.state.globalAlpha = alpha
}

// SetShadow configures the drop shadow. Zero offsets with zero blur
// disable it.
func (c *Context) SetShadow(offsetX, offsetY, blur float64, colorStr string) {
	if offsetX == 0 && offsetY == 0 && blur == 0 {
		c.state.shadow = shadowState{}
		return
	}
	col, ok := paint.ParseColor(colorStr)
	if !ok {
		col = paint.Black
	}
	c.state.shadow = shadowState{
		offsetX: offsetX,
		offsetY: offsetY,
		blur:    blur,
		color:   col,
		enabled: true,
	}
}

// SetCompositingMode selects the blend function for subsequent fills.
func (c *Context) SetCompositingMode(mode paint.CompositingMode) {
	c.state.mode = mode
}

// --------------------------------------------------------------------------
// Pixel work
// --------------------------------------------------------------------------

// fillTransformed fills the user-space rectangle through the current
// transform, clip, global alpha, and compositing mode.
func (c *Context) fillTransformed(r paint.Rect, col paint.RGBA) {
	col.A *= c.state.globalAlpha
	if col.A <= 0 || r.IsEmpty() {
		return
	}
	device := c.deviceBounds(r).Intersect(c.state.clip).Intersect(c.img.Bounds())
	if device.Empty() {
		return
	}

	if c.state.transform.axisAligned() {
		c.blendRect(device, col)
		return
	}

	// Rotated: test each pixel center against the user-space rectangle
	// through the inverse transform.
	inv, ok := c.state.transform.invert()
	if !ok {
		return
	}
	sr, sg, sb, sa := premultiply(col)
	for y := device.Min.Y; y < device.Max.Y; y++ {
		for x := device.Min.X; x < device.Max.X; x++ {
			ux, uy := inv.apply(float64(x)+0.5, float64(y)+0.5)
			if ux < r.X || ux >= r.Right() || uy < r.Y || uy >= r.Bottom() {
				continue
			}
			c.blendPixel(x, y, sr, sg, sb, sa)
		}
	}
}

// blendRect blends a solid color over every pixel of a device rect.
func (c *Context) blendRect(rect image.Rectangle, col paint.RGBA) {
	sr, sg, sb, sa := premultiply(col)
	if sa == 0 {
		return
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c.blendPixel(x, y, sr, sg, sb, sa)
		}
	}
}

func (c *Context) blendPixel(x, y int, sr, sg, sb, sa byte) {
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = blend.Pixel(c.state.mode, sr, sg, sb, sa, p[0], p[1], p[2], p[3])
}

// deviceBounds maps a user-space rect to the device-space bounding box
// of its transformed corners.
func (c *Context) deviceBounds(r paint.Rect) image.Rectangle {
	m := c.state.transform
	x0, y0 := m.apply(r.X, r.Y)
	x1, y1 := m.apply(r.Right(), r.Y)
	x2, y2 := m.apply(r.X, r.Bottom())
	x3, y3 := m.apply(r.Right(), r.Bottom())

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

func rectToImageRect(r paint.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())), int(math.Ceil(r.Bottom())),
	)
}

// premultiply converts a normalized color to premultiplied RGBA bytes.
func premultiply(col paint.RGBA) (r, g, b, a byte) {
	a = byte(math.Round(clamp01(col.A) * 255))
	r = byte(math.Round(clamp01(col.R) * float64(a)))
	g = byte(math.Round(clamp01(col.G) * float64(a)))
	b = byte(math.Round(clamp01(col.B) * float64(a)))
	return r, g, b, a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var (
	_ paint.Canvas       = (*Context)(nil)
	_ paint.TextMeasurer = (*Context)(nil)
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"testing"

	"github.com/gogpu/paint"
)

func newTestContext(w, h int) (*Context, *image.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return NewContext(img), img
}

func pixelAt(img *image.RGBA, x, y int) (r, g, b, a byte) {
	i := img.PixOffset(x, y)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
}

func TestFillRectSolid(t *testing.T) {
	c, img := newTestContext(20, 20)
	c.SetFillStyle("#ff0000")
	c.FillRect(paint.Rect{X: 5, Y: 5, Width: 10, Height: 10})

	if r, _, _, a := pixelAt(img, 10, 10); r != 255 || a != 255 {
		t.Errorf("inside pixel = (r=%d, a=%d), want opaque red", r, a)
	}
	if _, _, _, a := pixelAt(img, 2, 2); a != 0 {
		t.Errorf("outside pixel alpha = %d, want 0", a)
	}
	if _, _, _, a := pixelAt(img, 16, 10); a != 0 {
		t.Errorf("pixel right of rect alpha = %d, want 0", a)
	}
}

func TestFillRectRespectsTranslate(t *testing.T) {
	c, img := newTestContext(20, 20)
	c.SetFillStyle("#00ff00")
	c.Translate(10, 10)
	c.FillRect(paint.Rect{X: 0, Y: 0, Width: 5, Height: 5})

	if _, g, _, _ := pixelAt(img, 12, 12); g != 255 {
		t.Errorf("translated pixel g = %d, want 255", g)
	}
	if _, _, _, a := pixelAt(img, 5, 5); a != 0 {
		t.Errorf("untranslated area alpha = %d, want 0", a)
	}
}

func TestFillRectRespectsClip(t *testing.T) {
	c, img := newTestContext(20, 20)
	c.SetFillStyle("#0000ff")
	c.ClipRect(paint.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	c.FillRect(paint.Rect{X: 0, Y: 0, Width: 20, Height: 20})

	if _, _, b, _ := pixelAt(img, 5, 5); b != 255 {
		t.Errorf("clipped-in pixel b = %d, want 255", b)
	}
	if _, _, _, a := pixelAt(img, 15, 15); a != 0 {
		t.Errorf("clipped-out pixel alpha = %d, want 0", a)
	}
}

func TestSaveRestore(t *testing.T) {
	c, img := newTestContext(20, 20)
	c.SetFillStyle("#ff0000")
	c.Save()
	c.Translate(10, 0)
	c.SetFillStyle("#00ff00")
	c.Restore()
	c.FillRect(paint.Rect{X: 0, Y: 0, Width: 2, Height: 2})

	if r, g, _, _ := pixelAt(img, 0, 0); r != 255 || g != 0 {
		t.Errorf("post-restore pixel = (r=%d, g=%d), want red at origin", r, g)
	}

	// Restore without Save is a no-op.
	c.Restore()
	c.Restore()
}

func TestGlobalAlpha(t *testing.T) {
	c, img := newTestContext(10, 10)
	c.SetFillStyle("#ffffff")
	c.SetGlobalAlpha(0.5)
	c.FillRect(paint.Rect{X: 0, Y: 0, Width: 10, Height: 10})

	_, _, _, a := pixelAt(img, 5, 5)
	if a < 120 || a > 135 {
		t.Errorf("half-alpha fill alpha = %d, want ~128", a)
	}
}

func TestGlobalAlphaClamps(t *testing.T) {
	c, _ := newTestContext(4, 4)
	c.SetGlobalAlpha(2)
	if c.state.globalAlpha != 1 {
		t.Errorf("globalAlpha = %v after SetGlobalAlpha(2), want 1", c.state.globalAlpha)
	}
	c.SetGlobalAlpha(-1)
	if c.state.globalAlpha != 0 {
		t.Errorf("globalAlpha = %v after SetGlobalAlpha(-1), want 0", c.state.globalAlpha)
	}
}

func TestRotatedFillStaysInBounds(t *testing.T) {
	c, img := newTestContext(40, 40)
	c.SetFillStyle("#ff00ff")
	c.Translate(20, 20)
	c.Rotate(0.785398) // 45 degrees
	c.FillRect(paint.Rect{X: -5, Y: -5, Width: 10, Height: 10})

	if _, _, _, a := pixelAt(img, 20, 20); a == 0 {
		t.Error("center of rotated fill not painted")
	}
	if _, _, _, a := pixelAt(img, 0, 0); a != 0 {
		t.Error("far corner painted by rotated fill")
	}
}

func TestStrokeRectPaintsEdgesOnly(t *testing.T) {
	c, img := newTestContext(30, 30)
	c.SetStrokeStyle("#000000")
	c.SetLineWidth(2)
	c.StrokeRect(paint.Rect{X: 5, Y: 5, Width: 20, Height: 20})

	if _, _, _, a := pixelAt(img, 15, 5); a == 0 {
		t.Error("top edge not stroked")
	}
	if _, _, _, a := pixelAt(img, 15, 15); a != 0 {
		t.Error("interior painted by StrokeRect")
	}
}

func TestFillTextPaintsPixels(t *testing.T) {
	c, img := newTestContext(100, 30)
	c.SetFillStyle("#000000")
	c.FillText("Hello", 5, 20)

	painted := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			painted++
		}
	}
	if painted == 0 {
		t.Error("FillText painted no pixels")
	}
}

func TestMeasureText(t *testing.T) {
	c, _ := newTestContext(10, 10)
	w := c.MeasureText("abc")
	if w <= 0 {
		t.Errorf("MeasureText(abc) = %v, want > 0", w)
	}
	if w2 := c.MeasureText("abcabc"); w2 != 2*w {
		t.Errorf("MeasureText(abcabc) = %v, want %v (fixed-width face)", w2, 2*w)
	}
}

func TestDrawImageScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255   // red
		src.Pix[i+3] = 255 // opaque
	}

	c, img := newTestContext(20, 20)
	c.DrawImage(src, paint.Rect{}, paint.Rect{X: 4, Y: 4, Width: 8, Height: 8})

	if r, _, _, a := pixelAt(img, 8, 8); r == 0 || a == 0 {
		t.Errorf("scaled image center = (r=%d, a=%d), want red", r, a)
	}
	if _, _, _, a := pixelAt(img, 1, 1); a != 0 {
		t.Error("pixels outside destination painted")
	}
}

func TestDrawImageNilIsNoOp(t *testing.T) {
	c, img := newTestContext(10, 10)
	c.DrawImage(nil, paint.Rect{}, paint.Rect{Width: 10, Height: 10})
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatal("nil image painted pixels")
		}
	}
}

func TestShadowOffset(t *testing.T) {
	c, img := newTestContext(30, 30)
	c.SetFillStyle("#ff0000")
	c.SetShadow(5, 5, 0, "#000000")
	c.FillRect(paint.Rect{X: 5, Y: 5, Width: 10, Height: 10})

	// Shadow extends past the fill's bottom-right corner.
	if _, _, _, a := pixelAt(img, 17, 17); a == 0 {
		t.Error("shadow region not painted")
	}
	// Fill covers the shadow inside its own area.
	if r, _, _, _ := pixelAt(img, 10, 10); r != 255 {
		t.Errorf("fill pixel r = %d, want 255", r)
	}

	c.SetShadow(0, 0, 0, "")
	if c.state.shadow.enabled {
		t.Error("zero SetShadow left shadow enabled")
	}
}

func TestCompositingModeMultiply(t *testing.T) {
	c, img := newTestContext(10, 10)
	c.SetFillStyle("#ffffff")
	c.FillRect(paint.Rect{Width: 10, Height: 10})

	c.SetCompositingMode(paint.ModeMultiply)
	c.SetFillStyle("#808080")
	c.FillRect(paint.Rect{Width: 10, Height: 10})

	// White background multiplied by mid-gray stays mid-gray.
	r, _, _, _ := pixelAt(img, 5, 5)
	if r < 120 || r > 135 {
		t.Errorf("multiply over white r = %d, want ~128", r)
	}
}

func TestImageSurface(t *testing.T) {
	s, err := NewImageSurface(64, 32)
	if err != nil {
		t.Fatalf("NewImageSurface() error = %v", err)
	}
	if s.Width() != 64 || s.Height() != 32 {
		t.Errorf("surface dimensions = %dx%d, want 64x32", s.Width(), s.Height())
	}

	s.Canvas().SetFillStyle("#ff0000")
	s.Canvas().FillRect(paint.Rect{Width: 64, Height: 32})
	if r, _, _, _ := pixelAt(s.RGBA(), 10, 10); r != 255 {
		t.Errorf("surface pixel r = %d, want 255", r)
	}

	s.Clear()
	if _, _, _, a := pixelAt(s.RGBA(), 10, 10); a != 0 {
		t.Errorf("pixel alpha after Clear = %d, want 0", a)
	}

	if _, err := NewImageSurface(0, 10); err == nil {
		t.Error("NewImageSurface(0, 10) error = nil, want error")
	}
}

func TestFactory(t *testing.T) {
	var f paint.SurfaceFactory = Factory{}
	s, err := f.NewSurface(8, 8)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if s.Width() != 8 || s.Height() != 8 {
		t.Errorf("factory surface = %dx%d, want 8x8", s.Width(), s.Height())
	}
}

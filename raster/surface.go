// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"fmt"
	"image"

	"github.com/gogpu/paint"
)

// ImageSurface is a CPU pixel surface backed by an image.RGBA.
type ImageSurface struct {
	img    *image.RGBA
	canvas *Context
}

// NewImageSurface allocates a transparent surface of the given pixel
// dimensions.
func NewImageSurface(width, height int) (*ImageSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid surface dimensions %dx%d", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &ImageSurface{img: img, canvas: NewContext(img)}, nil
}

// Canvas returns the surface's drawing sink.
func (s *ImageSurface) Canvas() paint.Canvas { return s.canvas }

// Width returns the surface width in pixels.
func (s *ImageSurface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *ImageSurface) Height() int { return s.img.Bounds().Dy() }

// RGBA returns the backing pixels, shared with the surface.
func (s *ImageSurface) RGBA() *image.RGBA { return s.img }

// Clear resets every pixel to transparent black and the canvas to its
// initial state.
func (s *ImageSurface) Clear() {
	pix := s.img.Pix
	for i := range pix {
		pix[i] = 0
	}
	s.canvas = NewContext(s.img)
}

// Factory creates ImageSurfaces. It is the SurfaceFactory injected into
// tiles and the render coordinator in CPU rendering paths.
type Factory struct{}

// NewSurface implements paint.SurfaceFactory.
func (Factory) NewSurface(width, height int) (paint.Surface, error) {
	return NewImageSurface(width, height)
}

var (
	_ paint.Surface        = (*ImageSurface)(nil)
	_ paint.SurfaceFactory = Factory{}
)

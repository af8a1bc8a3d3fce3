// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/raster"
)

func init() {
	Register(DeviceSoftware, func() Device { return NewSoftwareDevice() })
}

// SoftwareDevice composites on the CPU. Texture "uploads" copy pixels
// into host images and draw calls rasterize textured quads through the
// software rasterizer. It is the device of last resort and the reference
// implementation for device semantics: the counters it keeps back the
// compositor's redundant-upload tests.
type SoftwareDevice struct {
	initialized bool

	textures map[TextureID]*image.RGBA
	programs map[ProgramID]struct{}
	nextID   uint64

	framebuffer *image.RGBA
	canvas      *raster.Context

	stats Stats
}

// NewSoftwareDevice creates an uninitialized software device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// Name returns "software".
func (d *SoftwareDevice) Name() string { return DeviceSoftware }

// Init prepares the device. It never fails.
func (d *SoftwareDevice) Init() error {
	if d.initialized {
		return nil
	}
	d.textures = make(map[TextureID]*image.RGBA)
	d.programs = make(map[ProgramID]struct{})
	d.initialized = true
	return nil
}

// CreateTexture copies pixels into a new host-side texture.
func (d *SoftwareDevice) CreateTexture(width, height int, pixels []byte) (TextureID, error) {
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return 0, fmt.Errorf("%w: %dx%d with %d bytes", ErrInvalidTextureSize, width, height, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels[:width*height*4])

	d.nextID++
	id := TextureID(d.nextID)
	d.textures[id] = img
	d.stats.UploadCalls++
	return id, nil
}

// UpdateTexture replaces a texture's pixels in place.
func (d *SoftwareDevice) UpdateTexture(id TextureID, pixels []byte) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	img, ok := d.textures[id]
	if !ok {
		return ErrUnknownTexture
	}
	if len(pixels) != len(img.Pix) {
		return fmt.Errorf("%w: got %d bytes, texture needs %d", ErrInvalidTextureSize, len(pixels), len(img.Pix))
	}
	copy(img.Pix, pixels)
	d.stats.UploadCalls++
	return nil
}

// DestroyTexture releases a texture. Unknown handles are ignored.
func (d *SoftwareDevice) DestroyTexture(id TextureID) {
	delete(d.textures, id)
}

// CompileProgram accepts any shader pair; the software device has no
// shader stage, so the sources only need to be non-empty.
func (d *SoftwareDevice) CompileProgram(vertexSrc, fragmentSrc string) (ProgramID, error) {
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	if vertexSrc == "" || fragmentSrc == "" {
		return 0, fmt.Errorf("gpu: empty shader source")
	}
	d.nextID++
	id := ProgramID(d.nextID)
	d.programs[id] = struct{}{}
	return id, nil
}

// DestroyProgram releases a program.
func (d *SoftwareDevice) DestroyProgram(id ProgramID) {
	delete(d.programs, id)
}

// BeginFrame allocates or clears the framebuffer.
func (d *SoftwareDevice) BeginFrame(width, height int) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, width, height)
	}
	if d.framebuffer == nil || d.framebuffer.Bounds().Dx() != width || d.framebuffer.Bounds().Dy() != height {
		d.framebuffer = image.NewRGBA(image.Rect(0, 0, width, height))
	} else {
		for i := range d.framebuffer.Pix {
			d.framebuffer.Pix[i] = 0
		}
	}
	d.canvas = raster.NewContext(d.framebuffer)
	return nil
}

// DrawTexturedQuad rasterizes the texture into dst with the layer
// transform, opacity, and blend mode.
func (d *SoftwareDevice) DrawTexturedQuad(program ProgramID, tex TextureID, dst paint.Rect, uniforms QuadUniforms) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if d.canvas == nil {
		return fmt.Errorf("gpu: DrawTexturedQuad before BeginFrame")
	}
	if _, ok := d.programs[program]; !ok {
		return ErrUnknownProgram
	}
	img, ok := d.textures[tex]
	if !ok {
		return ErrUnknownTexture
	}

	c := d.canvas
	c.Save()
	defer c.Restore()

	t := uniforms.Transform
	if t.TranslateX != 0 || t.TranslateY != 0 {
		c.Translate(t.TranslateX, t.TranslateY)
	}
	if t.Rotation != 0 {
		c.Translate(t.OriginX, t.OriginY)
		c.Rotate(t.Rotation)
		c.Translate(-t.OriginX, -t.OriginY)
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		c.Scale(t.ScaleX, t.ScaleY)
	}
	c.SetGlobalAlpha(uniforms.Opacity)
	c.SetCompositingMode(uniforms.Mode)
	c.DrawImage(img, paint.Rect{}, dst)

	d.stats.DrawCalls++
	return nil
}

// Framebuffer returns the current frame's pixels.
func (d *SoftwareDevice) Framebuffer() *image.RGBA { return d.framebuffer }

// Stats reports resource usage and call counts.
func (d *SoftwareDevice) Stats() Stats {
	s := d.stats
	s.TextureCount = len(d.textures)
	for _, img := range d.textures {
		s.TextureMemory += uint64(len(img.Pix))
	}
	return s
}

// Close releases every texture and program.
func (d *SoftwareDevice) Close() {
	d.textures = nil
	d.programs = nil
	d.framebuffer = nil
	d.canvas = nil
	d.initialized = false
}

var _ Device = (*SoftwareDevice)(nil)

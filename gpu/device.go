// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu abstracts the graphics device the compositor uploads
// textures to and issues draw calls against. Devices register themselves
// by name; selection falls back by priority, so a build without a usable
// GPU still composites through the software device.
//
// Resource handles are opaque integers. The zero handle is never issued
// and always invalid.
package gpu

import (
	"errors"
	"image"

	"github.com/gogpu/paint"
)

// Common device errors.
var (
	// ErrDeviceNotAvailable is returned when a requested device is not
	// registered.
	ErrDeviceNotAvailable = errors.New("gpu: device not available")

	// ErrNotInitialized is returned when operations run before Init.
	ErrNotInitialized = errors.New("gpu: device not initialized")

	// ErrUnknownTexture is returned for operations on a handle the
	// device did not issue or has destroyed.
	ErrUnknownTexture = errors.New("gpu: unknown texture")

	// ErrUnknownProgram is returned for draw calls with an invalid
	// program handle.
	ErrUnknownProgram = errors.New("gpu: unknown program")

	// ErrInvalidTextureSize is returned for non-positive dimensions or
	// a pixel buffer that does not match them.
	ErrInvalidTextureSize = errors.New("gpu: invalid texture size")
)

// TextureID is an opaque GPU texture handle.
type TextureID uint64

// ProgramID is an opaque shader program handle.
type ProgramID uint64

// QuadUniforms are the per-draw uniforms of the compositor's textured
// quad: the layer transform, its opacity multiplier, and its blend mode.
type QuadUniforms struct {
	Transform paint.Transform
	Opacity   float64
	Mode      paint.CompositingMode
}

// Stats reports a device's resource usage and call counts.
type Stats struct {
	// TextureCount is the number of live textures.
	TextureCount int

	// TextureMemory is the total bytes of live texture pixel data.
	TextureMemory uint64

	// UploadCalls counts CreateTexture and UpdateTexture calls since
	// Init.
	UploadCalls uint64

	// DrawCalls counts DrawTexturedQuad calls since Init.
	DrawCalls uint64
}

// Device is a graphics device the compositor drives. Implementations
// are not required to be safe for concurrent use; the compositor calls
// them from one logical thread.
type Device interface {
	// Name returns the device identifier ("wgpu", "software").
	Name() string

	// Init acquires the device's resources. It must be called before
	// any other operation and is idempotent.
	Init() error

	// CreateTexture uploads a width-by-height premultiplied RGBA pixel
	// buffer and returns its handle.
	CreateTexture(width, height int, pixels []byte) (TextureID, error)

	// UpdateTexture re-uploads pixels into an existing texture. The
	// buffer must match the texture's original dimensions.
	UpdateTexture(id TextureID, pixels []byte) error

	// DestroyTexture releases a texture. Destroying an unknown handle
	// is a no-op.
	DestroyTexture(id TextureID)

	// CompileProgram compiles and links a vertex and fragment shader
	// pair, returning the program handle.
	CompileProgram(vertexSrc, fragmentSrc string) (ProgramID, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// BeginFrame prepares a width-by-height framebuffer, clearing it
	// to transparent black.
	BeginFrame(width, height int) error

	// DrawTexturedQuad draws a texture into the dst rectangle of the
	// framebuffer with the given program and uniforms.
	DrawTexturedQuad(program ProgramID, tex TextureID, dst paint.Rect, uniforms QuadUniforms) error

	// Framebuffer returns the composited frame. The pixels are owned
	// by the device and valid until the next BeginFrame.
	Framebuffer() *image.RGBA

	// Stats reports resource usage.
	Stats() Stats

	// Close releases every resource. The device is unusable afterwards.
	Close()
}

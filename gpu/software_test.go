// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/paint"
)

func newInitializedDevice(t *testing.T) *SoftwareDevice {
	t.Helper()
	d := NewSoftwareDevice()
	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return d
}

func solidPixels(w, h int, r, g, b, a byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, a
	}
	return pix
}

func TestDeviceRequiresInit(t *testing.T) {
	d := NewSoftwareDevice()
	if _, err := d.CreateTexture(4, 4, solidPixels(4, 4, 0, 0, 0, 255)); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateTexture before Init error = %v, want ErrNotInitialized", err)
	}
	if err := d.BeginFrame(4, 4); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("BeginFrame before Init error = %v, want ErrNotInitialized", err)
	}
}

func TestCreateTextureValidation(t *testing.T) {
	d := newInitializedDevice(t)
	if _, err := d.CreateTexture(0, 4, nil); !errors.Is(err, ErrInvalidTextureSize) {
		t.Errorf("zero width error = %v, want ErrInvalidTextureSize", err)
	}
	if _, err := d.CreateTexture(4, 4, make([]byte, 3)); !errors.Is(err, ErrInvalidTextureSize) {
		t.Errorf("short buffer error = %v, want ErrInvalidTextureSize", err)
	}
}

func TestTextureLifecycle(t *testing.T) {
	d := newInitializedDevice(t)

	id, err := d.CreateTexture(4, 4, solidPixels(4, 4, 255, 0, 0, 255))
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if id == 0 {
		t.Fatal("CreateTexture() returned zero handle")
	}

	stats := d.Stats()
	if stats.TextureCount != 1 {
		t.Errorf("TextureCount = %d, want 1", stats.TextureCount)
	}
	if stats.TextureMemory != 4*4*4 {
		t.Errorf("TextureMemory = %d, want 64", stats.TextureMemory)
	}
	if stats.UploadCalls != 1 {
		t.Errorf("UploadCalls = %d, want 1", stats.UploadCalls)
	}

	if err := d.UpdateTexture(id, solidPixels(4, 4, 0, 255, 0, 255)); err != nil {
		t.Fatalf("UpdateTexture() error = %v", err)
	}
	if got := d.Stats().UploadCalls; got != 2 {
		t.Errorf("UploadCalls after update = %d, want 2", got)
	}

	if err := d.UpdateTexture(TextureID(999), nil); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("UpdateTexture(unknown) error = %v, want ErrUnknownTexture", err)
	}

	// Buffers must match the texture's dimensions exactly.
	if err := d.UpdateTexture(id, solidPixels(2, 2, 0, 0, 255, 255)); !errors.Is(err, ErrInvalidTextureSize) {
		t.Errorf("UpdateTexture(smaller buffer) error = %v, want ErrInvalidTextureSize", err)
	}
	if err := d.UpdateTexture(id, solidPixels(8, 8, 0, 0, 255, 255)); !errors.Is(err, ErrInvalidTextureSize) {
		t.Errorf("UpdateTexture(larger buffer) error = %v, want ErrInvalidTextureSize", err)
	}

	d.DestroyTexture(id)
	if got := d.Stats().TextureCount; got != 0 {
		t.Errorf("TextureCount after destroy = %d, want 0", got)
	}
	d.DestroyTexture(id) // unknown handle is a no-op
}

func TestDrawTexturedQuad(t *testing.T) {
	d := newInitializedDevice(t)

	tex, err := d.CreateTexture(8, 8, solidPixels(8, 8, 255, 0, 0, 255))
	if err != nil {
		t.Fatal(err)
	}
	prog, err := d.CompileProgram("vertex", "fragment")
	if err != nil {
		t.Fatalf("CompileProgram() error = %v", err)
	}
	if err := d.BeginFrame(32, 32); err != nil {
		t.Fatal(err)
	}

	uniforms := QuadUniforms{Transform: paint.IdentityTransform(), Opacity: 1}
	if err := d.DrawTexturedQuad(prog, tex, paint.Rect{X: 8, Y: 8, Width: 8, Height: 8}, uniforms); err != nil {
		t.Fatalf("DrawTexturedQuad() error = %v", err)
	}

	fb := d.Framebuffer()
	if r := fb.Pix[fb.PixOffset(12, 12)]; r != 255 {
		t.Errorf("framebuffer pixel r = %d, want 255", r)
	}
	if a := fb.Pix[fb.PixOffset(2, 2)+3]; a != 0 {
		t.Errorf("pixel outside quad alpha = %d, want 0", a)
	}
	if got := d.Stats().DrawCalls; got != 1 {
		t.Errorf("DrawCalls = %d, want 1", got)
	}

	if err := d.DrawTexturedQuad(ProgramID(999), tex, paint.Rect{}, uniforms); !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("draw with unknown program error = %v, want ErrUnknownProgram", err)
	}
	if err := d.DrawTexturedQuad(prog, TextureID(999), paint.Rect{}, uniforms); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("draw with unknown texture error = %v, want ErrUnknownTexture", err)
	}
}

func TestDrawQuadOpacity(t *testing.T) {
	d := newInitializedDevice(t)
	tex, _ := d.CreateTexture(4, 4, solidPixels(4, 4, 255, 255, 255, 255))
	prog, _ := d.CompileProgram("v", "f")
	if err := d.BeginFrame(4, 4); err != nil {
		t.Fatal(err)
	}

	err := d.DrawTexturedQuad(prog, tex, paint.Rect{Width: 4, Height: 4},
		QuadUniforms{Transform: paint.IdentityTransform(), Opacity: 0.5})
	if err != nil {
		t.Fatal(err)
	}

	fb := d.Framebuffer()
	a := fb.Pix[fb.PixOffset(2, 2)+3]
	if a < 115 || a > 140 {
		t.Errorf("half-opacity quad alpha = %d, want ~128", a)
	}
}

func TestBeginFrameClears(t *testing.T) {
	d := newInitializedDevice(t)
	tex, _ := d.CreateTexture(4, 4, solidPixels(4, 4, 255, 0, 0, 255))
	prog, _ := d.CompileProgram("v", "f")

	if err := d.BeginFrame(16, 16); err != nil {
		t.Fatal(err)
	}
	if err := d.DrawTexturedQuad(prog, tex, paint.Rect{Width: 16, Height: 16},
		QuadUniforms{Transform: paint.IdentityTransform(), Opacity: 1}); err != nil {
		t.Fatal(err)
	}
	if err := d.BeginFrame(16, 16); err != nil {
		t.Fatal(err)
	}

	fb := d.Framebuffer()
	for i := 3; i < len(fb.Pix); i += 4 {
		if fb.Pix[i] != 0 {
			t.Fatal("framebuffer not cleared by BeginFrame")
		}
	}
}

func TestCompileProgramValidation(t *testing.T) {
	d := newInitializedDevice(t)
	if _, err := d.CompileProgram("", "fragment"); err == nil {
		t.Error("CompileProgram with empty vertex source error = nil")
	}
}

func TestRegistryFallback(t *testing.T) {
	if !IsRegistered(DeviceSoftware) {
		t.Fatal("software device not registered")
	}

	d := Get(DeviceSoftware)
	if d == nil {
		t.Fatal("Get(software) = nil")
	}
	if d.Name() != DeviceSoftware {
		t.Errorf("Name() = %q, want %q", d.Name(), DeviceSoftware)
	}

	if got := Get("no-such-device"); got != nil {
		t.Errorf("Get(no-such-device) = %v, want nil", got)
	}

	// Without the wgpu package linked in, Default falls back to
	// software.
	if IsRegistered(DeviceWgpu) {
		t.Skip("wgpu device registered in this build")
	}
	def := Default()
	if def == nil || def.Name() != DeviceSoftware {
		t.Errorf("Default() = %v, want software device", def)
	}
}

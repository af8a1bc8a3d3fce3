// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package compositor uploads rasterized paint layers to a GPU device
// and draws them as textured quads each frame.
//
// Every paint layer is mirrored by a compositor Layer that owns the GPU
// textures holding its rasterized content. Large layers are split into
// tiles so partially visible content uploads progressively; small layers
// upload as a single texture. The Manager keeps the mirror set in sync
// with the paint-layer tree and the Thread drives the per-frame
// upload-then-composite cycle.
package compositor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/gpu"
	"github.com/gogpu/paint/layer"
	"github.com/gogpu/paint/tile"
)

// State is the upload lifecycle of a compositor layer.
type State uint8

const (
	// PendingUpload means content has not been uploaded, or was
	// invalidated since the last upload.
	PendingUpload State = iota
	// Uploaded means every texture reflects the current content.
	Uploaded
	// Invalid means the last upload failed. The layer is skipped during
	// composite until it is invalidated or re-uploaded.
	Invalid
)

func (s State) String() string {
	switch s {
	case PendingUpload:
		return "pending-upload"
	case Uploaded:
		return "uploaded"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// singleKey is the texture-map key for untiled layers.
var singleKey = tile.ID{Col: -1, Row: -1}

// layerTexture pairs a device handle with the byte size it was created
// with, so re-uploads after a bounds change release the right amount.
type layerTexture struct {
	id    gpu.TextureID
	bytes uint64
}

// Layer mirrors one paint layer on the GPU. It owns the texture handles
// in its map exclusively; Invalidate and Dispose destroy them on the
// device before clearing the map.
type Layer struct {
	source  *layer.Layer
	device  gpu.Device
	factory paint.SurfaceFactory

	// deviceMu serializes device access across concurrent uploads.
	// Shared with the owning Manager.
	deviceMu *sync.Mutex

	textures     map[tile.ID]layerTexture
	textureBytes uint64
	grid         *tile.Grid
	state        State

	lastComposited time.Time
	disposed       bool
}

func newLayer(source *layer.Layer, device gpu.Device, factory paint.SurfaceFactory, deviceMu *sync.Mutex) *Layer {
	return &Layer{
		source:   source,
		device:   device,
		factory:  factory,
		deviceMu: deviceMu,
		textures: make(map[tile.ID]layerTexture),
	}
}

// Source returns the mirrored paint layer.
func (l *Layer) Source() *layer.Layer { return l.source }

// State returns the upload state.
func (l *Layer) State() State { return l.state }

// TextureMemory returns the bytes held in this layer's textures.
func (l *Layer) TextureMemory() uint64 { return l.textureBytes }

// Tiled reports whether the layer uploads through a tile grid.
func (l *Layer) Tiled() bool {
	b := l.source.Bounds()
	return b.Width > tile.DefaultSize || b.Height > tile.DefaultSize
}

// UploadTexture rasterizes the layer's display list and uploads the
// result to the GPU. Tiled layers upload viewport-visible tiles first.
// It is a no-op when the layer is already uploaded and its source is
// clean, so repeated calls on stable content perform no device work. On
// failure the layer transitions to Invalid and is skipped by Composite;
// the error is returned for logging but the caller should not abort the
// frame over it.
func (l *Layer) UploadTexture(ctx context.Context, viewport paint.Rect) error {
	if l.disposed {
		return nil
	}
	if l.state == Uploaded && !l.source.IsDirty() {
		return nil
	}

	var err error
	if l.Tiled() {
		err = l.uploadTiled(ctx, viewport)
	} else {
		err = l.uploadSingle(ctx)
	}
	if err != nil {
		l.state = Invalid
		paint.Logger().Warn("compositor: layer upload failed",
			slog.Uint64("layer", uint64(l.source.ID())),
			slog.String("error", err.Error()))
		return err
	}
	l.state = Uploaded
	return nil
}

// uploadSingle rasterizes the whole layer into one bitmap and uploads
// it under the single-texture key.
func (l *Layer) uploadSingle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bounds := l.source.Bounds()
	w := int(math.Ceil(bounds.Width))
	h := int(math.Ceil(bounds.Height))
	if w <= 0 || h <= 0 {
		return fmt.Errorf("compositor: empty layer bounds %gx%g", bounds.Width, bounds.Height)
	}

	surface, err := l.factory.NewSurface(w, h)
	if err != nil {
		return fmt.Errorf("compositor: rasterize layer: %w", err)
	}
	canvas := surface.Canvas()
	canvas.Translate(-bounds.X, -bounds.Y)
	l.source.DisplayList().Replay(canvas)

	return l.upload(singleKey, w, h, surface.RGBA().Pix)
}

// uploadTiled rasterizes and uploads every tile, ranked against the
// viewport so visible tiles reach the GPU before offscreen ones.
func (l *Layer) uploadTiled(ctx context.Context, viewport paint.Rect) error {
	bounds := l.source.Bounds()
	if l.grid == nil || l.grid.Bounds() != bounds {
		l.destroyTextures()
		l.grid = tile.NewGrid(tile.DefaultSize, l.factory)
		l.grid.CreateTilesForBounds(bounds, l.source.DisplayList())
	} else {
		// Same geometry, new content.
		l.grid.CreateTilesForBounds(bounds, l.source.DisplayList())
	}

	for _, t := range l.grid.ByPriority(viewport) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.Rasterize(1); err != nil {
			return err
		}
		data := t.Data()
		if err := l.upload(t.ID(), data.Width, data.Height, data.Pixels.Pix); err != nil {
			return err
		}
	}
	return nil
}

// upload creates or updates the texture for one map key.
func (l *Layer) upload(key tile.ID, width, height int, pixels []byte) error {
	l.deviceMu.Lock()
	defer l.deviceMu.Unlock()

	need := uint64(width) * uint64(height) * 4
	if tex, ok := l.textures[key]; ok {
		if tex.bytes == need {
			if err := l.device.UpdateTexture(tex.id, pixels); err == nil {
				return nil
			}
		}
		// Dimensions changed, or the update failed; recreate.
		l.device.DestroyTexture(tex.id)
		l.textureBytes -= tex.bytes
		delete(l.textures, key)
	}

	id, err := l.device.CreateTexture(width, height, pixels)
	if err != nil {
		return err
	}
	l.textures[key] = layerTexture{id: id, bytes: need}
	l.textureBytes += need
	return nil
}

// Composite draws the layer's textures as quads. It is a no-op unless
// the layer is Uploaded. Tiled layers draw only ready tiles whose
// bounds intersect the viewport.
func (l *Layer) Composite(program gpu.ProgramID, viewport paint.Rect) error {
	if l.disposed || l.state != Uploaded {
		return nil
	}
	l.lastComposited = time.Now()

	uniforms := gpu.QuadUniforms{
		Transform: l.source.Transform(),
		Opacity:   l.source.Opacity(),
		Mode:      l.source.CompositingMode(),
	}

	l.deviceMu.Lock()
	defer l.deviceMu.Unlock()

	if l.grid != nil {
		for _, t := range l.grid.InRect(viewport) {
			if t.State() != tile.Ready {
				continue
			}
			tex, ok := l.textures[t.ID()]
			if !ok {
				continue
			}
			if err := l.device.DrawTexturedQuad(program, tex.id, t.Bounds(), uniforms); err != nil {
				return err
			}
		}
		return nil
	}

	tex, ok := l.textures[singleKey]
	if !ok {
		return nil
	}
	return l.device.DrawTexturedQuad(program, tex.id, l.source.Bounds(), uniforms)
}

// Invalidate destroys all GPU textures and resets the layer to
// PendingUpload so the next upload regenerates them.
func (l *Layer) Invalidate() {
	l.destroyTextures()
	if l.grid != nil {
		l.grid.InvalidateAll()
	}
	l.state = PendingUpload
}

// Dispose destroys all GPU textures and permanently retires the layer.
func (l *Layer) Dispose() {
	if l.disposed {
		return
	}
	l.destroyTextures()
	l.grid = nil
	l.disposed = true
}

func (l *Layer) destroyTextures() {
	l.deviceMu.Lock()
	defer l.deviceMu.Unlock()
	for key, tex := range l.textures {
		l.device.DestroyTexture(tex.id)
		delete(l.textures, key)
	}
	l.textureBytes = 0
}

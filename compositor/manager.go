// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/gpu"
	"github.com/gogpu/paint/layer"
)

// Manager keeps one compositor Layer per paint layer and drives their
// uploads and composites in paint order.
type Manager struct {
	device  gpu.Device
	factory paint.SurfaceFactory

	// deviceMu serializes device calls; uploads rasterize concurrently
	// but touch the device one at a time.
	deviceMu sync.Mutex

	layers map[layer.ID]*Layer
	order  []layer.ID

	// budget caps texture memory in bytes; zero means unlimited.
	budget uint64

	tree *layer.Tree
}

// NewManager creates a manager uploading through device and rasterizing
// through factory. budget caps texture memory in bytes (0 = unlimited).
func NewManager(device gpu.Device, factory paint.SurfaceFactory, budget uint64) *Manager {
	return &Manager{
		device:  device,
		factory: factory,
		layers:  make(map[layer.ID]*Layer),
		budget:  budget,
	}
}

// Update syncs the mirror set with the paint-layer tree: new paint
// layers get a compositor layer, dirty paint layers push their mirrors
// back to PendingUpload, and disposed paint layers release their
// mirrors through the tree's dispose hook.
func (m *Manager) Update(tree *layer.Tree) {
	if tree != m.tree {
		m.tree = tree
		tree.OnDispose(func(id layer.ID) {
			if cl, ok := m.layers[id]; ok {
				cl.Dispose()
				delete(m.layers, id)
			}
		})
	}

	m.order = m.order[:0]
	for _, pl := range tree.All() {
		cl, ok := m.layers[pl.ID()]
		if !ok {
			cl = newLayer(pl, m.device, m.factory, &m.deviceMu)
			m.layers[pl.ID()] = cl
		}
		if pl.IsDirty() && cl.state == Uploaded {
			cl.state = PendingUpload
		}
		m.order = append(m.order, pl.ID())
	}
}

// UploadPending uploads every layer that is not cleanly uploaded,
// ranking tiled layers' tiles against the viewport. The uploads run
// concurrently and are joined before returning, so a composite that
// follows never observes a half-uploaded batch. Failed layers turn
// Invalid and are skipped; only cancellation aborts the batch.
func (m *Manager) UploadPending(ctx context.Context, viewport paint.Rect) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range m.order {
		cl := m.layers[id]
		if cl == nil || (cl.state == Uploaded && !cl.source.IsDirty()) {
			continue
		}
		g.Go(func() error {
			if err := cl.UploadTexture(gctx, viewport); err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	return g.Wait()
}

// Composite draws every uploaded layer in paint order. A layer that
// fails to draw is logged and skipped; it never aborts the frame for
// the layers after it.
func (m *Manager) Composite(program gpu.ProgramID, viewport paint.Rect) {
	for _, id := range m.order {
		cl := m.layers[id]
		if cl == nil {
			continue
		}
		if err := cl.Composite(program, viewport); err != nil {
			paint.Logger().Warn("compositor: layer composite failed",
				slog.Uint64("layer", uint64(id)),
				slog.String("error", err.Error()))
		}
	}
}

// TextureMemory returns the total bytes held by all layer textures.
func (m *Manager) TextureMemory() uint64 {
	var total uint64
	for _, cl := range m.layers {
		total += cl.textureBytes
	}
	return total
}

// EvictToBudget releases textures of the least recently composited
// offscreen layers until texture memory fits the budget. Layers whose
// bounds intersect the viewport are never evicted; an evicted layer
// re-uploads on its next frame in view.
func (m *Manager) EvictToBudget(viewport paint.Rect) int {
	if m.budget == 0 {
		return 0
	}
	evicted := 0
	for m.TextureMemory() > m.budget {
		victim := m.oldestOffscreen(viewport)
		if victim == nil {
			break
		}
		victim.Invalidate()
		evicted++
	}
	if evicted > 0 {
		paint.Logger().Debug("compositor: evicted offscreen layers",
			slog.Int("count", evicted),
			slog.Uint64("textureMemory", m.TextureMemory()))
	}
	return evicted
}

func (m *Manager) oldestOffscreen(viewport paint.Rect) *Layer {
	var victim *Layer
	for _, cl := range m.layers {
		if cl.state != Uploaded || cl.textureBytes == 0 {
			continue
		}
		if cl.source.Bounds().Intersects(viewport) {
			continue
		}
		if victim == nil || cl.lastComposited.Before(victim.lastComposited) {
			victim = cl
		}
	}
	return victim
}

// Layer returns the compositor layer mirroring the given paint layer,
// or nil.
func (m *Manager) Layer(id layer.ID) *Layer { return m.layers[id] }

// Len returns the number of mirrored layers.
func (m *Manager) Len() int { return len(m.layers) }

// InvalidateAll resets every layer to PendingUpload, destroying its
// textures. Used on viewport resize.
func (m *Manager) InvalidateAll() {
	for _, cl := range m.layers {
		cl.Invalidate()
	}
}

// Dispose releases every layer and its GPU textures.
func (m *Manager) Dispose() {
	for id, cl := range m.layers {
		cl.Dispose()
		delete(m.layers, id)
	}
	m.order = nil
}

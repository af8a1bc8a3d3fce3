// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives the paint-to-pixels pipeline: it resolves
// stacking contexts, builds the paint-layer tree, triggers per-layer
// painting, tracks damage for incremental composites, and produces the
// final pixel surface plus statistics.
package render

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/layer"
	"github.com/gogpu/paint/stacking"
)

// Stats summarizes one paint pass.
type Stats struct {
	LayerCount      int           `json:"layerCount"`
	DirtyLayerCount int           `json:"dirtyLayerCount"`
	GPULayerCount   int           `json:"gpuLayerCount"`
	CommandCount    int           `json:"commandCount"`
	PaintDuration   time.Duration `json:"paintDuration"`
	CompositeTime   time.Duration `json:"compositeTime"`
}

// Result is the outcome of one Paint call.
type Result struct {
	// Surface holds the composited pixels.
	Surface paint.Surface

	// LayerTree is the live layer tree; valid until the next
	// non-incremental Paint.
	LayerTree *layer.Tree

	// Stats summarizes the pass.
	Stats Stats

	// DamageRegion lists the rectangles re-composited this pass. Nil
	// means the full surface was composited.
	DamageRegion []paint.Rect
}

// Coordinator owns the paint surface and layer tree across frames. It is
// not safe for concurrent use; all painting happens on one logical
// thread.
type Coordinator struct {
	factory paint.SurfaceFactory

	surface paint.Surface
	width   int
	height  int

	tree   *layer.Tree
	damage []paint.Rect
}

// NewCoordinator creates a coordinator that allocates surfaces from
// factory.
func NewCoordinator(factory paint.SurfaceFactory) *Coordinator {
	return &Coordinator{factory: factory}
}

// LayerTree returns the current layer tree, nil before the first Paint.
func (c *Coordinator) LayerTree() *layer.Tree { return c.tree }

// Paint renders the tree rooted at root into a width-by-height surface.
//
// With incremental set, the previous layer tree is kept: render objects
// whose needs-paint flag is set invalidate intersecting layers and only
// the damaged regions are re-composited. A surface resize always forces
// a full repaint, since a resized surface has no prior content to patch.
func (c *Coordinator) Paint(root paint.RenderObject, width, height int, incremental bool) (*Result, error) {
	if root == nil {
		return nil, fmt.Errorf("render: nil render tree root")
	}

	if c.surface == nil || c.width != width || c.height != height {
		surface, err := c.factory.NewSurface(width, height)
		if err != nil {
			return nil, fmt.Errorf("render: create %dx%d surface: %w", width, height, err)
		}
		c.surface = surface
		c.width = width
		c.height = height
		incremental = false
	}

	if c.tree == nil || !incremental {
		c.rebuildLayerTree(root, width, height)
		incremental = false
		c.damage = nil
	} else {
		c.invalidateChanged(root)
	}

	c.tree.PromoteToGPU()

	var stats Stats
	paintStart := time.Now()
	for _, l := range c.tree.All() {
		stats.LayerCount++
		if l.IsDirty() {
			stats.DirtyLayerCount++
			l.Paint()
		}
		if l.IsGPUAccelerated() {
			stats.GPULayerCount++
		}
		stats.CommandCount += l.CommandCount()
	}
	stats.PaintDuration = time.Since(paintStart)

	compositeStart := time.Now()
	var damage []paint.Rect
	if incremental && len(c.damage) > 0 {
		damage = c.damage
		c.compositeDamaged(damage)
	} else {
		c.surface.Clear()
		c.tree.Root().Composite(c.surface.Canvas())
	}
	stats.CompositeTime = time.Since(compositeStart)
	c.damage = nil

	paint.Logger().Debug("paint pass complete",
		slog.Int("layers", stats.LayerCount),
		slog.Int("dirty", stats.DirtyLayerCount),
		slog.Int("damaged", len(damage)))

	return &Result{
		Surface:      c.surface,
		LayerTree:    c.tree,
		Stats:        stats,
		DamageRegion: damage,
	}, nil
}

// Screenshot returns a copy of the current composite. It fails before
// the first Paint call.
func (c *Coordinator) Screenshot() (*image.RGBA, error) {
	if c.surface == nil {
		return nil, fmt.Errorf("render: no composite to capture, call Paint first")
	}
	src := c.surface.RGBA()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out, nil
}

// rebuildLayerTree resolves stacking contexts and creates one paint
// layer per context that needs its own compositing unit.
func (c *Coordinator) rebuildLayerTree(root paint.RenderObject, width, height int) {
	if c.tree != nil {
		c.tree.Dispose()
	}
	c.tree = layer.NewTree(paint.Rect{Width: float64(width), Height: float64(height)})
	ctx := stacking.Resolve(root)
	c.buildLayers(ctx, c.tree.Root(), true)
}

// buildLayers walks the stacking-context tree, attaching each context's
// render objects to the nearest enclosing layer, creating new layers for
// contexts that need them.
func (c *Coordinator) buildLayers(ctx *stacking.Context, target *layer.Layer, isRoot bool) {
	if !isRoot && needsOwnLayer(ctx.Root.Style()) {
		target = c.tree.CreateLayer(target, ctx.Root.Layout().Bounds())
		c.configureLayer(target, ctx.Root.Style())
	}

	// Order the context's own objects (root plus flattened contents)
	// by paint phase without recursing into child contexts.
	flat := &stacking.Context{Root: ctx.Root, Contents: ctx.Contents}
	for _, obj := range stacking.PaintOrder(flat) {
		target.AddRenderObject(obj)
	}

	for _, child := range ctx.Children {
		c.buildLayers(child, target, false)
	}
}

// configureLayer applies a render object's computed style to its new
// layer: transform, opacity, and blend mode.
func (c *Coordinator) configureLayer(l *layer.Layer, style paint.ComputedStyle) {
	l.SetTransform(paint.ParseTransform(style.GetPropertyValue("transform")))
	l.SetOpacity(paint.ParseOpacity(style.GetPropertyValue("opacity")))
	l.SetCompositingMode(paint.ParseCompositingMode(style.GetPropertyValue("mix-blend-mode")))
}

// needsOwnLayer decides layer creation for a stacking context root. It
// overlaps the context-establishment predicate but is intentionally not
// identical: fixed-position and scrollable-overflow elements get layers
// for scroll and compositing performance even though they do not need a
// new stacking context for correctness.
func needsOwnLayer(style paint.ComputedStyle) bool {
	if paint.ParseOpacity(style.GetPropertyValue("opacity")) < 1 {
		return true
	}
	if v := style.GetPropertyValue("transform"); v != "" && v != "none" {
		return true
	}
	if v := style.GetPropertyValue("filter"); v != "" && v != "none" {
		return true
	}
	for _, part := range strings.Split(style.GetPropertyValue("will-change"), ",") {
		switch strings.TrimSpace(part) {
		case "opacity", "transform", "filter":
			return true
		}
	}
	if v := style.GetPropertyValue("mix-blend-mode"); v != "" && v != "normal" {
		return true
	}
	if style.GetPropertyValue("isolation") == "isolate" {
		return true
	}
	if style.GetPropertyValue("position") == "fixed" {
		return true
	}
	switch style.GetPropertyValue("overflow") {
	case "scroll", "auto":
		return true
	}
	return false
}

// invalidateChanged finds render objects flagged needs-paint and
// invalidates every layer whose bounds intersect them, accumulating the
// damaged regions for the composite step.
func (c *Coordinator) invalidateChanged(root paint.RenderObject) {
	if c.tree == nil {
		return
	}
	var changed []paint.RenderObject
	collectNeedsPaint(root, &changed)

	for _, obj := range changed {
		region := obj.Layout().Bounds()
		invalidated := false
		for _, l := range c.tree.All() {
			if l.InvalidateRegion(region) {
				invalidated = true
			}
		}
		if invalidated {
			c.damage = append(c.damage, region)
		}
	}
}

func collectNeedsPaint(obj paint.RenderObject, out *[]paint.RenderObject) {
	if obj.NeedsPaint() {
		*out = append(*out, obj)
	}
	for _, child := range obj.Children() {
		collectNeedsPaint(child, out)
	}
}

// compositeDamaged clears and re-composites each damaged region, with
// the full layer tree clipped to the region. Regions may overlap or be
// disjoint, so each is processed independently.
func (c *Coordinator) compositeDamaged(regions []paint.Rect) {
	canvas := c.surface.Canvas()
	for _, region := range regions {
		c.clearRegion(region)
		canvas.Save()
		canvas.ClipRect(region)
		c.tree.Root().Composite(canvas)
		canvas.Restore()
	}
}

// clearRegion zeroes the surface pixels inside region.
func (c *Coordinator) clearRegion(region paint.Rect) {
	img := c.surface.RGBA()
	rect := image.Rect(int(region.X), int(region.Y), int(region.Right()+0.5), int(region.Bottom()+0.5))
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		i := img.PixOffset(rect.Min.X, y)
		row := img.Pix[i : i+rect.Dx()*4]
		for j := range row {
			row[j] = 0
		}
	}
}

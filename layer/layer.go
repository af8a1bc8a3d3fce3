// Package layer groups render objects into paint layers: units that are
// rasterized and composited as one. Layers form a tree mirroring
// stacking-context nesting; the tree is stored as an arena keyed by layer
// ID, with parent and child links held as IDs rather than pointers.
package layer

import (
	"github.com/gogpu/paint"
	"github.com/gogpu/paint/displaylist"
)

// ID uniquely identifies a layer within its Tree. The zero ID is never
// issued and marks "no layer".
type ID uint64

// NoLayer is the absent-layer sentinel used for the root's parent.
const NoLayer ID = 0

// BlendCanvas is implemented by drawing sinks that support compositing
// modes beyond source-over. Composite uses it when available and falls
// back to source-over otherwise.
type BlendCanvas interface {
	SetCompositingMode(mode paint.CompositingMode)
}

// Layer is one paint layer. All mutation goes through methods so dirty
// propagation cannot be bypassed.
type Layer struct {
	id   ID
	tree *Tree

	renderObjects []paint.RenderObject
	displayList   *displaylist.List

	bounds    paint.Rect
	transform paint.Transform
	opacity   float64
	mode      paint.CompositingMode

	parent   ID
	children []ID

	dirty          bool
	gpuAccelerated bool
	disposed       bool
}

// ID returns the layer's identifier.
func (l *Layer) ID() ID { return l.id }

// Parent returns the parent layer, or nil for the root.
func (l *Layer) Parent() *Layer { return l.tree.Find(l.parent) }

// Children returns the child layers in paint order.
func (l *Layer) Children() []*Layer {
	out := make([]*Layer, 0, len(l.children))
	for _, id := range l.children {
		if c := l.tree.Find(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// DisplayList returns the layer's recorded commands.
func (l *Layer) DisplayList() *displaylist.List { return l.displayList }

// Bounds returns a copy of the layer's bounds.
func (l *Layer) Bounds() paint.Rect { return l.bounds }

// SetBounds updates the layer's bounds and marks it dirty.
func (l *Layer) SetBounds(bounds paint.Rect) {
	l.bounds = bounds
	l.MarkDirty()
}

// Transform returns a copy of the layer's transform.
func (l *Layer) Transform() paint.Transform { return l.transform }

// SetTransform updates the layer's transform and marks it dirty.
func (l *Layer) SetTransform(t paint.Transform) {
	l.transform = t
	l.MarkDirty()
}

// Opacity returns the layer's opacity in [0, 1].
func (l *Layer) Opacity() float64 { return l.opacity }

// SetOpacity sets the layer's opacity, clamped to [0, 1], and marks it
// dirty.
func (l *Layer) SetOpacity(opacity float64) {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	l.opacity = opacity
	l.MarkDirty()
}

// CompositingMode returns the layer's blend mode.
func (l *Layer) CompositingMode() paint.CompositingMode { return l.mode }

// SetCompositingMode updates the blend mode and marks the layer dirty.
func (l *Layer) SetCompositingMode(mode paint.CompositingMode) {
	l.mode = mode
	l.MarkDirty()
}

// IsGPUAccelerated reports whether the layer has been promoted to GPU
// compositing.
func (l *Layer) IsGPUAccelerated() bool { return l.gpuAccelerated }

// IsDirty reports whether the layer needs repainting.
func (l *Layer) IsDirty() bool { return l.dirty }

// IsDisposed reports whether Dispose has released this layer.
func (l *Layer) IsDisposed() bool { return l.disposed }

// RenderObjects returns the layer's members in paint order. The slice is
// shared; callers must not mutate it.
func (l *Layer) RenderObjects() []paint.RenderObject { return l.renderObjects }

// AddRenderObject appends obj to the layer and marks it dirty.
func (l *Layer) AddRenderObject(obj paint.RenderObject) {
	l.renderObjects = append(l.renderObjects, obj)
	l.MarkDirty()
}

// RemoveRenderObject removes obj if present and marks the layer dirty.
func (l *Layer) RemoveRenderObject(obj paint.RenderObject) {
	for i, o := range l.renderObjects {
		if o == obj {
			l.renderObjects = append(l.renderObjects[:i], l.renderObjects[i+1:]...)
			l.MarkDirty()
			return
		}
	}
}

// MarkDirty flags the layer and, unconditionally, every ancestor. An
// ancestor is always considered dirty when any descendant is; this is a
// conservative over-approximation, not a precise damage region.
func (l *Layer) MarkDirty() {
	for n := l; n != nil; n = n.tree.Find(n.parent) {
		n.dirty = true
	}
}

// MarkClean clears the dirty flag on this layer only. Ancestors keep
// whatever state other descendants imply.
func (l *Layer) MarkClean() {
	l.dirty = false
}

// InvalidateRegion marks the layer dirty iff region intersects its
// bounds. It returns whether the layer was invalidated.
func (l *Layer) InvalidateRegion(region paint.Rect) bool {
	if !l.bounds.Intersects(region) {
		return false
	}
	l.MarkDirty()
	return true
}

// Paint re-records the layer's display list. It is a no-op unless the
// layer is dirty. When dirty it clears the list, asks every contained
// render object to emit its commands, clears their needs-paint flags,
// and marks the layer clean.
func (l *Layer) Paint() {
	if !l.dirty {
		return
	}
	l.displayList.Reset()
	for _, obj := range l.renderObjects {
		obj.Paint(l.displayList)
		obj.ClearNeedsPaint()
	}
	l.dirty = false
}

// Composite replays the layer's display list into sink with the layer's
// transform, opacity, and blend mode applied, then composites children.
// Transform order is fixed: translate, rotate about the origin point,
// scale.
func (l *Layer) Composite(sink paint.Canvas) {
	sink.Save()
	defer sink.Restore()

	t := l.transform
	if t.TranslateX != 0 || t.TranslateY != 0 {
		sink.Translate(t.TranslateX, t.TranslateY)
	}
	if t.Rotation != 0 {
		sink.Translate(t.OriginX, t.OriginY)
		sink.Rotate(t.Rotation)
		sink.Translate(-t.OriginX, -t.OriginY)
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		sink.Scale(t.ScaleX, t.ScaleY)
	}
	if l.opacity < 1 {
		sink.SetGlobalAlpha(l.opacity)
	}
	if l.mode != paint.ModeSourceOver {
		if bc, ok := sink.(BlendCanvas); ok {
			bc.SetCompositingMode(l.mode)
		}
	}

	l.displayList.Replay(sink)

	for _, child := range l.Children() {
		child.Composite(sink)
	}
}

// ShouldPromoteToGPU reports whether caching this layer's content as a
// GPU texture is likely to pay off: a rotation or non-unit scale,
// partial opacity, a non-default blend mode, or a member render object
// styled with will-change or a transform.
func (l *Layer) ShouldPromoteToGPU() bool {
	if l.transform.HasRotationOrScale() {
		return true
	}
	if l.opacity < 1 {
		return true
	}
	if l.mode != paint.ModeSourceOver {
		return true
	}
	for _, obj := range l.renderObjects {
		style := obj.Style()
		if style.GetPropertyValue("will-change") != "" {
			return true
		}
		if v := style.GetPropertyValue("transform"); v != "" && v != "none" {
			return true
		}
	}
	return false
}

// CommandCount returns the number of recorded commands, for statistics.
func (l *Layer) CommandCount() int { return l.displayList.Len() }

// Dispose releases the layer and, recursively, its children. Registered
// dispose hooks run before the layer leaves the arena so GPU resources
// tied to the ID can be freed first.
func (l *Layer) Dispose() {
	if l.disposed {
		return
	}
	for _, child := range l.Children() {
		child.Dispose()
	}
	l.disposed = true
	l.tree.release(l)
}

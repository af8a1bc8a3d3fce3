package layer

import (
	"log/slog"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/displaylist"
)

// Tree is the layer arena. It owns every layer, issues unique IDs, and
// maintains a single root; all other layers are reachable from the root
// through child links.
//
// Tree is not safe for concurrent use: all layer mutation happens on the
// compositor's single logical thread.
type Tree struct {
	layers map[ID]*Layer
	root   ID
	nextID ID

	disposeHooks []func(ID)
}

// NewTree creates a tree with a root layer covering bounds.
func NewTree(bounds paint.Rect) *Tree {
	t := &Tree{layers: make(map[ID]*Layer)}
	root := t.newLayer(bounds)
	t.root = root.id
	return t
}

// Root returns the root layer.
func (t *Tree) Root() *Layer { return t.layers[t.root] }

// CreateLayer allocates a layer with a fresh unique ID and attaches it
// as a child of parent. A nil parent attaches to the root.
func (t *Tree) CreateLayer(parent *Layer, bounds paint.Rect) *Layer {
	if parent == nil {
		parent = t.Root()
	}
	l := t.newLayer(bounds)
	l.parent = parent.id
	parent.children = append(parent.children, l.id)
	parent.MarkDirty()
	return l
}

func (t *Tree) newLayer(bounds paint.Rect) *Layer {
	t.nextID++
	l := &Layer{
		id:          t.nextID,
		tree:        t,
		displayList: displaylist.New(),
		bounds:      bounds,
		transform:   paint.IdentityTransform(),
		opacity:     1,
		mode:        paint.ModeSourceOver,
		dirty:       true,
	}
	t.layers[l.id] = l
	return l
}

// Find returns the layer with the given ID, or nil.
func (t *Tree) Find(id ID) *Layer {
	return t.layers[id]
}

// All returns every live layer in depth-first paint order starting at
// the root.
func (t *Tree) All() []*Layer {
	out := make([]*Layer, 0, len(t.layers))
	t.walk(t.Root(), &out)
	return out
}

func (t *Tree) walk(l *Layer, out *[]*Layer) {
	if l == nil {
		return
	}
	*out = append(*out, l)
	for _, child := range l.Children() {
		t.walk(child, out)
	}
}

// Len returns the number of live layers.
func (t *Tree) Len() int { return len(t.layers) }

// PromoteToGPU walks all layers once and enables GPU acceleration on
// every eligible layer that is not yet promoted. Promotion is monotonic:
// layers are never demoted automatically. It returns the number of
// newly promoted layers.
func (t *Tree) PromoteToGPU() int {
	promoted := 0
	for _, l := range t.All() {
		if !l.gpuAccelerated && l.ShouldPromoteToGPU() {
			l.gpuAccelerated = true
			promoted++
			paint.Logger().Debug("layer promoted to GPU",
				slog.Uint64("layer", uint64(l.id)))
		}
	}
	return promoted
}

// OnDispose registers a hook invoked with each layer ID as the layer is
// disposed, before it leaves the arena. The compositor uses this to free
// GPU textures bound to the ID.
func (t *Tree) OnDispose(hook func(ID)) {
	t.disposeHooks = append(t.disposeHooks, hook)
}

// release removes a disposed layer from the arena and detaches it from
// its parent.
func (t *Tree) release(l *Layer) {
	for _, hook := range t.disposeHooks {
		hook(l.id)
	}
	if parent := t.layers[l.parent]; parent != nil {
		for i, id := range parent.children {
			if id == l.id {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	delete(t.layers, l.id)
}

// Dispose releases every layer, root included. The tree is unusable
// afterwards.
func (t *Tree) Dispose() {
	if root := t.Root(); root != nil {
		root.Dispose()
	}
}

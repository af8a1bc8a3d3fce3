package stacking

import (
	"testing"

	"github.com/gogpu/paint"
)

type testStyle map[string]string

func (s testStyle) GetPropertyValue(name string) string { return s[name] }

// testObject is a minimal render-tree node for resolver tests.
type testObject struct {
	name     string
	style    testStyle
	layout   paint.Layout
	parent   *testObject
	children []*testObject
	dirty    bool
}

func newObject(name string, style testStyle, children ...*testObject) *testObject {
	o := &testObject{name: name, style: style, children: children}
	if o.style == nil {
		o.style = testStyle{}
	}
	for _, c := range children {
		c.parent = o
	}
	return o
}

func (o *testObject) Style() paint.ComputedStyle { return o.style }
func (o *testObject) Layout() paint.Layout       { return o.layout }

func (o *testObject) Parent() paint.RenderObject {
	if o.parent == nil {
		return nil
	}
	return o.parent
}

func (o *testObject) Children() []paint.RenderObject {
	out := make([]paint.RenderObject, len(o.children))
	for i, c := range o.children {
		out[i] = c
	}
	return out
}

func (o *testObject) NeedsPaint() bool          { return o.dirty }
func (o *testObject) ClearNeedsPaint()          { o.dirty = false }
func (o *testObject) Paint(canvas paint.Canvas) {}

var _ paint.RenderObject = (*testObject)(nil)

func names(objs []paint.RenderObject) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.(*testObject).name
	}
	return out
}

func equalNames(got []paint.RenderObject, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, n := range names(got) {
		if n != want[i] {
			return false
		}
	}
	return true
}

func TestEstablishes(t *testing.T) {
	tests := []struct {
		name  string
		style testStyle
		want  bool
	}{
		{"plain block", testStyle{}, false},
		{"positioned auto z", testStyle{"position": "relative"}, false},
		{"positioned numeric z", testStyle{"position": "relative", "z-index": "3"}, true},
		{"positioned zero z", testStyle{"position": "absolute", "z-index": "0"}, true},
		{"sticky numeric z", testStyle{"position": "sticky", "z-index": "-1"}, true},
		{"opacity below one", testStyle{"opacity": "0.5"}, true},
		{"opacity one", testStyle{"opacity": "1"}, false},
		{"transform", testStyle{"transform": "translate(10px, 20px)"}, true},
		{"transform none", testStyle{"transform": "none"}, false},
		{"filter", testStyle{"filter": "blur(2px)"}, true},
		{"will-change transform", testStyle{"will-change": "transform"}, true},
		{"will-change list", testStyle{"will-change": "left, opacity"}, true},
		{"will-change unrelated", testStyle{"will-change": "left"}, false},
		{"isolation", testStyle{"isolation": "isolate"}, true},
		{"blend mode", testStyle{"mix-blend-mode": "multiply"}, true},
		{"blend mode normal", testStyle{"mix-blend-mode": "normal"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := newObject("x", tt.style)
			if got := Establishes(obj); got != tt.want {
				t.Errorf("Establishes(%v) = %v, want %v", tt.style, got, tt.want)
			}
		})
	}
}

func TestEstablishesFlexItem(t *testing.T) {
	item := newObject("item", testStyle{"z-index": "2"})
	newObject("container", testStyle{"display": "flex"}, item)

	if !Establishes(item) {
		t.Error("Establishes() = false for flex item with numeric z-index, want true")
	}

	plain := newObject("plain", testStyle{"z-index": "2"})
	newObject("block", testStyle{}, plain)
	if Establishes(plain) {
		t.Error("Establishes() = true for non-positioned block child with z-index, want false")
	}
}

func TestResolveFlattensNonEstablishingDescendants(t *testing.T) {
	grandchild := newObject("grandchild", nil)
	child := newObject("child", nil, grandchild)
	nested := newObject("nested", testStyle{"opacity": "0.5"})
	root := newObject("root", nil, child, nested)

	ctx := Resolve(root)

	if ctx.Root.(*testObject).name != "root" {
		t.Errorf("context root = %s, want root", ctx.Root.(*testObject).name)
	}
	if len(ctx.Contents) != 2 {
		t.Fatalf("len(Contents) = %d, want 2", len(ctx.Contents))
	}
	if got := []string{ctx.Contents[0].(*testObject).name, ctx.Contents[1].(*testObject).name}; got[0] != "child" || got[1] != "grandchild" {
		t.Errorf("Contents = %v, want [child grandchild]", got)
	}
	if len(ctx.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(ctx.Children))
	}
	if ctx.Children[0].Root.(*testObject).name != "nested" {
		t.Errorf("nested context root = %s, want nested", ctx.Children[0].Root.(*testObject).name)
	}
}

func TestResolveSortsChildrenByZIndex(t *testing.T) {
	high := newObject("high", testStyle{"position": "relative", "z-index": "10"})
	low := newObject("low", testStyle{"position": "relative", "z-index": "-5"})
	mid1 := newObject("mid1", testStyle{"position": "relative", "z-index": "0"})
	mid2 := newObject("mid2", testStyle{"position": "relative", "z-index": "0"})
	root := newObject("root", nil, high, mid1, low, mid2)

	ctx := Resolve(root)

	want := []string{"low", "mid1", "mid2", "high"}
	if len(ctx.Children) != len(want) {
		t.Fatalf("len(Children) = %d, want %d", len(ctx.Children), len(want))
	}
	for i, w := range want {
		if got := ctx.Children[i].Root.(*testObject).name; got != w {
			t.Errorf("Children[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestPaintOrderZIndexPhases(t *testing.T) {
	a := newObject("a", testStyle{"position": "relative", "z-index": "-1"})
	r := newObject("r", nil)
	b := newObject("b", testStyle{"position": "relative", "z-index": "1"})
	root := newObject("root", nil, a, r, b)

	order := PaintOrder(Resolve(root))

	want := []string{"root", "a", "r", "b"}
	if !equalNames(order, want) {
		t.Errorf("PaintOrder() = %v, want %v", names(order), want)
	}
}

func TestPaintOrderContentPhases(t *testing.T) {
	block := newObject("block", nil)
	floated := newObject("floated", testStyle{"float": "left"})
	inline := newObject("inline", testStyle{"display": "inline"})
	positioned := newObject("positioned", testStyle{"position": "relative"})
	root := newObject("root", nil, positioned, inline, floated, block)

	order := PaintOrder(Resolve(root))

	// Block content before floats, floats before inline, inline before
	// positioned auto-z content, regardless of document order.
	want := []string{"root", "block", "floated", "inline", "positioned"}
	if !equalNames(order, want) {
		t.Errorf("PaintOrder() = %v, want %v", names(order), want)
	}
}

func TestPaintOrderNestedContexts(t *testing.T) {
	inner := newObject("inner", testStyle{"position": "absolute", "z-index": "5"})
	outerNeg := newObject("outerNeg", testStyle{"position": "relative", "z-index": "-2"}, inner)
	content := newObject("content", nil)
	root := newObject("root", nil, outerNeg, content)

	order := PaintOrder(Resolve(root))

	want := []string{"root", "outerNeg", "inner", "content"}
	if !equalNames(order, want) {
		t.Errorf("PaintOrder() = %v, want %v", names(order), want)
	}
}

func TestPaintOrderCoversEveryObject(t *testing.T) {
	leaf1 := newObject("leaf1", nil)
	leaf2 := newObject("leaf2", testStyle{"display": "inline"})
	mid := newObject("mid", testStyle{"opacity": "0.9"}, leaf1)
	root := newObject("root", nil, mid, leaf2)

	order := PaintOrder(Resolve(root))

	seen := map[string]bool{}
	for _, o := range order {
		n := o.(*testObject).name
		if seen[n] {
			t.Errorf("object %s painted twice", n)
		}
		seen[n] = true
	}
	for _, n := range []string{"root", "mid", "leaf1", "leaf2"} {
		if !seen[n] {
			t.Errorf("object %s missing from paint order", n)
		}
	}
}

func TestCompare(t *testing.T) {
	low := newObject("low", testStyle{"position": "relative", "z-index": "-1"})
	lowChild := newObject("lowChild", nil)
	low.children = append(low.children, lowChild)
	lowChild.parent = low

	high := newObject("high", testStyle{"position": "relative", "z-index": "4"})
	plain := newObject("plain", nil)
	newObject("root", nil, low, plain, high)

	if got := Compare(lowChild, high); got >= 0 {
		t.Errorf("Compare(lowChild, high) = %d, want < 0", got)
	}
	if got := Compare(high, lowChild); got <= 0 {
		t.Errorf("Compare(high, lowChild) = %d, want > 0", got)
	}
	if got := Compare(low, plain); got >= 0 {
		t.Errorf("Compare(low, plain) = %d, want < 0 (lower z-index)", got)
	}
	if got := Compare(plain, plain); got != 0 {
		t.Errorf("Compare(x, x) = %d, want 0", got)
	}
}

func TestCompareDocumentOrderSameContext(t *testing.T) {
	first := newObject("first", nil)
	second := newObject("second", nil)
	newObject("root", nil, first, second)

	if got := Compare(first, second); got >= 0 {
		t.Errorf("Compare(first, second) = %d, want < 0", got)
	}
	if got := Compare(second, first); got <= 0 {
		t.Errorf("Compare(second, first) = %d, want > 0", got)
	}
}

// Package stacking resolves a render tree into CSS stacking contexts and
// produces the order in which render objects must paint.
//
// A stacking context groups elements that paint as a unit: negative
// z-index children first, then normal flow, then positive z-index. The
// resolver rebuilds the context tree from scratch on every pass; contexts
// carry no identity across frames.
package stacking

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/paint"
)

// Context is one node of the stacking-context tree.
//
// Every render object in the resolved tree appears in exactly one
// context's Contents, or as exactly one nested context's Root.
type Context struct {
	// Root is the render object establishing this context.
	Root paint.RenderObject

	// ZIndex is the context's z-index, 0 when auto.
	ZIndex int

	// IsPositioned reports whether Root has a non-static position.
	IsPositioned bool

	// Children are nested contexts, sorted ascending by ZIndex with
	// document order breaking ties.
	Children []*Context

	// Contents are render objects that belong to this context without
	// establishing their own, in document order.
	Contents []paint.RenderObject
}

// Resolve builds the stacking-context tree rooted at root. The tree root
// always establishes the outermost context regardless of its style.
func Resolve(root paint.RenderObject) *Context {
	ctx := newContext(root)
	for _, child := range root.Children() {
		collect(ctx, child)
	}
	sortChildren(ctx)
	return ctx
}

// collect assigns obj and its subtree to parent: either as a nested
// context (recursing independently) or flattened into parent's contents.
func collect(parent *Context, obj paint.RenderObject) {
	if Establishes(obj) {
		child := newContext(obj)
		for _, c := range obj.Children() {
			collect(child, c)
		}
		sortChildren(child)
		parent.Children = append(parent.Children, child)
		return
	}
	parent.Contents = append(parent.Contents, obj)
	for _, c := range obj.Children() {
		collect(parent, c)
	}
}

func newContext(obj paint.RenderObject) *Context {
	z, _ := zIndexOf(obj.Style())
	return &Context{
		Root:         obj,
		ZIndex:       z,
		IsPositioned: isPositioned(obj.Style()),
	}
}

// sortChildren orders nested contexts ascending by z-index. The sort is
// stable so equal z-indexes keep document order.
func sortChildren(ctx *Context) {
	sort.SliceStable(ctx.Children, func(i, j int) bool {
		return ctx.Children[i].ZIndex < ctx.Children[j].ZIndex
	})
}

// Establishes reports whether obj starts a new stacking context.
func Establishes(obj paint.RenderObject) bool {
	style := obj.Style()

	if isPositioned(style) {
		if _, numeric := zIndexOf(style); numeric {
			return true
		}
	}
	if paint.ParseOpacity(style.GetPropertyValue("opacity")) < 1 {
		return true
	}
	if v := style.GetPropertyValue("transform"); v != "" && v != "none" {
		return true
	}
	if v := style.GetPropertyValue("filter"); v != "" && v != "none" {
		return true
	}
	if willChangeCreatesContext(style.GetPropertyValue("will-change")) {
		return true
	}
	if style.GetPropertyValue("isolation") == "isolate" {
		return true
	}
	if v := style.GetPropertyValue("mix-blend-mode"); v != "" && v != "normal" {
		return true
	}
	if isFlexOrGridItem(obj) {
		if _, numeric := zIndexOf(style); numeric {
			return true
		}
	}
	return false
}

// PaintOrder flattens the context tree into the painting sequence CSS
// mandates: the context root, negative-z contexts, block-level contents,
// floats, inline contents, then auto and positive-z contexts.
func PaintOrder(ctx *Context) []paint.RenderObject {
	order := make([]paint.RenderObject, 0, 1+len(ctx.Contents))
	appendPaintOrder(&order, ctx)
	return order
}

func appendPaintOrder(order *[]paint.RenderObject, ctx *Context) {
	*order = append(*order, ctx.Root)

	for _, child := range ctx.Children {
		if child.ZIndex < 0 {
			appendPaintOrder(order, child)
		}
	}
	for _, obj := range ctx.Contents {
		if isBlockContent(obj) {
			*order = append(*order, obj)
		}
	}
	for _, obj := range ctx.Contents {
		if isFloated(obj.Style()) {
			*order = append(*order, obj)
		}
	}
	for _, obj := range ctx.Contents {
		if isInlineContent(obj) {
			*order = append(*order, obj)
		}
	}
	// Positioned descendants with an auto z-index paint at the same
	// level as zero-index contexts.
	for _, obj := range ctx.Contents {
		if isPositioned(obj.Style()) && !isFloated(obj.Style()) {
			*order = append(*order, obj)
		}
	}
	for _, child := range ctx.Children {
		if child.ZIndex == 0 {
			appendPaintOrder(order, child)
		}
	}
	for _, child := range ctx.Children {
		if child.ZIndex > 0 {
			appendPaintOrder(order, child)
		}
	}
}

// Compare orders two render objects by paint precedence: -1 if a paints
// before b, +1 if after, 0 if indistinguishable. Objects in different
// stacking contexts compare by context z-index; objects in the same
// context compare by document order.
func Compare(a, b paint.RenderObject) int {
	ca := nearestContextRoot(a)
	cb := nearestContextRoot(b)

	if ca != cb {
		za, _ := zIndexOf(ca.Style())
		zb, _ := zIndexOf(cb.Style())
		switch {
		case za < zb:
			return -1
		case za > zb:
			return 1
		}
	}
	return documentOrder(a, b)
}

// nearestContextRoot returns the closest ancestor (including obj itself)
// that establishes a stacking context, or the tree root.
func nearestContextRoot(obj paint.RenderObject) paint.RenderObject {
	for n := obj; n != nil; n = n.Parent() {
		if n.Parent() == nil || Establishes(n) {
			return n
		}
	}
	return obj
}

// documentOrder compares by depth-first pre-order position in the tree.
func documentOrder(a, b paint.RenderObject) int {
	if a == b {
		return 0
	}
	pa := pathFromRoot(a)
	pb := pathFromRoot(b)
	n := len(pa)
	if len(pb) < n {
		n = len(pb)
	}
	for i := 0; i < n; i++ {
		if pa[i] != pb[i] {
			return pa[i] - pb[i]
		}
	}
	// One is an ancestor of the other; ancestors paint first.
	if len(pa) < len(pb) {
		return -1
	}
	return 1
}

// pathFromRoot returns the child indexes leading from the root to obj.
func pathFromRoot(obj paint.RenderObject) []int {
	var path []int
	for n := obj; n.Parent() != nil; n = n.Parent() {
		idx := 0
		for i, sib := range n.Parent().Children() {
			if sib == n {
				idx = i
				break
			}
		}
		path = append(path, idx)
	}
	// Reverse into root-first order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// --------------------------------------------------------------------------
// Style predicates
// --------------------------------------------------------------------------

func isPositioned(style paint.ComputedStyle) bool {
	switch style.GetPropertyValue("position") {
	case "relative", "absolute", "fixed", "sticky":
		return true
	}
	return false
}

// zIndexOf parses the z-index property. numeric is false for "auto",
// the empty string, or an unparseable value.
func zIndexOf(style paint.ComputedStyle) (z int, numeric bool) {
	v := strings.TrimSpace(style.GetPropertyValue("z-index"))
	if v == "" || v == "auto" {
		return 0, false
	}
	z, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return z, true
}

func willChangeCreatesContext(v string) bool {
	for _, part := range strings.Split(v, ",") {
		switch strings.TrimSpace(part) {
		case "opacity", "transform", "filter":
			return true
		}
	}
	return false
}

func isFlexOrGridItem(obj paint.RenderObject) bool {
	parent := obj.Parent()
	if parent == nil {
		return false
	}
	switch parent.Style().GetPropertyValue("display") {
	case "flex", "inline-flex", "grid", "inline-grid":
		return true
	}
	return false
}

func isFloated(style paint.ComputedStyle) bool {
	switch style.GetPropertyValue("float") {
	case "left", "right":
		return true
	}
	return false
}

// isBlockContent reports in-flow, non-inline, non-positioned content.
func isBlockContent(obj paint.RenderObject) bool {
	style := obj.Style()
	if isPositioned(style) || isFloated(style) {
		return false
	}
	return !strings.HasPrefix(style.GetPropertyValue("display"), "inline")
}

// isInlineContent reports in-flow inline, non-positioned content.
func isInlineContent(obj paint.RenderObject) bool {
	style := obj.Style()
	if isPositioned(style) || isFloated(style) {
		return false
	}
	return strings.HasPrefix(style.GetPropertyValue("display"), "inline")
}

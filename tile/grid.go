package tile

import (
	"math"
	"sort"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/displaylist"
)

// Grid partitions a layer's bounds into a regular grid of tiles. It owns
// every tile it creates.
type Grid struct {
	tileSize float64
	factory  paint.SurfaceFactory

	bounds paint.Rect
	tiles  map[ID]*Tile
}

// NewGrid creates an empty grid. A non-positive tileSize selects
// DefaultSize.
func NewGrid(tileSize float64, factory paint.SurfaceFactory) *Grid {
	if tileSize <= 0 {
		tileSize = DefaultSize
	}
	return &Grid{
		tileSize: tileSize,
		factory:  factory,
		tiles:    make(map[ID]*Tile),
	}
}

// TileSize returns the grid's tile edge length in pixels.
func (g *Grid) TileSize() float64 { return g.tileSize }

// Bounds returns the bounds the grid currently covers.
func (g *Grid) Bounds() paint.Rect { return g.bounds }

// CreateTilesForBounds replaces the grid's tiles with a fresh partition
// of bounds into ceil(width/tileSize) by ceil(height/tileSize) cells.
// Every tile shares list as its rasterization source; edge tiles are
// clipped to the remaining bounds.
func (g *Grid) CreateTilesForBounds(bounds paint.Rect, list *displaylist.List) {
	g.bounds = bounds
	g.tiles = make(map[ID]*Tile)
	if bounds.IsEmpty() {
		return
	}

	cols := int(math.Ceil(bounds.Width / g.tileSize))
	rows := int(math.Ceil(bounds.Height / g.tileSize))

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := bounds.X + float64(col)*g.tileSize
			y := bounds.Y + float64(row)*g.tileSize
			w := math.Min(g.tileSize, bounds.Right()-x)
			h := math.Min(g.tileSize, bounds.Bottom()-y)

			id := ID{Col: col, Row: row}
			g.tiles[id] = &Tile{
				id:      id,
				bounds:  paint.Rect{X: x, Y: y, Width: w, Height: h},
				list:    list,
				factory: g.factory,
			}
		}
	}
}

// Get returns the tile at the given cell, or nil.
func (g *Grid) Get(id ID) *Tile { return g.tiles[id] }

// Len returns the number of tiles.
func (g *Grid) Len() int { return len(g.tiles) }

// All returns every tile in row-major order.
func (g *Grid) All() []*Tile {
	out := make([]*Tile, 0, len(g.tiles))
	for _, t := range g.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].id.Row != out[j].id.Row {
			return out[i].id.Row < out[j].id.Row
		}
		return out[i].id.Col < out[j].id.Col
	})
	return out
}

// InRect returns the tiles whose bounds intersect region, in row-major
// order.
func (g *Grid) InRect(region paint.Rect) []*Tile {
	out := make([]*Tile, 0)
	for _, t := range g.All() {
		if t.bounds.Intersects(region) {
			out = append(out, t)
		}
	}
	return out
}

// ByPriority recalculates every tile's priority against the viewport and
// returns the tiles sorted by it, highest priority first. Ties keep
// row-major order.
func (g *Grid) ByPriority(viewport paint.Rect) []*Tile {
	out := g.All()
	for _, t := range out {
		t.CalculatePriority(viewport)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].priority < out[j].priority
	})
	return out
}

// InvalidateAll drops every tile's bitmap.
func (g *Grid) InvalidateAll() {
	for _, t := range g.tiles {
		t.Invalidate()
	}
}

// InvalidateRect invalidates tiles whose bounds intersect region and
// returns how many were invalidated.
func (g *Grid) InvalidateRect(region paint.Rect) int {
	n := 0
	for _, t := range g.tiles {
		if t.bounds.Intersects(region) {
			t.Invalidate()
			n++
		}
	}
	return n
}

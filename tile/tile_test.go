package tile

import (
	"errors"
	"testing"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/displaylist"
	"github.com/gogpu/paint/raster"
)

func redList(r paint.Rect) *displaylist.List {
	l := displaylist.New()
	l.SetFillStyle("#ff0000")
	l.FillRect(r)
	return l
}

func TestGridPartitionCoverage(t *testing.T) {
	g := NewGrid(256, raster.Factory{})
	bounds := paint.Rect{Width: 300, Height: 300}
	g.CreateTilesForBounds(bounds, displaylist.New())

	if g.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 (ceil(300/256) per axis)", g.Len())
	}

	// Union of tile bounds equals the layer bounds exactly.
	tiles := g.All()
	union := tiles[0].Bounds()
	var area float64
	for _, tl := range tiles {
		union = union.Union(tl.Bounds())
		area += tl.Bounds().Width * tl.Bounds().Height
	}
	if union != bounds {
		t.Errorf("union of tile bounds = %+v, want %+v", union, bounds)
	}
	if area != bounds.Width*bounds.Height {
		t.Errorf("total tile area = %v, want %v (tiles must not overlap)", area, bounds.Width*bounds.Height)
	}

	// Edge tiles clip to remaining bounds.
	edge := g.Get(ID{Col: 1, Row: 1})
	if edge == nil {
		t.Fatal("Get(1,1) = nil")
	}
	want := paint.Rect{X: 256, Y: 256, Width: 44, Height: 44}
	if edge.Bounds() != want {
		t.Errorf("edge tile bounds = %+v, want %+v", edge.Bounds(), want)
	}
}

func TestGridDefaultSize(t *testing.T) {
	g := NewGrid(0, raster.Factory{})
	if g.TileSize() != DefaultSize {
		t.Errorf("TileSize() = %v, want %v", g.TileSize(), DefaultSize)
	}
}

func TestGridEmptyBounds(t *testing.T) {
	g := NewGrid(256, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{}, displaylist.New())
	if g.Len() != 0 {
		t.Errorf("Len() = %d for empty bounds, want 0", g.Len())
	}
}

func TestRasterizeStateMachine(t *testing.T) {
	g := NewGrid(64, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{Width: 64, Height: 64}, redList(paint.Rect{Width: 64, Height: 64}))
	tl := g.Get(ID{})

	if tl.State() != Pending {
		t.Fatalf("initial State() = %v, want Pending", tl.State())
	}
	if err := tl.Rasterize(1); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if tl.State() != Ready {
		t.Errorf("State() = %v after Rasterize, want Ready", tl.State())
	}
	if tl.Data() == nil || tl.Data().Width != 64 || tl.Data().Height != 64 {
		t.Fatalf("Data() = %+v, want 64x64 bitmap", tl.Data())
	}
	// Tile content: the fill covers the entire tile.
	if r := tl.Data().Pixels.Pix[0]; r != 255 {
		t.Errorf("tile pixel r = %d, want 255", r)
	}

	tl.Invalidate()
	if tl.State() != Invalid {
		t.Errorf("State() = %v after Invalidate, want Invalid", tl.State())
	}
	if tl.Data() != nil {
		t.Error("Data() non-nil after Invalidate")
	}

	// Invalid is a valid re-entry point.
	if err := tl.Rasterize(1); err != nil {
		t.Fatalf("re-Rasterize() error = %v", err)
	}
	if tl.State() != Ready {
		t.Errorf("State() = %v after re-Rasterize, want Ready", tl.State())
	}
}

func TestRasterizeReadyIsNoOp(t *testing.T) {
	g := NewGrid(32, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{Width: 32, Height: 32}, redList(paint.Rect{Width: 32, Height: 32}))
	tl := g.Get(ID{})

	if err := tl.Rasterize(1); err != nil {
		t.Fatal(err)
	}
	first := tl.Data()
	if err := tl.Rasterize(1); err != nil {
		t.Fatal(err)
	}
	if tl.Data() != first {
		t.Error("Rasterize on Ready tile replaced the bitmap")
	}
}

func TestRasterizeTranslatesToTileOrigin(t *testing.T) {
	// A rect covering only the second tile column must appear at the
	// second tile's local origin.
	list := redList(paint.Rect{X: 64, Y: 0, Width: 64, Height: 64})
	g := NewGrid(64, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{Width: 128, Height: 64}, list)

	right := g.Get(ID{Col: 1})
	if err := right.Rasterize(1); err != nil {
		t.Fatal(err)
	}
	if r := right.Data().Pixels.Pix[0]; r != 255 {
		t.Errorf("right tile local origin r = %d, want 255", r)
	}

	left := g.Get(ID{Col: 0})
	if err := left.Rasterize(1); err != nil {
		t.Fatal(err)
	}
	// Shared-edge geometry bleeds one pixel into the neighbor at most;
	// the left tile's interior stays unpainted.
	if a := left.Data().Pixels.Pix[4*(64*32+32)+3]; a != 0 {
		t.Errorf("left tile interior alpha = %d, want 0", a)
	}
}

func TestRasterizeScales(t *testing.T) {
	g := NewGrid(100, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{Width: 100, Height: 50}, redList(paint.Rect{Width: 100, Height: 50}))
	tl := g.Get(ID{})

	if err := tl.Rasterize(2); err != nil {
		t.Fatal(err)
	}
	if tl.Data().Width != 200 || tl.Data().Height != 100 {
		t.Errorf("scaled bitmap = %dx%d, want 200x100", tl.Data().Width, tl.Data().Height)
	}
}

type failingFactory struct{}

func (failingFactory) NewSurface(w, h int) (paint.Surface, error) {
	return nil, errors.New("no surface backend")
}

func TestRasterizeFailureInvalidates(t *testing.T) {
	g := NewGrid(64, failingFactory{})
	g.CreateTilesForBounds(paint.Rect{Width: 64, Height: 64}, displaylist.New())
	tl := g.Get(ID{})

	if err := tl.Rasterize(1); err == nil {
		t.Fatal("Rasterize() error = nil with failing factory")
	}
	if tl.State() != Invalid {
		t.Errorf("State() = %v after failed Rasterize, want Invalid", tl.State())
	}
}

func TestCalculatePriority(t *testing.T) {
	viewport := paint.Rect{Width: 800, Height: 600}
	tests := []struct {
		name   string
		bounds paint.Rect
		want   Priority
	}{
		{"intersecting", paint.Rect{X: 700, Y: 500, Width: 256, Height: 256}, Visible},
		{"just outside", paint.Rect{X: 900, Y: 0, Width: 256, Height: 256}, NearViewport},
		{"medium distance", paint.Rect{X: 1600, Y: 0, Width: 256, Height: 256}, FarFromViewport},
		{"distant", paint.Rect{X: 5000, Y: 5000, Width: 256, Height: 256}, Offscreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := &Tile{bounds: tt.bounds}
			if got := tl.CalculatePriority(viewport); got != tt.want {
				t.Errorf("CalculatePriority() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestByPriorityOrdering(t *testing.T) {
	g := NewGrid(256, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{Width: 2560, Height: 256}, displaylist.New())

	viewport := paint.Rect{Width: 256, Height: 256}
	ordered := g.ByPriority(viewport)

	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Priority() > ordered[i].Priority() {
			t.Fatalf("tiles not ordered by priority: %v before %v",
				ordered[i-1].Priority(), ordered[i].Priority())
		}
	}
	if ordered[0].Priority() != Visible {
		t.Errorf("first tile priority = %v, want Visible", ordered[0].Priority())
	}
}

func TestInRect(t *testing.T) {
	g := NewGrid(256, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{Width: 512, Height: 512}, displaylist.New())

	hits := g.InRect(paint.Rect{X: 300, Y: 300, Width: 10, Height: 10})
	if len(hits) != 1 {
		t.Fatalf("InRect() returned %d tiles, want 1", len(hits))
	}
	if hits[0].ID() != (ID{Col: 1, Row: 1}) {
		t.Errorf("InRect() tile = %v, want {1 1}", hits[0].ID())
	}
}

func TestInvalidateRect(t *testing.T) {
	g := NewGrid(256, raster.Factory{})
	g.CreateTilesForBounds(paint.Rect{Width: 512, Height: 512}, redList(paint.Rect{Width: 512, Height: 512}))
	for _, tl := range g.All() {
		if err := tl.Rasterize(1); err != nil {
			t.Fatal(err)
		}
	}

	n := g.InvalidateRect(paint.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	if n != 1 {
		t.Errorf("InvalidateRect() = %d, want 1", n)
	}
	if g.Get(ID{}).State() != Invalid {
		t.Error("intersecting tile not invalidated")
	}
	if g.Get(ID{Col: 1, Row: 1}).State() != Ready {
		t.Error("disjoint tile invalidated")
	}

	g.InvalidateAll()
	for _, tl := range g.All() {
		if tl.State() != Invalid {
			t.Errorf("tile %v state = %v after InvalidateAll, want Invalid", tl.ID(), tl.State())
		}
	}
}

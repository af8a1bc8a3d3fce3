// Command paintdemo renders a small styled tree through the full
// pipeline (stacking resolution, layer painting, compositing) and
// saves the result as a PNG alongside the layer tree export.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/compositor"
	"github.com/gogpu/paint/raster"
	"github.com/gogpu/paint/render"

	// Register the wgpu device; the compositor falls back to software
	// when no GPU is available.
	_ "github.com/gogpu/paint/gpu/wgpu"
)

func main() {
	var (
		width  = flag.Int("width", 800, "surface width")
		height = flag.Int("height", 600, "surface height")
		output = flag.String("output", "paintdemo.png", "output file")
		frames = flag.Int("frames", 3, "compositor frames to run")
		layers = flag.Bool("layers", false, "print the layer tree export")
	)
	flag.Parse()

	root := buildDemoTree(*width, *height)

	coordinator := render.NewCoordinator(raster.Factory{})
	result, err := coordinator.Paint(root, *width, *height, false)
	if err != nil {
		log.Fatalf("paint failed: %v", err)
	}
	log.Printf("painted %d layers (%d dirty, %d gpu, %d commands) in %v",
		result.Stats.LayerCount, result.Stats.DirtyLayerCount,
		result.Stats.GPULayerCount, result.Stats.CommandCount,
		result.Stats.PaintDuration)

	if *layers {
		data, err := coordinator.ExportLayerTreeJSON()
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		fmt.Println(string(data))
	}

	runCompositor(coordinator, *width, *height, *frames)

	img, err := coordinator.Screenshot()
	if err != nil {
		log.Fatalf("screenshot failed: %v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("encode png: %v", err)
	}
	log.Printf("demo saved to %s (%dx%d)", *output, *width, *height)
}

// runCompositor uploads the painted layers to the best available GPU
// device and drives a few frames for timing statistics.
func runCompositor(coordinator *render.Coordinator, width, height, frames int) {
	thread := compositor.NewThread(raster.Factory{}, compositor.Config{})
	if err := thread.Initialize(width, height); err != nil {
		log.Printf("compositor unavailable, skipping: %v", err)
		return
	}
	defer thread.Dispose()

	ctx := context.Background()
	for i := 0; i < frames; i++ {
		if err := thread.RenderFrame(ctx, coordinator.LayerTree()); err != nil {
			log.Printf("frame %d failed: %v", i, err)
			return
		}
	}

	stats := thread.Stats()
	log.Printf("composited %d frames on %q (%.1f fps avg, %d dropped, %d KiB textures)",
		stats.Frames, thread.Device().Name(), stats.AverageFPS,
		stats.DroppedFrames, stats.TextureMemory/1024)
}

// demoNode is a minimal render-tree node for the demo.
type demoNode struct {
	style    map[string]string
	layout   paint.Layout
	color    string
	text     string
	parent   paint.RenderObject
	children []paint.RenderObject
	painted  bool
}

func (n *demoNode) Style() paint.ComputedStyle     { return demoStyle(n.style) }
func (n *demoNode) Layout() paint.Layout           { return n.layout }
func (n *demoNode) Parent() paint.RenderObject     { return n.parent }
func (n *demoNode) Children() []paint.RenderObject { return n.children }
func (n *demoNode) NeedsPaint() bool               { return !n.painted }
func (n *demoNode) ClearNeedsPaint()               { n.painted = true }

func (n *demoNode) Paint(canvas paint.Canvas) {
	b := n.layout.Bounds()
	canvas.SetFillStyle(n.color)
	canvas.FillRect(b)
	if n.text != "" {
		canvas.SetFillStyle("#ffffff")
		canvas.FillText(n.text, b.X+12, b.Y+24)
	}
}

type demoStyle map[string]string

func (s demoStyle) GetPropertyValue(name string) string { return s[name] }

func (n *demoNode) add(child *demoNode) *demoNode {
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// buildDemoTree assembles a tree exercising z-index ordering, opacity
// layers, transforms, and blend modes.
func buildDemoTree(width, height int) paint.RenderObject {
	root := &demoNode{
		layout: paint.Layout{Width: float64(width), Height: float64(height)},
		color:  "#202830",
		style:  map[string]string{},
	}

	root.add(&demoNode{
		layout: paint.Layout{X: 60, Y: 60, Width: 300, Height: 200},
		color:  "#3a7bd5",
		text:   "base card",
		style:  map[string]string{},
	})

	root.add(&demoNode{
		layout: paint.Layout{X: 180, Y: 140, Width: 300, Height: 200},
		color:  "#d53a6f",
		text:   "opacity 0.7",
		style:  map[string]string{"opacity": "0.7"},
	})

	root.add(&demoNode{
		layout: paint.Layout{X: 320, Y: 220, Width: 300, Height: 200},
		color:  "#3ad58a",
		text:   "rotated",
		style: map[string]string{
			"transform":   "rotate(8deg)",
			"will-change": "transform",
		},
	})

	behind := root.add(&demoNode{
		layout: paint.Layout{X: 420, Y: 80, Width: 260, Height: 160},
		color:  "#d5b63a",
		text:   "z-index -1",
		style: map[string]string{
			"position": "relative",
			"z-index":  "-1",
		},
	})
	behind.add(&demoNode{
		layout: paint.Layout{X: 440, Y: 110, Width: 120, Height: 60},
		color:  "#8a6d1f",
		style:  map[string]string{},
	})

	root.add(&demoNode{
		layout: paint.Layout{X: 120, Y: 360, Width: 360, Height: 160},
		color:  "#7a3ad5",
		text:   "multiply blend",
		style:  map[string]string{"mix-blend-mode": "multiply"},
	})

	return root
}

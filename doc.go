// Package paint implements a paint-to-pixels pipeline: it turns a styled
// render tree into composited pixels through stacking-context resolution,
// paint-layer formation, display-list recording, tile-based rasterization,
// and GPU texture compositing with frame pacing.
//
// # Overview
//
// The pipeline consumes a tree of render objects (produced by an external
// layout engine) and drives it to the screen:
//
//	render tree
//	  -> stacking.Resolve            (CSS stacking-context tree)
//	  -> render.Coordinator          (builds the paint-layer tree)
//	  -> layer.Layer.Paint           (records display-list commands)
//	  -> tile.Grid                   (subdivides large layers)
//	  -> compositor.Manager          (rasterizes and uploads GPU textures)
//	  -> compositor.Thread           (composites every frame, gated by VSync)
//
// # Quick Start
//
//	coord := render.NewCoordinator(raster.Factory{})
//	result, err := coord.Paint(root, 800, 600, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	img := result.Surface.RGBA()
//
// # Collaborators
//
// The pipeline does not own DOM construction, CSS cascade, box layout, or
// script execution. Styles arrive through the ComputedStyle capability and
// geometry through Layout. Drawing is issued against the Canvas interface;
// pixel and GPU backends live in the raster and gpu packages.
//
// # Architecture
//
// The library is organized into:
//   - Root: geometry, style capabilities, the Canvas drawing sink
//   - displaylist: recorded, replayable paint commands
//   - stacking, layer: CSS paint order and compositable layer tree
//   - render: the paint-to-pixels driver
//   - tile, compositor, gpu: rasterization, texture upload, frame loop
//
// # Coordinate System
//
// Uses standard computer graphics coordinates: origin (0,0) at top-left,
// X increases right, Y increases down, angles in radians.
package paint

// Version information
const (
	// Version is the current version of the library
	Version = "0.4.0"
)

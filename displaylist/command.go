// Package displaylist provides an ordered, replayable log of paint commands.
//
// Render objects record their drawing into a List instead of rasterizing
// immediately; the list can then be replayed against any drawing sink
// (a software rasterizer, a tile being rasterized, a vector exporter),
// spatially sub-selected for tiling, and serialized to move across an
// execution boundary such as a compositor thread.
//
// Commands are typed structs rather than a packed binary stream so that
// lists stay inspectable and debuggable. Each command is immutable once
// recorded.
package displaylist

import (
	"image"

	"github.com/gogpu/paint"
)

// CommandType identifies the type of a command.
// Each command type corresponds to a specific drawing operation.
type CommandType uint8

const (
	// State commands
	CmdSave      CommandType = iota // Save current state
	CmdRestore                      // Restore previous state
	CmdTranslate                    // Translate the origin
	CmdScale                        // Scale subsequent drawing
	CmdRotate                       // Rotate subsequent drawing
	CmdClipRect                     // Intersect clip with a rectangle

	// Drawing commands
	CmdFillRect   // Fill a rectangle
	CmdStrokeRect // Stroke a rectangle
	CmdFillText   // Fill text at a baseline position
	CmdStrokeText // Stroke text at a baseline position
	CmdDrawImage  // Draw an image region

	// Style commands
	CmdSetFillStyle   // Set fill color
	CmdSetStrokeStyle // Set stroke color
	CmdSetLineWidth   // Set stroke line width
	CmdSetFont        // Set font shorthand
	CmdSetGlobalAlpha // Set global opacity multiplier
	CmdSetShadow      // Configure drop shadow
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdSave:           "Save",
	CmdRestore:        "Restore",
	CmdTranslate:      "Translate",
	CmdScale:          "Scale",
	CmdRotate:         "Rotate",
	CmdClipRect:       "ClipRect",
	CmdFillRect:       "FillRect",
	CmdStrokeRect:     "StrokeRect",
	CmdFillText:       "FillText",
	CmdStrokeText:     "StrokeText",
	CmdDrawImage:      "DrawImage",
	CmdSetFillStyle:   "SetFillStyle",
	CmdSetStrokeStyle: "SetStrokeStyle",
	CmdSetLineWidth:   "SetLineWidth",
	CmdSetFont:        "SetFont",
	CmdSetGlobalAlpha: "SetGlobalAlpha",
	CmdSetShadow:      "SetShadow",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// geometryCommand is implemented by commands that carry a rectangle and
// therefore participate in bounding-box accumulation and spatial clipping.
type geometryCommand interface {
	Command
	geometry() paint.Rect
}

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// SaveCommand saves the current graphics state.
type SaveCommand struct{}

// Type implements Command.
func (SaveCommand) Type() CommandType { return CmdSave }

// RestoreCommand restores the previously saved graphics state.
type RestoreCommand struct{}

// Type implements Command.
func (RestoreCommand) Type() CommandType { return CmdRestore }

// TranslateCommand moves the origin by (DX, DY).
type TranslateCommand struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Type implements Command.
func (TranslateCommand) Type() CommandType { return CmdTranslate }

// ScaleCommand scales subsequent drawing by (SX, SY).
type ScaleCommand struct {
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
}

// Type implements Command.
func (ScaleCommand) Type() CommandType { return CmdScale }

// RotateCommand rotates subsequent drawing by Radians.
type RotateCommand struct {
	Radians float64 `json:"radians"`
}

// Type implements Command.
func (RotateCommand) Type() CommandType { return CmdRotate }

// ClipRectCommand intersects the clip region with Rect.
type ClipRectCommand struct {
	Rect paint.Rect `json:"rect"`
}

// Type implements Command.
func (ClipRectCommand) Type() CommandType { return CmdClipRect }

func (c ClipRectCommand) geometry() paint.Rect { return c.Rect }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// FillRectCommand fills Rect with the current fill style.
type FillRectCommand struct {
	Rect paint.Rect `json:"rect"`
}

// Type implements Command.
func (FillRectCommand) Type() CommandType { return CmdFillRect }

func (c FillRectCommand) geometry() paint.Rect { return c.Rect }

// StrokeRectCommand outlines Rect with the current stroke style.
type StrokeRectCommand struct {
	Rect paint.Rect `json:"rect"`
}

// Type implements Command.
func (StrokeRectCommand) Type() CommandType { return CmdStrokeRect }

func (c StrokeRectCommand) geometry() paint.Rect { return c.Rect }

// FillTextCommand draws filled text with the baseline origin at (X, Y).
type FillTextCommand struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Type implements Command.
func (FillTextCommand) Type() CommandType { return CmdFillText }

// StrokeTextCommand draws outlined text with the baseline origin at (X, Y).
type StrokeTextCommand struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Type implements Command.
func (StrokeTextCommand) Type() CommandType { return CmdStrokeText }

// DrawImageCommand draws the Src region of Image into the Dst rectangle.
type DrawImageCommand struct {
	// Image is the source image. When a command has been deserialized,
	// this is an *image.RGBA reconstructed from the encoded pixels.
	Image image.Image `json:"-"`

	// Src is the source rectangle in image coordinates.
	// A zero Src means the entire image.
	Src paint.Rect `json:"src"`

	// Dst is the destination rectangle in canvas coordinates.
	Dst paint.Rect `json:"dst"`
}

// Type implements Command.
func (DrawImageCommand) Type() CommandType { return CmdDrawImage }

func (c DrawImageCommand) geometry() paint.Rect { return c.Dst }

// --------------------------------------------------------------------------
// Style Commands
// --------------------------------------------------------------------------

// SetFillStyleCommand sets the fill style from a CSS color string.
type SetFillStyleCommand struct {
	Style string `json:"style"`
}

// Type implements Command.
func (SetFillStyleCommand) Type() CommandType { return CmdSetFillStyle }

// SetStrokeStyleCommand sets the stroke style from a CSS color string.
type SetStrokeStyleCommand struct {
	Style string `json:"style"`
}

// Type implements Command.
func (SetStrokeStyleCommand) Type() CommandType { return CmdSetStrokeStyle }

// SetLineWidthCommand sets the stroke line width in pixels.
type SetLineWidthCommand struct {
	Width float64 `json:"width"`
}

// Type implements Command.
func (SetLineWidthCommand) Type() CommandType { return CmdSetLineWidth }

// SetFontCommand sets the font from a CSS shorthand ("16px sans-serif").
type SetFontCommand struct {
	Font string `json:"font"`
}

// Type implements Command.
func (SetFontCommand) Type() CommandType { return CmdSetFont }

// SetGlobalAlphaCommand sets the global opacity multiplier in [0, 1].
type SetGlobalAlphaCommand struct {
	Alpha float64 `json:"alpha"`
}

// Type implements Command.
func (SetGlobalAlphaCommand) Type() CommandType { return CmdSetGlobalAlpha }

// SetShadowCommand configures the drop shadow for subsequent fills.
type SetShadowCommand struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

// Type implements Command.
func (SetShadowCommand) Type() CommandType { return CmdSetShadow }

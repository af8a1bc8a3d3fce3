package displaylist

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/gogpu/paint"
)

// List is an ordered, replayable sequence of paint commands with an
// incrementally maintained bounding box.
//
// List implements paint.Canvas, so render objects draw into it exactly as
// they would draw into a rasterizing canvas; the difference is that a List
// records. A List is created per paint pass: its owning layer clears and
// re-populates it whenever the layer repaints.
//
// The List is not safe for concurrent use.
type List struct {
	commands []Command

	// bounds is the minimal axis-aligned rectangle containing every
	// geometry-bearing command. hasBounds is false until the first
	// geometry command arrives.
	bounds    paint.Rect
	hasBounds bool
}

// New creates an empty display list.
func New() *List {
	return &List{commands: make([]Command, 0, 64)}
}

// Add appends a command and widens the bounding box if the command
// carries geometry. Style and transform commands do not affect the box.
func (l *List) Add(cmd Command) {
	l.commands = append(l.commands, cmd)
	if g, ok := cmd.(geometryCommand); ok {
		r := g.geometry()
		if l.hasBounds {
			l.bounds = l.bounds.Union(r)
		} else {
			l.bounds = r
			l.hasBounds = true
		}
	}
}

// Commands returns the recorded commands. The slice is shared; callers
// must not mutate it.
func (l *List) Commands() []Command {
	return l.commands
}

// Len returns the number of recorded commands.
func (l *List) Len() int {
	return len(l.commands)
}

// BoundingBox returns the minimal rectangle covering every geometry
// command recorded so far. ok is false if no geometry command exists.
func (l *List) BoundingBox() (box paint.Rect, ok bool) {
	return l.bounds, l.hasBounds
}

// Reset discards all commands and the bounding box, keeping capacity.
func (l *List) Reset() {
	l.commands = l.commands[:0]
	l.bounds = paint.Rect{}
	l.hasBounds = false
}

// Replay issues every recorded command against sink in recorded order.
func (l *List) Replay(sink paint.Canvas) {
	for _, cmd := range l.commands {
		replayCommand(cmd, sink)
	}
}

// replayCommand dispatches one command to the sink.
func replayCommand(cmd Command, sink paint.Canvas) {
	switch c := cmd.(type) {
	case SaveCommand:
		sink.Save()
	case RestoreCommand:
		sink.Restore()
	case TranslateCommand:
		sink.Translate(c.DX, c.DY)
	case ScaleCommand:
		sink.Scale(c.SX, c.SY)
	case RotateCommand:
		sink.Rotate(c.Radians)
	case ClipRectCommand:
		sink.ClipRect(c.Rect)
	case FillRectCommand:
		sink.FillRect(c.Rect)
	case StrokeRectCommand:
		sink.StrokeRect(c.Rect)
	case FillTextCommand:
		sink.FillText(c.Text, c.X, c.Y)
	case StrokeTextCommand:
		sink.StrokeText(c.Text, c.X, c.Y)
	case DrawImageCommand:
		sink.DrawImage(c.Image, c.Src, c.Dst)
	case SetFillStyleCommand:
		sink.SetFillStyle(c.Style)
	case SetStrokeStyleCommand:
		sink.SetStrokeStyle(c.Style)
	case SetLineWidthCommand:
		sink.SetLineWidth(c.Width)
	case SetFontCommand:
		sink.SetFont(c.Font)
	case SetGlobalAlphaCommand:
		sink.SetGlobalAlpha(c.Alpha)
	case SetShadowCommand:
		sink.SetShadow(c.OffsetX, c.OffsetY, c.Blur, c.Color)
	}
}

// Clip returns a new list containing only the commands whose geometry
// intersects region. Commands without geometry (state and style setters)
// are conservatively always retained so replaying the clipped list
// reproduces the correct graphics state.
func (l *List) Clip(region paint.Rect) *List {
	clipped := New()
	for _, cmd := range l.commands {
		if g, ok := cmd.(geometryCommand); ok && !g.geometry().Intersects(region) {
			continue
		}
		clipped.Add(cmd)
	}
	return clipped
}

// Merge appends another list's commands, preserving their order.
// The other list is not modified.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	for _, cmd := range other.commands {
		l.Add(cmd)
	}
}

// --------------------------------------------------------------------------
// paint.Canvas implementation (recording)
// --------------------------------------------------------------------------

// Save records a state save.
func (l *List) Save() { l.Add(SaveCommand{}) }

// Restore records a state restore.
func (l *List) Restore() { l.Add(RestoreCommand{}) }

// Translate records an origin translation.
func (l *List) Translate(dx, dy float64) { l.Add(TranslateCommand{DX: dx, DY: dy}) }

// Scale records a scale.
func (l *List) Scale(sx, sy float64) { l.Add(ScaleCommand{SX: sx, SY: sy}) }

// Rotate records a rotation.
func (l *List) Rotate(radians float64) { l.Add(RotateCommand{Radians: radians}) }

// ClipRect records a rectangular clip.
func (l *List) ClipRect(r paint.Rect) { l.Add(ClipRectCommand{Rect: r}) }

// FillRect records a filled rectangle.
func (l *List) FillRect(r paint.Rect) { l.Add(FillRectCommand{Rect: r}) }

// StrokeRect records a stroked rectangle.
func (l *List) StrokeRect(r paint.Rect) { l.Add(StrokeRectCommand{Rect: r}) }

// FillText records filled text.
func (l *List) FillText(text string, x, y float64) {
	l.Add(FillTextCommand{Text: text, X: x, Y: y})
}

// StrokeText records outlined text.
func (l *List) StrokeText(text string, x, y float64) {
	l.Add(StrokeTextCommand{Text: text, X: x, Y: y})
}

// DrawImage records an image draw.
func (l *List) DrawImage(img image.Image, src, dst paint.Rect) {
	l.Add(DrawImageCommand{Image: img, Src: src, Dst: dst})
}

// SetFillStyle records a fill style change.
func (l *List) SetFillStyle(style string) { l.Add(SetFillStyleCommand{Style: style}) }

// SetStrokeStyle records a stroke style change.
func (l *List) SetStrokeStyle(style string) { l.Add(SetStrokeStyleCommand{Style: style}) }

// SetLineWidth records a line width change.
func (l *List) SetLineWidth(width float64) { l.Add(SetLineWidthCommand{Width: width}) }

// SetFont records a font change.
func (l *List) SetFont(font string) { l.Add(SetFontCommand{Font: font}) }

// SetGlobalAlpha records a global alpha change.
func (l *List) SetGlobalAlpha(alpha float64) { l.Add(SetGlobalAlphaCommand{Alpha: alpha}) }

// SetShadow records a shadow configuration change.
func (l *List) SetShadow(offsetX, offsetY, blur float64, color string) {
	l.Add(SetShadowCommand{OffsetX: offsetX, OffsetY: offsetY, Blur: blur, Color: color})
}

// MeasureText measures with the same face the rasterizer draws with, so
// geometry recorded against the measurement matches the replayed output.
// Nothing is recorded.
func (l *List) MeasureText(text string) float64 {
	return float64(font.MeasureString(basicfont.Face7x13, text)) / 64
}

// Ensure List implements the drawing sink it replays into.
var _ paint.Canvas = (*List)(nil)

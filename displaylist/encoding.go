package displaylist

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/paint"
)

// The wire format is a UTF-8 JSON array of tagged command objects. It
// exists to hand a display list to another execution context (the
// compositor thread), not as a long-term storage format; there is no
// versioning beyond the command-type tags.

// encodedCommand is the envelope for one serialized command.
type encodedCommand struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// encodedImage carries DrawImage pixels as base64 raw RGBA.
type encodedImage struct {
	Src    paint.Rect `json:"src"`
	Dst    paint.Rect `json:"dst"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Pixels []byte     `json:"pixels,omitempty"`
}

// Serialize encodes the command sequence as a JSON array.
func (l *List) Serialize() ([]byte, error) {
	encoded := make([]encodedCommand, 0, len(l.commands))
	for _, cmd := range l.commands {
		e, err := encodeCommand(cmd)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, e)
	}
	return json.Marshal(encoded)
}

// Deserialize decodes a serialized command sequence into a new List.
// The decoded list has the same command count, types, and order as the
// list that produced the bytes.
func Deserialize(data []byte) (*List, error) {
	var encoded []encodedCommand
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, fmt.Errorf("displaylist: decode: %w", err)
	}

	l := New()
	for i, e := range encoded {
		cmd, err := decodeCommand(e)
		if err != nil {
			return nil, fmt.Errorf("displaylist: decode command %d: %w", i, err)
		}
		l.Add(cmd)
	}
	return l, nil
}

func encodeCommand(cmd Command) (encodedCommand, error) {
	e := encodedCommand{Type: cmd.Type().String()}

	var payload any
	switch c := cmd.(type) {
	case SaveCommand, RestoreCommand:
		return e, nil
	case DrawImageCommand:
		payload = encodeImage(c)
	default:
		payload = c
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return encodedCommand{}, fmt.Errorf("displaylist: encode %s: %w", e.Type, err)
	}
	e.Data = data
	return e, nil
}

func decodeCommand(e encodedCommand) (Command, error) {
	switch e.Type {
	case "Save":
		return SaveCommand{}, nil
	case "Restore":
		return RestoreCommand{}, nil
	case "Translate":
		return decodePayload[TranslateCommand](e.Data)
	case "Scale":
		return decodePayload[ScaleCommand](e.Data)
	case "Rotate":
		return decodePayload[RotateCommand](e.Data)
	case "ClipRect":
		return decodePayload[ClipRectCommand](e.Data)
	case "FillRect":
		return decodePayload[FillRectCommand](e.Data)
	case "StrokeRect":
		return decodePayload[StrokeRectCommand](e.Data)
	case "FillText":
		return decodePayload[FillTextCommand](e.Data)
	case "StrokeText":
		return decodePayload[StrokeTextCommand](e.Data)
	case "DrawImage":
		var enc encodedImage
		if err := json.Unmarshal(e.Data, &enc); err != nil {
			return nil, err
		}
		return decodeImage(enc), nil
	case "SetFillStyle":
		return decodePayload[SetFillStyleCommand](e.Data)
	case "SetStrokeStyle":
		return decodePayload[SetStrokeStyleCommand](e.Data)
	case "SetLineWidth":
		return decodePayload[SetLineWidthCommand](e.Data)
	case "SetFont":
		return decodePayload[SetFontCommand](e.Data)
	case "SetGlobalAlpha":
		return decodePayload[SetGlobalAlphaCommand](e.Data)
	case "SetShadow":
		return decodePayload[SetShadowCommand](e.Data)
	default:
		return nil, fmt.Errorf("unknown command type %q", e.Type)
	}
}

func decodePayload[T Command](data json.RawMessage) (Command, error) {
	var cmd T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

// encodeImage flattens the command's image to raw RGBA bytes.
// A nil image encodes with zero dimensions and no pixels.
func encodeImage(c DrawImageCommand) encodedImage {
	enc := encodedImage{Src: c.Src, Dst: c.Dst}
	if c.Image == nil {
		return enc
	}

	b := c.Image.Bounds()
	enc.Width = b.Dx()
	enc.Height = b.Dy()

	rgba, ok := c.Image.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 {
		converted := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(converted, converted.Bounds(), c.Image, b.Min, draw.Src)
		rgba = converted
	}
	enc.Pixels = rgba.Pix
	return enc
}

// decodeImage reconstructs a DrawImageCommand from encoded pixels.
func decodeImage(enc encodedImage) DrawImageCommand {
	cmd := DrawImageCommand{Src: enc.Src, Dst: enc.Dst}
	if enc.Width > 0 && enc.Height > 0 && len(enc.Pixels) >= enc.Width*enc.Height*4 {
		img := image.NewRGBA(image.Rect(0, 0, enc.Width, enc.Height))
		copy(img.Pix, enc.Pixels)
		cmd.Image = img
	}
	return cmd
}

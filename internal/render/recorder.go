package render

import (
	"encoding/json"

	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
)

// DrawCommand is a single drawing operation for a remote Canvas2D client.
// Every command carries its absolute transform, so the client only needs
// setTransform and never tracks a stack of its own.
type DrawCommand struct {
	Op          string    `json:"op"`                    // "clear", "rect", "strokeRect", "circle", "path"
	Transform   []float64 `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Rect        []float64 `json:"rect,omitempty"`        // [x, y, w, h] or [x, y, r] for circles
	Path        Path      `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string    `json:"fill,omitempty"`        // Fill color
	Stroke      string    `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64   `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64 `json:"dash,omitempty"`        // Line dash pattern
	Opacity     float64   `json:"opacity,omitempty"`     // Global alpha
}

// Recorder is a Surface that captures a frame as DrawCommands instead of
// painting pixels.
type Recorder struct {
	width, height int
	matrix        geometry.Matrix2D
	stack         []geometry.Matrix2D
	commands      []DrawCommand
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height, matrix: geometry.Identity(), commands: []DrawCommand{}}
}

func (r *Recorder) Size() (int, int) { return r.width, r.height }

func (r *Recorder) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrSurfaceSize
	}
	r.width, r.height = width, height
	return nil
}

func (r *Recorder) Reset() {
	r.matrix = geometry.Identity()
	r.stack = r.stack[:0]
	r.commands = []DrawCommand{{Op: "clear"}}
}

func (r *Recorder) FillRect(x, y, w, h float64, color string) {
	r.emit(DrawCommand{Op: "rect", Rect: []float64{x, y, w, h}, Fill: color})
}

func (r *Recorder) StrokeRect(x, y, w, h float64, color string, lineWidth float64) {
	r.emit(DrawCommand{Op: "strokeRect", Rect: []float64{x, y, w, h}, Stroke: color, StrokeWidth: lineWidth})
}

func (r *Recorder) FillCircle(x, y, radius float64, color string) {
	r.emit(DrawCommand{Op: "circle", Rect: []float64{x, y, radius}, Fill: color})
}

func (r *Recorder) Save() {
	r.stack = append(r.stack, r.matrix)
}

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.matrix = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recorder) Translate(x, y float64) {
	r.matrix = r.matrix.Multiply(geometry.Translate(x, y))
}

func (r *Recorder) Rotate(radians float64) {
	r.matrix = r.matrix.Multiply(geometry.Rotate(radians))
}

func (r *Recorder) Scale(sx, sy float64) {
	r.matrix = r.matrix.Multiply(geometry.Scale(sx, sy))
}

func (r *Recorder) Draw(d Drawable) {
	if len(d.Path) == 0 {
		return
	}
	r.emit(DrawCommand{
		Op:          "path",
		Path:        d.Path,
		Fill:        d.Fill,
		Stroke:      d.Stroke,
		StrokeWidth: d.StrokeWidth,
		Dash:        d.Dash,
		Opacity:     d.Opacity,
	})
}

func (r *Recorder) emit(cmd DrawCommand) {
	cmd.Transform = r.matrix.ToSlice()
	r.commands = append(r.commands, cmd)
}

// Commands returns the commands recorded since the last Reset.
func (r *Recorder) Commands() []DrawCommand {
	return r.commands
}

// JSON serializes the recorded frame.
func (r *Recorder) JSON() (string, error) {
	data, err := json.Marshal(r.commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

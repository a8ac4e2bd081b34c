package document

type ElementType string

const (
	TypeRectangle ElementType = "rectangle"
	TypeTriangle  ElementType = "triangle"
	TypeEllipse   ElementType = "ellipse"
	TypeLine      ElementType = "line"
	TypeText      ElementType = "text"
)

type FillStyle string

const (
	FillEmpty      FillStyle = "empty"
	FillHachure    FillStyle = "hachure"
	FillCrossHatch FillStyle = "cross-hatch"
	FillSolid      FillStyle = "solid"
)

type StrokeType string

const (
	StrokeSolid  StrokeType = "solid"
	StrokeDashed StrokeType = "dashed"
	StrokeDotted StrokeType = "dotted"
	StrokeNone   StrokeType = "none"
)

type Rounding string

const (
	RoundingProportional Rounding = "proportional"
	RoundingFixed        Rounding = "fixed"
	RoundingSharp        Rounding = "sharp"
)

type Arrowhead string

const (
	ArrowheadNone     Arrowhead = "none"
	ArrowheadTriangle Arrowhead = "triangle"
	ArrowheadArrow    Arrowhead = "arrow"
)

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignRight  TextAlign = "right"
	AlignCenter TextAlign = "center"
)

type FontFamily string

const (
	FontRegular     FontFamily = "regular"
	FontMonospace   FontFamily = "monospace"
	FontTypographic FontFamily = "typographic"
)

// Stroke widths.
const (
	StrokeThin   = 1.0
	StrokeMedium = 2.0
	StrokeThick  = 4.0
)

// Roughness levels.
const (
	RoughnessNone = 0.0
	RoughnessLow  = 1.0
	RoughnessHigh = 2.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a single drawable record on a board. Records held by a scene
// are never edited in place: a mutation clones, patches and swaps.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"` // radians

	StrokeColor     string     `json:"strokeColor"`
	BackgroundColor string     `json:"backgroundColor"`
	FillStyle       FillStyle  `json:"fillStyle"`
	StrokeWidth     float64    `json:"strokeWidth"`
	StrokeType      StrokeType `json:"strokeType"`
	Roughness       float64    `json:"roughness"`
	Rounding        Rounding   `json:"rounding"`
	Opacity         float64    `json:"opacity"` // 0-100

	Seed         int64 `json:"seed"`
	Version      int   `json:"version"`
	VersionNonce int64 `json:"versionNonce"`
	Updated      int64 `json:"updated"` // unix ms

	// triangle
	Shift float64 `json:"shift,omitempty"`

	// line
	Points    []Point   `json:"points,omitempty"`
	StartHead Arrowhead `json:"startHead,omitempty"`
	EndHead   Arrowhead `json:"endHead,omitempty"`

	// text
	Text       string     `json:"text,omitempty"`
	TextAlign  TextAlign  `json:"textAlign,omitempty"`
	FontFamily FontFamily `json:"fontFamily,omitempty"`
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	if e.Points != nil {
		c.Points = make([]Point, len(e.Points))
		copy(c.Points, e.Points)
	}
	return &c
}

// Center returns the midpoint of the element's unrotated box.
func (e *Element) Center() Point {
	return Point{X: e.X + e.Width/2, Y: e.Y + e.Height/2}
}

// Box returns the element's placement as Bounds.
func (e *Element) Box() Bounds {
	return Bounds{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height, Rotation: e.Rotation}
}

// CloneElements deep-copies a list of elements, preserving order.
func CloneElements(elements []*Element) []*Element {
	if elements == nil {
		return nil
	}
	out := make([]*Element, len(elements))
	for i, el := range elements {
		out[i] = el.Clone()
	}
	return out
}

// Bounds is an axis-aligned box with an optional rotation about its center.
type Bounds struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Snapshot describes one saved revision of a board.
type Snapshot struct {
	ID        string `json:"id"`
	BoardID   string `json:"boardId"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
}

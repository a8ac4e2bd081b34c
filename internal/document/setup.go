package document

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/nineyards/whiteboard/backend-go/internal/typeid"
)

// MinDimension is the smallest width or height a new element is given.
const MinDimension = 3.0

const DefaultTriangleShift = 0.5

// DefaultOptions are the properties every new element starts from.
func DefaultOptions() Options {
	return Options{
		X:               Ptr(0.0),
		Y:               Ptr(0.0),
		Width:           Ptr(MinDimension),
		Height:          Ptr(MinDimension),
		Rotation:        Ptr(0.0),
		StrokeColor:     Ptr("#000000"),
		BackgroundColor: Ptr("#ffddaa"),
		FillStyle:       Ptr(FillCrossHatch),
		StrokeWidth:     Ptr(StrokeMedium),
		StrokeType:      Ptr(StrokeSolid),
		Roughness:       Ptr(RoughnessLow),
		Rounding:        Ptr(RoundingFixed),
		Opacity:         Ptr(100.0),
	}
}

// RandomSeed returns a seed for the shape generator.
func RandomSeed() int64 {
	return rand.Int64N(math.MaxInt32)
}

// RandomNonce returns a fresh version nonce.
func RandomNonce() int64 {
	return rand.Int64N(math.MaxInt32)
}

// Setup builds a new element of type t from the defaults overlaid with
// opts. It returns nil when t is not a known element type.
func Setup(t ElementType, opts Options) *Element {
	switch t {
	case TypeRectangle, TypeEllipse, TypeTriangle, TypeLine, TypeText:
	default:
		return nil
	}

	el := &Element{
		ID:           typeid.NewElementID(),
		Type:         t,
		Seed:         RandomSeed(),
		Version:      1,
		VersionNonce: 1,
		Updated:      time.Now().UnixMilli(),
	}
	DefaultOptions().Merge(opts).Apply(el)

	el.Width = math.Max(el.Width, MinDimension)
	el.Height = math.Max(el.Height, MinDimension)

	switch t {
	case TypeTriangle:
		if opts.Shift == nil {
			el.Shift = DefaultTriangleShift
		}
	case TypeLine:
		if el.StartHead == "" {
			el.StartHead = ArrowheadNone
		}
		if el.EndHead == "" {
			el.EndHead = ArrowheadArrow
		}
		if len(el.Points) == 0 {
			el.Points = []Point{{X: 0, Y: 0}, {X: el.Width, Y: el.Height}}
		}
	case TypeText:
		if el.TextAlign == "" {
			el.TextAlign = AlignLeft
		}
		if el.FontFamily == "" {
			el.FontFamily = FontRegular
		}
	}

	return el
}

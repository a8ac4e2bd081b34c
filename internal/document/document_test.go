package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupAppliesDefaults(t *testing.T) {
	before := time.Now().UnixMilli()
	el := Setup(TypeRectangle, Options{X: Ptr(10.0), Y: Ptr(20.0)})
	require.NotNil(t, el)

	assert.True(t, strings.HasPrefix(el.ID, "el_"))
	assert.Equal(t, TypeRectangle, el.Type)
	assert.Equal(t, 10.0, el.X)
	assert.Equal(t, 20.0, el.Y)
	assert.Equal(t, MinDimension, el.Width)
	assert.Equal(t, MinDimension, el.Height)
	assert.Equal(t, 1, el.Version)
	assert.Equal(t, "#000000", el.StrokeColor)
	assert.Equal(t, "#ffddaa", el.BackgroundColor)
	assert.Equal(t, FillCrossHatch, el.FillStyle)
	assert.Equal(t, StrokeMedium, el.StrokeWidth)
	assert.Equal(t, RoundingFixed, el.Rounding)
	assert.Equal(t, 100.0, el.Opacity)
	assert.GreaterOrEqual(t, el.Updated, before)
}

func TestSetupTriangleShift(t *testing.T) {
	el := Setup(TypeTriangle, Options{})
	require.NotNil(t, el)
	assert.Equal(t, 0.5, el.Shift)

	el = Setup(TypeTriangle, Options{Shift: Ptr(0.2)})
	assert.Equal(t, 0.2, el.Shift)
}

func TestSetupEnforcesMinimumSize(t *testing.T) {
	el := Setup(TypeEllipse, Options{Width: Ptr(1.0), Height: Ptr(50.0)})
	require.NotNil(t, el)
	assert.Equal(t, MinDimension, el.Width)
	assert.Equal(t, 50.0, el.Height)
}

func TestSetupUnknownTypeReturnsNil(t *testing.T) {
	assert.Nil(t, Setup(ElementType("hexagon"), Options{}))
}

func TestSetupGivesFreshIDs(t *testing.T) {
	a := Setup(TypeRectangle, Options{})
	b := Setup(TypeRectangle, Options{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSetupLineAndTextDefaults(t *testing.T) {
	line := Setup(TypeLine, Options{Width: Ptr(10.0), Height: Ptr(4.0)})
	require.NotNil(t, line)
	assert.Equal(t, ArrowheadNone, line.StartHead)
	assert.Equal(t, ArrowheadArrow, line.EndHead)
	assert.Equal(t, []Point{{0, 0}, {10, 4}}, line.Points)

	text := Setup(TypeText, Options{Text: Ptr("hi")})
	require.NotNil(t, text)
	assert.Equal(t, "hi", text.Text)
	assert.Equal(t, AlignLeft, text.TextAlign)
	assert.Equal(t, FontRegular, text.FontFamily)
}

func TestOptionsMergeAndApply(t *testing.T) {
	base := Options{StrokeColor: Ptr("#111111"), Opacity: Ptr(50.0)}
	merged := base.Merge(Options{StrokeColor: Ptr("#222222")})

	assert.Equal(t, "#222222", *merged.StrokeColor)
	assert.Equal(t, 50.0, *merged.Opacity)
	assert.Equal(t, "#111111", *base.StrokeColor, "merge must not alias the receiver")

	el := &Element{ID: "keep", Version: 4, StrokeColor: "#000000"}
	merged.Apply(el)
	assert.Equal(t, "keep", el.ID)
	assert.Equal(t, 4, el.Version)
	assert.Equal(t, "#222222", el.StrokeColor)
	assert.Equal(t, 50.0, el.Opacity)
}

func TestOptionsStyleDropsGeometry(t *testing.T) {
	o := Options{X: Ptr(1.0), Width: Ptr(2.0), StrokeColor: Ptr("#ff0000"), Text: Ptr("x")}
	style := o.Style()
	assert.Nil(t, style.X)
	assert.Nil(t, style.Width)
	assert.Nil(t, style.Text)
	require.NotNil(t, style.StrokeColor)
	assert.Equal(t, "#ff0000", *style.StrokeColor)
}

func TestCloneIsDeep(t *testing.T) {
	el := Setup(TypeLine, Options{})
	c := el.Clone()
	c.Points[0].X = 99
	c.X = 42
	assert.Equal(t, 0.0, el.Points[0].X)
	assert.Equal(t, 0.0, el.X)
}

func TestViewportToSceneAndClamp(t *testing.T) {
	v := Viewport{ScrollX: 10, ScrollY: -5, Zoom: 2}
	assert.Equal(t, Point{X: 40, Y: 55}, v.ToScene(100, 100))

	assert.Equal(t, MaxZoom, Viewport{Zoom: 100}.Clamped().Zoom)
	assert.Equal(t, MinZoom, Viewport{Zoom: 0}.Clamped().Zoom)
}

func TestSampleBoard(t *testing.T) {
	b := NewSampleBoard("board_test")
	assert.Equal(t, "board_test", b.ID)
	require.Len(t, b.Elements, 4)

	c := b.Clone()
	c.Elements[0].X = -1
	assert.NotEqual(t, -1.0, b.Elements[0].X)
}

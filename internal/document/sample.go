package document

import "time"

func NewSampleBoard(boardID string) *Board {
	now := time.Now().UTC().Format(time.RFC3339)

	rect := Setup(TypeRectangle, Options{
		X: Ptr(40.0), Y: Ptr(40.0), Width: Ptr(120.0), Height: Ptr(80.0),
		BackgroundColor: Ptr("#e94560"),
	})
	ellipse := Setup(TypeEllipse, Options{
		X: Ptr(200.0), Y: Ptr(60.0), Width: Ptr(90.0), Height: Ptr(90.0),
		BackgroundColor: Ptr("#0f3460"),
		FillStyle:       Ptr(FillHachure),
	})
	triangle := Setup(TypeTriangle, Options{
		X: Ptr(80.0), Y: Ptr(180.0), Width: Ptr(100.0), Height: Ptr(90.0),
		Rotation:   Ptr(0.3),
		StrokeType: Ptr(StrokeDashed),
		Rounding:   Ptr(RoundingSharp),
	})
	line := Setup(TypeLine, Options{
		X: Ptr(220.0), Y: Ptr(200.0), Width: Ptr(120.0), Height: Ptr(40.0),
		Points: []Point{{X: 0, Y: 0}, {X: 60, Y: 40}, {X: 120, Y: 0}},
	})

	return &Board{
		ID:         boardID,
		Name:       "Untitled",
		Version:    1,
		Background: DefaultBackground,
		Viewport:   DefaultViewport(),
		Elements:   []*Element{rect, ellipse, triangle, line},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

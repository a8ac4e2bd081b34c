package engine

import (
	"time"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

// Tool is the active pointer tool.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolPan       Tool = "pan"
	ToolRectangle Tool = "rectangle"
	ToolEllipse   Tool = "ellipse"
	ToolTriangle  Tool = "triangle"
)

// Shape returns the element type a drawing tool creates.
func (t Tool) Shape() (document.ElementType, bool) {
	switch t {
	case ToolRectangle:
		return document.TypeRectangle, true
	case ToolEllipse:
		return document.TypeEllipse, true
	case ToolTriangle:
		return document.TypeTriangle, true
	}
	return "", false
}

func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolPan, ToolRectangle, ToolEllipse, ToolTriangle:
		return true
	}
	return false
}

// DefaultMinFrameInterval throttles unforced frame requests.
const DefaultMinFrameInterval = 15 * time.Millisecond

// Settings configure a new Scene or Engine.
type Settings struct {
	// Width and Height size the surface when it is resizable. Zero keeps
	// the surface's own size.
	Width  int
	Height int

	Elements   []*document.Element
	Viewport   document.Viewport
	Background string
	Tool       Tool

	MinFrameInterval time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func DefaultSettings() Settings {
	return Settings{
		Viewport:         document.DefaultViewport(),
		Background:       document.DefaultBackground,
		Tool:             ToolSelect,
		MinFrameInterval: DefaultMinFrameInterval,
		Clock:            time.Now,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.Viewport.Zoom == 0 {
		s.Viewport.Zoom = d.Viewport.Zoom
	}
	if s.Background == "" {
		s.Background = d.Background
	}
	if !s.Tool.Valid() {
		s.Tool = d.Tool
	}
	if s.MinFrameInterval < 0 {
		s.MinFrameInterval = 0
	}
	if s.Clock == nil {
		s.Clock = d.Clock
	}
	return s
}

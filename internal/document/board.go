package document

const DefaultBackground = "#ffffff"

// Board is the persisted state of one whiteboard.
type Board struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Version    int        `json:"version"`
	Background string     `json:"background"`
	Viewport   Viewport   `json:"viewport"`
	Elements   []*Element `json:"elements"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

// NewEmptyBoard creates an empty board for a new whiteboard.
func NewEmptyBoard(id, name string) *Board {
	return &Board{
		ID:         id,
		Name:       name,
		Version:    1,
		Background: DefaultBackground,
		Viewport:   DefaultViewport(),
		Elements:   []*Element{},
		CreatedAt:  "", // Will be set by caller
		UpdatedAt:  "",
	}
}

// Clone deep-copies the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	c := *b
	c.Elements = CloneElements(b.Elements)
	if c.Elements == nil {
		c.Elements = []*Element{}
	}
	return &c
}

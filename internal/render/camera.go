package render

// Camera translates between world cells and screen cells. Every world cell
// is two terminal columns wide so emoji and padded ASCII line up.
type Camera struct {
	OffsetX    int
	OffsetY    int
	ViewWidth  int // in terminal columns
	ViewHeight int // in terminal rows
}

// NewCamera creates a camera centered on (cx, cy).
func NewCamera(cx, cy, viewW, viewH int) *Camera {
	c := &Camera{ViewWidth: viewW, ViewHeight: viewH}
	c.Center(cx, cy)
	return c
}

// Center puts world cell (cx, cy) in the middle of the view.
func (c *Camera) Center(cx, cy int) {
	c.OffsetX = cx - c.ViewWidth/4
	c.OffsetY = cy - c.ViewHeight/2
}

// Fit centres a worldW x worldH map, pinning it to the top-left corner
// when it is larger than the view.
func (c *Camera) Fit(worldW, worldH int) {
	c.Center(worldW/2, worldH/2)
	if worldW*2 > c.ViewWidth {
		c.OffsetX = 0
	}
	if worldH > c.ViewHeight {
		c.OffsetY = 0
	}
}

// Resize changes the view size in terminal cells.
func (c *Camera) Resize(viewW, viewH int) {
	c.ViewWidth, c.ViewHeight = viewW, viewH
}

// WorldToScreen converts world (wx, wy) to screen (sx, sy).
// visible is false when the result falls outside the viewport.
func (c *Camera) WorldToScreen(wx, wy int) (sx, sy int, visible bool) {
	sx = (wx - c.OffsetX) * 2
	sy = wy - c.OffsetY
	visible = sx >= 0 && sx+1 < c.ViewWidth && sy >= 0 && sy < c.ViewHeight
	return
}

package normal

import "image"

// Selection reports whether a raster coordinate belongs to the active
// selection. Implementations must be safe for concurrent reads.
type Selection interface {
	Selected(x, y int) bool
}

// SelectionFunc adapts an ordinary function to the Selection interface.
type SelectionFunc func(x, y int) bool

// Selected calls f(x, y).
func (f SelectionFunc) Selected(x, y int) bool { return f(x, y) }

// All selects every coordinate.
var All Selection = SelectionFunc(func(int, int) bool { return true })

// Unselected is the boundary test: it reports true when (x, y) falls outside
// bounds, without consulting sel, and otherwise when sel does not select it.
func Unselected(sel Selection, bounds image.Rectangle, x, y int) bool {
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return true
	}
	return !sel.Selected(x, y)
}

// Offset views a canvas-space selection from a sub-raster whose origin sits at
// Origin on the canvas. Local coordinates are translated before the lookup.
type Offset struct {
	Selection Selection
	Origin    image.Point
}

// Selected reports whether local (x, y) is selected on the canvas.
func (o Offset) Selected(x, y int) bool {
	return o.Selection.Selected(x+o.Origin.X, y+o.Origin.Y)
}

// Package canvas models the host image: a fixed-size canvas holding a stack
// of offset layers and a selection. Filters read from it and hand back new
// layers; nothing here is modified until a layer is inserted.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Fepozopo/normalmap/pkg/normal"
)

// ErrNoLayer is returned when a document has no layer to operate on.
var ErrNoLayer = errors.New("no such layer")

// Document is a canvas of Width×Height pixels with an ordered layer stack.
// Layer 0 is the top of the stack.
type Document struct {
	Width, Height int

	layers    []*Layer
	active    int
	selection *normal.Mask
}

// NewDocument creates an empty document whose selection covers the whole canvas.
func NewDocument(width, height int) *Document {
	d := &Document{Width: width, Height: height}
	d.SelectAll()
	return d
}

// Bounds returns the canvas rectangle.
func (d *Document) Bounds() image.Rectangle { return image.Rect(0, 0, d.Width, d.Height) }

// Layers returns the layer stack, top first. The slice must not be modified.
func (d *Document) Layers() []*Layer { return d.layers }

// Layer returns the layer at index i.
func (d *Document) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(d.layers) {
		return nil, fmt.Errorf("layer %d of %d: %w", i, len(d.layers), ErrNoLayer)
	}
	return d.layers[i], nil
}

// Active returns the layer filters read from by default.
func (d *Document) Active() (*Layer, error) { return d.Layer(d.active) }

// SetActive selects the layer at index i as the active layer.
func (d *Document) SetActive(i int) error {
	if _, err := d.Layer(i); err != nil {
		return err
	}
	d.active = i
	return nil
}

// NewLayer allocates a transparent layer covering r in canvas coordinates.
// The layer is not part of the stack until Insert is called.
func (d *Document) NewLayer(name string, r image.Rectangle) *Layer {
	return NewLayer(name, r)
}

// Insert places l at index in the stack; 0 puts it on top. The active
// layer keeps pointing at the same layer.
func (d *Document) Insert(l *Layer, index int) error {
	if l == nil {
		return errors.New("insert nil layer")
	}
	if index < 0 || index > len(d.layers) {
		return fmt.Errorf("insert at %d of %d: %w", index, len(d.layers), ErrNoLayer)
	}
	d.layers = append(d.layers, nil)
	copy(d.layers[index+1:], d.layers[index:])
	d.layers[index] = l
	if len(d.layers) > 1 && index <= d.active {
		d.active++
	}
	return nil
}

// Append adds l to the bottom of the stack.
func (d *Document) Append(l *Layer) {
	_ = d.Insert(l, len(d.layers))
}

// Selection returns the canvas-space selection mask.
func (d *Document) Selection() *normal.Mask { return d.selection }

// SelectAll selects the whole canvas.
func (d *Document) SelectAll() {
	m := normal.NewMask(d.Bounds())
	m.Fill(255)
	d.selection = m
}

// SetSelection replaces the selection. A mask whose bounds differ from the
// canvas is rescaled onto it with nearest-neighbour sampling; its threshold
// is kept.
func (d *Document) SetSelection(m *normal.Mask) {
	if m.Bounds() == d.Bounds() {
		d.selection = m
		return
	}
	gray := image.NewGray(m.Bounds())
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.SetGray(x, y, color.Gray{Y: m.At(x, y)})
		}
	}
	scaled := image.NewGray(d.Bounds())
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), gray, b, draw.Src, nil)
	out := normal.MaskFromLuminance(scaled)
	out.SetThreshold(m.Threshold())
	d.selection = out
}

// SelectionFor returns the selection seen from l's local coordinates.
func (d *Document) SelectionFor(l *Layer) normal.Selection {
	return normal.Offset{Selection: d.selection, Origin: l.Offset}
}

// Flatten composites the visible layers, bottom first, onto a new
// canvas-sized raster. The stack is left untouched.
func (d *Document) Flatten() *image.NRGBA {
	out := image.NewNRGBA(d.Bounds())
	for i := len(d.layers) - 1; i >= 0; i-- {
		l := d.layers[i]
		if !l.Visible || l.Opacity <= 0 {
			continue
		}
		r := l.CanvasBounds()
		if l.Opacity >= 1 {
			draw.Draw(out, r, l.Image, image.Point{}, draw.Over)
			continue
		}
		mask := image.NewUniform(color.Alpha{A: uint8(l.Opacity*255 + 0.5)})
		draw.DrawMask(out, r, l.Image, image.Point{}, mask, image.Point{}, draw.Over)
	}
	return out
}

package canvas

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Layer is a raster positioned on the document canvas. Pixels are addressed
// in layer-local coordinates starting at (0, 0); Offset is where that origin
// lands on the canvas.
type Layer struct {
	Name    string
	Offset  image.Point
	Image   *image.NRGBA
	Visible bool
	// Opacity scales the layer's alpha when flattening, in [0,1].
	Opacity float64
}

// NewLayer allocates a transparent layer covering r in canvas coordinates.
func NewLayer(name string, r image.Rectangle) *Layer {
	r = r.Canon()
	return &Layer{
		Name:    name,
		Offset:  r.Min,
		Image:   image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy())),
		Visible: true,
		Opacity: 1,
	}
}

// LayerFromImage copies img into a new layer placed at offset.
func LayerFromImage(name string, img image.Image, offset image.Point) *Layer {
	b := img.Bounds()
	l := NewLayer(name, image.Rectangle{Min: offset, Max: offset.Add(b.Size())})
	draw.Draw(l.Image, l.Image.Bounds(), img, b.Min, draw.Src)
	return l
}

// Bounds returns the layer rectangle in local coordinates.
func (l *Layer) Bounds() image.Rectangle { return l.Image.Bounds() }

// CanvasBounds returns the layer rectangle in canvas coordinates.
func (l *Layer) CanvasBounds() image.Rectangle { return l.Image.Bounds().Add(l.Offset) }

// NRGBAAt returns the pixel at local (x, y).
func (l *Layer) NRGBAAt(x, y int) color.NRGBA { return l.Image.NRGBAAt(x, y) }

// SetNRGBA stores a pixel at local (x, y). Writes to distinct pixels may
// run concurrently.
func (l *Layer) SetNRGBA(x, y int, c color.NRGBA) { l.Image.SetNRGBA(x, y, c) }

// ToCanvas translates a local point to canvas coordinates.
func (l *Layer) ToCanvas(p image.Point) image.Point { return p.Add(l.Offset) }

// ToLocal translates a canvas point to local coordinates.
func (l *Layer) ToLocal(p image.Point) image.Point { return p.Sub(l.Offset) }

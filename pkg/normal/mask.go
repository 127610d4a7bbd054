package normal

import (
	"image"
	"image/color"
)

// DefaultThreshold is the coverage below which a mask pixel counts as unselected.
const DefaultThreshold = 128

// Mask is an 8-bit selection coverage grid. Values range from 0 (not
// selected) to 255 (fully selected); Selected compares against the threshold.
type Mask struct {
	rect      image.Rectangle
	threshold uint8
	data      []uint8
}

// NewMask creates an empty mask covering r. All values start at 0.
func NewMask(r image.Rectangle) *Mask {
	r = r.Canon()
	return &Mask{
		rect:      r,
		threshold: DefaultThreshold,
		data:      make([]uint8, r.Dx()*r.Dy()),
	}
}

// MaskFromAlpha builds a mask from the alpha channel of img.
func MaskFromAlpha(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			m.data[m.offset(x, y)] = uint8(a >> 8)
		}
	}
	return m
}

// MaskFromLuminance builds a mask from the gray level of img, the way a
// saved selection channel stores coverage. Transparent pixels read as 0.
func MaskFromLuminance(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			m.data[m.offset(x, y)] = g.Y
		}
	}
	return m
}

func (m *Mask) offset(x, y int) int {
	return (y-m.rect.Min.Y)*m.rect.Dx() + (x - m.rect.Min.X)
}

// Bounds returns the area covered by the mask.
func (m *Mask) Bounds() image.Rectangle { return m.rect }

// Threshold returns the coverage value at which a pixel becomes selected.
func (m *Mask) Threshold() uint8 { return m.threshold }

// SetThreshold changes the selection threshold. A threshold of 0 selects
// every in-bounds pixel.
func (m *Mask) SetThreshold(t uint8) { m.threshold = t }

// At returns the coverage at (x, y), or 0 outside the mask.
func (m *Mask) At(x, y int) uint8 {
	if !(image.Point{x, y}).In(m.rect) {
		return 0
	}
	return m.data[m.offset(x, y)]
}

// Set stores coverage at (x, y). Coordinates outside the mask are ignored.
func (m *Mask) Set(x, y int, v uint8) {
	if !(image.Point{x, y}).In(m.rect) {
		return
	}
	m.data[m.offset(x, y)] = v
}

// Fill sets every value in the mask.
func (m *Mask) Fill(v uint8) {
	for i := range m.data {
		m.data[i] = v
	}
}

// FillRect sets every value inside r, clipped to the mask.
func (m *Mask) FillRect(r image.Rectangle, v uint8) {
	r = r.Intersect(m.rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.data[m.offset(x, y)] = v
		}
	}
}

// Invert replaces every value with 255 - value.
func (m *Mask) Invert() {
	for i := range m.data {
		m.data[i] = 255 - m.data[i]
	}
}

// Clone returns an independent copy of m.
func (m *Mask) Clone() *Mask {
	c := &Mask{rect: m.rect, threshold: m.threshold, data: make([]uint8, len(m.data))}
	copy(c.data, m.data)
	return c
}

// Selected reports whether (x, y) lies inside the mask with coverage at or
// above the threshold.
func (m *Mask) Selected(x, y int) bool {
	if !(image.Point{x, y}).In(m.rect) {
		return false
	}
	return m.data[m.offset(x, y)] >= m.threshold
}

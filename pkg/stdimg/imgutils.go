package stdimg

import (
	"image"
)

// ToNRGBA converts any image.Image to *image.NRGBA (non-premultiplied RGBA).
// The result never aliases src.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	if n, ok := src.(*image.NRGBA); ok {
		return CloneNRGBA(n)
	}
	b := src.Bounds()
	out := image.NewNRGBA(b)
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, b_, a := src.At(x, y).RGBA()
			// r,g,b,a are 16-bit premultiplied; un-premultiply before narrowing
			if a != 0 && a != 0xffff {
				r = r * 0xffff / a
				g = g * 0xffff / a
				b_ = b_ * 0xffff / a
			}
			out.Pix[idx+0] = uint8(r >> 8)
			out.Pix[idx+1] = uint8(g >> 8)
			out.Pix[idx+2] = uint8(b_ >> 8)
			out.Pix[idx+3] = uint8(a >> 8)
			idx += 4
		}
	}
	return out
}

// CloneNRGBA returns a copy of the provided image.NRGBA
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := image.NewNRGBA(src.Rect)
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		i := src.PixOffset(src.Rect.Min.X, y)
		j := out.PixOffset(src.Rect.Min.X, y)
		copy(out.Pix[j:j+4*src.Rect.Dx()], src.Pix[i:i+4*src.Rect.Dx()])
	}
	return out
}

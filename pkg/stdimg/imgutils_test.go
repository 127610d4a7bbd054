package stdimg

import (
	"image"
	"image/color"
	"testing"
)

func TestToNRGBAUnpremultiplies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	// premultiplied half-transparent white
	src.SetRGBA(0, 0, color.RGBA{R: 128, G: 128, B: 128, A: 128})
	got := ToNRGBA(src).NRGBAAt(0, 0)
	if got.A != 128 || got.R < 254 {
		t.Fatalf("ToNRGBA = %v, want ~white at alpha 128", got)
	}
}

func TestToNRGBADoesNotAlias(t *testing.T) {
	src := makeSolidNRGBA(3, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	out := ToNRGBA(src)
	out.SetNRGBA(0, 0, color.NRGBA{})
	if src.NRGBAAt(0, 0) != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Fatalf("ToNRGBA aliased its input")
	}
	if ToNRGBA(nil) != nil {
		t.Fatalf("ToNRGBA(nil) should be nil")
	}
}

func TestCloneNRGBASubImage(t *testing.T) {
	src := makeSolidNRGBA(6, 6, color.NRGBA{A: 255})
	src.SetNRGBA(3, 4, color.NRGBA{R: 9, A: 255})
	sub := src.SubImage(image.Rect(2, 3, 5, 6)).(*image.NRGBA)
	out := CloneNRGBA(sub)
	if out.Bounds() != sub.Bounds() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), sub.Bounds())
	}
	if out.NRGBAAt(3, 4).R != 9 {
		t.Fatalf("clone lost pixel: %v", out.NRGBAAt(3, 4))
	}
	if len(out.Pix) != 3*3*4 {
		t.Fatalf("clone kept parent stride: %d bytes", len(out.Pix))
	}
}

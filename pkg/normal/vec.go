package normal

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Quantum is the width of one encoded step in normal space: adjacent byte
// values decode to components 2/255 apart.
const Quantum = 2.0 / 255.0

// Vec3 is a direction in normal space. +X points right, +Y points up and
// +Z points out of the image plane.
type Vec3 = r3.Vec

// Up is the normal of a flat, interior pixel.
var Up = Vec3{X: 0, Y: 0, Z: 1}

// Normalize returns v with unit length. The zero vector is returned unchanged.
func Normalize(v Vec3) Vec3 {
	if r3.Norm(v) == 0 {
		return v
	}
	return r3.Unit(v)
}

// accum is the per-pixel accumulator. Z is seeded to 1 and never nudged, so
// the length before normalization is at least 1. W tracks coverage and is
// carried through unchanged.
type accum struct {
	X, Y, Z, W float64
}

func seed() accum {
	return accum{X: 0, Y: 0, Z: 1, W: 1}
}

// nudge returns a copy of a with (dx, dy) added to the lateral components.
func (a accum) nudge(dx, dy float64) accum {
	a.X += dx
	a.Y += dy
	return a
}

func (a accum) normal() Vec3 {
	return Normalize(Vec3{X: a.X, Y: a.Y, Z: a.Z})
}

// encodeComponent maps c from [-1,1] onto [0,255] with round-half-away-from-zero.
// Values that fall outside the byte range saturate and clamped is reported.
// NaN has no direction and encodes as the neutral 128, also reported.
func encodeComponent(c float64) (b uint8, clamped bool) {
	if math.IsNaN(c) {
		return 128, true
	}
	v := math.Round(255 * (c*0.5 + 0.5))
	switch {
	case v < 0:
		return 0, true
	case v > 255:
		return 255, true
	}
	return uint8(v), false
}

// Encode packs v into RGB with the given alpha. Components outside [-1,1]
// saturate at 0 or 255 per channel; clamped reports whether any did.
func Encode(v Vec3, alpha uint8) (c color.NRGBA, clamped bool) {
	r, cr := encodeComponent(v.X)
	g, cg := encodeComponent(v.Y)
	b, cb := encodeComponent(v.Z)
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, cr || cg || cb
}

// Decode unpacks the RGB channels of c into a vector with components in [-1,1].
// Alpha is ignored.
func Decode(c color.NRGBA) Vec3 {
	return Vec3{
		X: 2*float64(c.R)/255 - 1,
		Y: 2*float64(c.G)/255 - 1,
		Z: 2*float64(c.B)/255 - 1,
	}
}

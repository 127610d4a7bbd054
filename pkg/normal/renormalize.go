package normal

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// DegeneratePolicy decides what the renormalizer writes for a pixel whose
// decoded vector has no direction.
type DegeneratePolicy int

const (
	// DegenerateUp writes the up vector scaled to the target length.
	DegenerateUp DegeneratePolicy = iota
	// DegeneratePassThrough copies the source pixel unchanged.
	DegeneratePassThrough
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateUp:
		return "up"
	case DegeneratePassThrough:
		return "passthrough"
	default:
		return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
	}
}

// ParseDegeneratePolicy accepts "up" and "passthrough".
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "":
		return DegenerateUp, nil
	case "passthrough", "pass-through", "pass":
		return DegeneratePassThrough, nil
	}
	return 0, fmt.Errorf("unknown degenerate policy %q: %w", s, ErrInvalidConfiguration)
}

// RenormalizeOptions configures the texture renormalizer.
type RenormalizeOptions struct {
	// Scalar is the length every output vector is rescaled to. Negative
	// values also flip the vector.
	Scalar     float64
	Degenerate DegeneratePolicy
	// Workers bounds the number of goroutines. Values <= 0 use GOMAXPROCS.
	Workers int
}

// DefaultRenormalizeOptions rescales to unit length.
func DefaultRenormalizeOptions() RenormalizeOptions {
	return RenormalizeOptions{Scalar: 1, Degenerate: DegenerateUp}
}

// Validate reports an error wrapping ErrInvalidConfiguration for a zero or
// non-finite scalar or an unknown policy.
func (o RenormalizeOptions) Validate() error {
	if err := validScalar(o.Scalar); err != nil {
		return err
	}
	if o.Degenerate != DegenerateUp && o.Degenerate != DegeneratePassThrough {
		return fmt.Errorf("unknown degenerate policy %v: %w", o.Degenerate, ErrInvalidConfiguration)
	}
	return nil
}

func validScalar(s float64) error {
	if s == 0 || !finite(s) {
		return fmt.Errorf("scalar must be nonzero and finite, got %v: %w", s, ErrInvalidConfiguration)
	}
	return nil
}

// RenormalizeVector rescales v to length scalar. Vectors shorter than one
// quantization step have no reliable direction and yield ErrDegenerateInput.
func RenormalizeVector(v Vec3, scalar float64) (Vec3, error) {
	if err := validScalar(scalar); err != nil {
		return Vec3{}, err
	}
	m := r3.Norm(v)
	if m < Quantum {
		return Vec3{}, fmt.Errorf("vector length %v: %w", m, ErrDegenerateInput)
	}
	return r3.Scale(scalar/m, v), nil
}

// Report summarizes one renormalization pass.
type Report struct {
	Pixels     int
	Degenerate int
	Clamped    int
}

// Err returns an error wrapping ErrDegenerateInput when any pixel was
// degenerate, and nil otherwise. Degenerate pixels are still written.
func (r Report) Err() error {
	if r.Degenerate == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d pixels decode to a zero-length vector: %w", r.Degenerate, r.Pixels, ErrDegenerateInput)
}

// Renormalizer rescales encoded vectors to a fixed length.
type Renormalizer struct {
	opts RenormalizeOptions
	up   color.NRGBA
	upCl bool
}

// NewRenormalizer validates opts and returns a Renormalizer using them.
func NewRenormalizer(opts RenormalizeOptions) (*Renormalizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Renormalizer{opts: opts}
	r.up, r.upCl = Encode(r3.Scale(opts.Scalar, Up), 0)
	return r, nil
}

// Options returns the options the renormalizer was built with.
func (r *Renormalizer) Options() RenormalizeOptions { return r.opts }

// Pixel renormalizes a single encoded pixel. Alpha is preserved.
func (r *Renormalizer) Pixel(c color.NRGBA) (out color.NRGBA, degenerate, clamped bool) {
	v, err := RenormalizeVector(Decode(c), r.opts.Scalar)
	if err != nil {
		if r.opts.Degenerate == DegeneratePassThrough {
			return c, true, false
		}
		out = r.up
		out.A = c.A
		return out, true, r.upCl
	}
	out, clamped = Encode(v, c.A)
	return out, false, clamped
}

// Apply renormalizes every pixel of src into the same coordinates of dst.
// dst must cover src's bounds.
func (r *Renormalizer) Apply(ctx context.Context, src Source, dst Surface) (Report, error) {
	b := src.Bounds()
	if !b.In(dst.Bounds()) {
		return Report{}, fmt.Errorf("destination %v does not cover source %v", dst.Bounds(), b)
	}
	var degenerate, clamped atomic.Int64
	err := forEachRow(ctx, b, r.opts.Workers, func(y int) {
		var nd, nc int64
		for x := b.Min.X; x < b.Max.X; x++ {
			out, d, c := r.Pixel(src.NRGBAAt(x, y))
			if d {
				nd++
			}
			if c {
				nc++
			}
			dst.SetNRGBA(x, y, out)
		}
		degenerate.Add(nd)
		clamped.Add(nc)
	})
	if err != nil {
		return Report{}, err
	}
	return Report{
		Pixels:     b.Dx() * b.Dy(),
		Degenerate: int(degenerate.Load()),
		Clamped:    int(clamped.Load()),
	}, nil
}

// nrgbaSource reads any image through the NRGBA color model.
type nrgbaSource struct {
	image.Image
}

func (s nrgbaSource) NRGBAAt(x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(s.At(x, y)).(color.NRGBA)
}

// Renormalize allocates a raster with src's bounds and fills it with the
// renormalized pixels of src.
func Renormalize(ctx context.Context, src image.Image, opts RenormalizeOptions) (*image.NRGBA, Report, error) {
	r, err := NewRenormalizer(opts)
	if err != nil {
		return nil, Report{}, err
	}
	var s Source
	if n, ok := src.(Source); ok {
		s = n
	} else {
		s = nrgbaSource{src}
	}
	out := image.NewNRGBA(src.Bounds())
	rep, err := r.Apply(ctx, s, out)
	if err != nil {
		return nil, Report{}, err
	}
	return out, rep, nil
}

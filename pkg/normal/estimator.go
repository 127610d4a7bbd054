package normal

import (
	"context"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Surface is a destination raster. SetNRGBA must be safe to call
// concurrently for distinct pixels; *image.NRGBA satisfies it.
type Surface interface {
	Bounds() image.Rectangle
	SetNRGBA(x, y int, c color.NRGBA)
}

// Source is a readable raster; *image.NRGBA satisfies it.
type Source interface {
	Bounds() image.Rectangle
	NRGBAAt(x, y int) color.NRGBA
}

// compass holds the eight unit probe directions in raster space (+y is down).
var compass = func() [8]r2.Vec {
	d := 1 / math.Sqrt2
	return [8]r2.Vec{
		{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1}, // E W N S
		{X: d, Y: -d}, {X: -d, Y: -d}, {X: d, Y: d}, {X: -d, Y: d}, // NE NW SE SW
	}
}()

// Estimator derives normals from the shape of a selection.
type Estimator struct {
	opts  Options
	steps int
}

// NewEstimator validates opts and returns an Estimator using them.
func NewEstimator(opts Options) (*Estimator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{opts: opts, steps: opts.Steps()}, nil
}

// Options returns the options the estimator was built with.
func (e *Estimator) Options() Options { return e.opts }

// weight returns the signed falloff weight of step i.
func (e *Estimator) weight(i int) float64 {
	w := e.opts.Falloff.Weight(e.opts.fraction(i))
	if e.opts.Invert {
		return -w
	}
	return w
}

func probe(x, y int, d r2.Vec, dist float64) (int, int) {
	return int(math.Round(float64(x) + d.X*dist)), int(math.Round(float64(y) + d.Y*dist))
}

// radial walks from (x, y) away from the configured center and nudges toward
// the first unselected probe it meets.
func (e *Estimator) radial(sel Selection, b image.Rectangle, x, y int) accum {
	a := seed()
	d := r2.Vec{X: float64(x) - e.opts.Center.X, Y: float64(y) - e.opts.Center.Y}
	if r2.Norm(d) == 0 {
		return a
	}
	d = r2.Unit(d)
	for i := 1; i <= e.steps; i++ {
		px, py := probe(x, y, d, float64(i)*e.opts.StepSize)
		if Unselected(sel, b, px, py) {
			w := e.weight(i)
			return a.nudge(d.X*w, -d.Y*w)
		}
	}
	return a
}

// omni probes all eight compass directions at every radius step. Each
// unselected probe pushes the normal away from itself.
func (e *Estimator) omni(sel Selection, b image.Rectangle, x, y int) accum {
	a := seed()
	for i := 1; i <= e.steps; i++ {
		dist := float64(i) * e.opts.StepSize
		w := e.weight(i)
		for _, d := range compass {
			px, py := probe(x, y, d, dist)
			if Unselected(sel, b, px, py) {
				a = a.nudge(-d.X*w, d.Y*w)
			}
		}
	}
	return a
}

func (e *Estimator) accumulate(sel Selection, b image.Rectangle, x, y int) accum {
	if e.opts.FromCenter {
		return e.radial(sel, b, x, y)
	}
	return e.omni(sel, b, x, y)
}

// Nudge returns the lateral offset accumulated for (x, y) before
// normalization, in normal space (+y up). Unselected pixels return (0, 0).
func (e *Estimator) Nudge(sel Selection, b image.Rectangle, x, y int) (dx, dy float64) {
	if Unselected(sel, b, x, y) {
		return 0, 0
	}
	a := e.accumulate(sel, b, x, y)
	return a.X, a.Y
}

// Normal returns the unit normal at (x, y) of raster b. Unselected pixels
// have no normal and return the zero vector.
func (e *Estimator) Normal(sel Selection, b image.Rectangle, x, y int) Vec3 {
	if Unselected(sel, b, x, y) {
		return Vec3{}
	}
	return e.accumulate(sel, b, x, y).normal()
}

// Pixel returns the encoded color for (x, y): the normal at full opacity for
// selected pixels and transparent black otherwise.
func (e *Estimator) Pixel(sel Selection, b image.Rectangle, x, y int) color.NRGBA {
	if Unselected(sel, b, x, y) {
		return color.NRGBA{}
	}
	c, _ := Encode(e.accumulate(sel, b, x, y).normal(), 255)
	return c
}

// Apply writes the normal map of sel into every pixel of dst. sel is
// queried in dst's coordinate space and must not be backed by dst.
func (e *Estimator) Apply(ctx context.Context, sel Selection, dst Surface) error {
	b := dst.Bounds()
	return forEachRow(ctx, b, e.opts.Workers, func(y int) {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x, y, e.Pixel(sel, b, x, y))
		}
	})
}

// Estimate allocates a raster covering r and fills it with the normal map of sel.
func Estimate(ctx context.Context, sel Selection, r image.Rectangle, opts Options) (*image.NRGBA, error) {
	e, err := NewEstimator(opts)
	if err != nil {
		return nil, err
	}
	out := image.NewNRGBA(r)
	if err := e.Apply(ctx, sel, out); err != nil {
		return nil, err
	}
	return out, nil
}

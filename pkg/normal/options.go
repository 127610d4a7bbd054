package normal

import (
	"fmt"
	"math"
)

// Point is a position in raster space with sub-pixel precision.
type Point struct {
	X, Y float64
}

// Options configures the normal estimator. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// EdgeWidth is the probing radius in pixels.
	EdgeWidth float64
	// StepSize is the distance between successive probes.
	StepSize float64
	// FromCenter switches to radial sampling: a single ray from Center
	// through each pixel instead of eight compass directions.
	FromCenter bool
	Center     Point
	Falloff    Falloff
	// Invert flips the direction of every nudge.
	Invert bool
	// Workers bounds the number of goroutines. Values <= 0 use GOMAXPROCS.
	Workers int
}

// MaxSteps bounds Steps.
const MaxSteps = 1 << 16

// DefaultOptions returns omnidirectional sampling over an 8 pixel edge with
// unit steps and cosine falloff.
func DefaultOptions() Options {
	return Options{
		EdgeWidth: 8,
		StepSize:  1,
		Falloff:   Cosine,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate reports an error wrapping ErrInvalidConfiguration when the
// options cannot describe a probe walk.
func (o Options) Validate() error {
	if !finite(o.EdgeWidth) || o.EdgeWidth <= 0 {
		return fmt.Errorf("edge width must be positive, got %v: %w", o.EdgeWidth, ErrInvalidConfiguration)
	}
	if !finite(o.StepSize) || o.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, got %v: %w", o.StepSize, ErrInvalidConfiguration)
	}
	if r := o.EdgeWidth / o.StepSize; !finite(r) || r > MaxSteps {
		return fmt.Errorf("edge width %v over step size %v exceeds %d steps: %w", o.EdgeWidth, o.StepSize, MaxSteps, ErrInvalidConfiguration)
	}
	if o.FromCenter && (!finite(o.Center.X) || !finite(o.Center.Y)) {
		return fmt.Errorf("center must be finite, got (%v, %v): %w", o.Center.X, o.Center.Y, ErrInvalidConfiguration)
	}
	if o.Falloff != Cosine && o.Falloff != Linear {
		return fmt.Errorf("unknown falloff %v: %w", o.Falloff, ErrInvalidConfiguration)
	}
	return nil
}

// Steps returns the number of probes per direction, floor(EdgeWidth/StepSize).
// Non-positive parameters yield 0, which means no probing.
func (o Options) Steps() int {
	if !(o.EdgeWidth > 0) || !(o.StepSize > 0) {
		return 0
	}
	// the epsilon keeps ratios like 0.3/0.1 from flooring one step short
	return int(math.Floor(o.EdgeWidth/o.StepSize + 1e-9))
}

// fraction returns the share of the probing radius covered before step i
// (1-based), so the first probe sits at fraction 0.
func (o Options) fraction(i int) float64 {
	return float64(i-1) * o.StepSize / o.EdgeWidth
}

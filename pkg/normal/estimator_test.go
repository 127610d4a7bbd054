package normal

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var upPixel = color.NRGBA{R: 128, G: 128, B: 255, A: 255}

func TestEstimateInteriorIsUp(t *testing.T) {
	opts := DefaultOptions()
	opts.EdgeWidth = 2
	opts.StepSize = 1
	out, err := Estimate(context.Background(), All, image.Rect(0, 0, 10, 10), opts)
	require.NoError(t, err)

	for y := 3; y < 7; y++ {
		for x := 3; x < 7; x++ {
			require.Equal(t, upPixel, out.NRGBAAt(x, y), "pixel (%d, %d)", x, y)
		}
	}
	// the raster edge counts as selection boundary
	require.NotEqual(t, upPixel, out.NRGBAAt(0, 5))
}

func TestEstimateSingleEastNeighbour(t *testing.T) {
	m := fullMask(5, 5)
	m.Set(3, 2, 0)

	e, err := NewEstimator(Options{EdgeWidth: 1, StepSize: 1, Falloff: Linear})
	require.NoError(t, err)

	dx, dy := e.Nudge(m, m.Bounds(), 2, 2)
	require.Equal(t, -1.0, dx)
	require.Equal(t, 0.0, dy)

	n := e.Normal(m, m.Bounds(), 2, 2)
	require.InDelta(t, -1/math.Sqrt2, n.X, 1e-12)
	require.InDelta(t, 1/math.Sqrt2, n.Z, 1e-12)
	require.Equal(t, color.NRGBA{R: 37, G: 128, B: 218, A: 255}, e.Pixel(m, m.Bounds(), 2, 2))
}

func TestEstimateInvert(t *testing.T) {
	m := fullMask(5, 5)
	m.Set(3, 2, 0)
	e, err := NewEstimator(Options{EdgeWidth: 1, StepSize: 1, Falloff: Linear, Invert: true})
	require.NoError(t, err)
	dx, dy := e.Nudge(m, m.Bounds(), 2, 2)
	require.Equal(t, 1.0, dx)
	require.Equal(t, 0.0, dy)
}

func TestEstimateDiagonalNeighbour(t *testing.T) {
	m := fullMask(5, 5)
	m.Set(3, 3, 0) // south-east of (2, 2)
	e, err := NewEstimator(Options{EdgeWidth: 1, StepSize: 1, Falloff: Linear})
	require.NoError(t, err)
	dx, dy := e.Nudge(m, m.Bounds(), 2, 2)
	require.InDelta(t, -1/math.Sqrt2, dx, 1e-12)
	require.InDelta(t, 1/math.Sqrt2, dy, 1e-12)
	require.InDelta(t, 1.0, math.Hypot(dx, dy), 1e-12, "diagonal has the weight of an axis probe")
}

func TestEstimateOmniAccumulatesEveryRadius(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 12, 9))
	m.FillRect(image.Rect(0, 0, 7, 9), 255)

	e, err := NewEstimator(Options{EdgeWidth: 3, StepSize: 1, Falloff: Linear})
	require.NoError(t, err)
	dx, dy := e.Nudge(m, m.Bounds(), 5, 4)
	// east hits at radius 2 (2/3) and 3 (1/3); NE and SE hit at radius 3 (1/3 each)
	require.InDelta(t, -(1 + math.Sqrt2/3), dx, 1e-9)
	require.InDelta(t, 0, dy, 1e-9)
}

func TestEstimateRadial(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 11, 11))
	m.FillRect(image.Rect(0, 0, 8, 11), 255)
	opts := Options{EdgeWidth: 3, StepSize: 1, Falloff: Linear, FromCenter: true, Center: Point{0, 5}}
	e, err := NewEstimator(opts)
	require.NoError(t, err)
	b := m.Bounds()

	tests := []struct {
		name   string
		x, y   int
		dx, dy float64
	}{
		{"boundary on first step", 7, 5, 1, 0},
		{"boundary on last step", 5, 5, 1.0 / 3, 0},
		{"interior", 2, 5, 0, 0},
		{"at center", 0, 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy := e.Nudge(m, b, tt.x, tt.y)
			require.InDelta(t, tt.dx, dx, 1e-12)
			require.InDelta(t, tt.dy, dy, 1e-12)
		})
	}
}

func TestEstimateRadialFlipsRasterY(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 11, 11))
	m.FillRect(image.Rect(0, 0, 11, 8), 255)
	e, err := NewEstimator(Options{EdgeWidth: 2, StepSize: 1, Falloff: Cosine, FromCenter: true, Center: Point{5, 0}})
	require.NoError(t, err)
	dx, dy := e.Nudge(m, m.Bounds(), 5, 7)
	require.InDelta(t, 0, dx, 1e-12)
	require.InDelta(t, -1, dy, 1e-12, "boundary below the pixel tilts the normal down")
}

func TestEstimateRadialStopsAtFirstBoundary(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 12, 1))
	m.FillRect(image.Rect(0, 0, 12, 1), 255)
	m.Set(3, 0, 0)
	m.Set(4, 0, 0)
	e, err := NewEstimator(Options{EdgeWidth: 4, StepSize: 1, Falloff: Linear, FromCenter: true, Center: Point{0, 0}})
	require.NoError(t, err)
	dx, _ := e.Nudge(m, m.Bounds(), 1, 0)
	require.InDelta(t, 0.75, dx, 1e-12)
}

func TestEstimateUnselectedTransparent(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 6, 6))
	m.FillRect(image.Rect(2, 2, 4, 4), 255)
	out, err := Estimate(context.Background(), m, m.Bounds(), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, color.NRGBA{}, out.NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{}, out.NRGBAAt(5, 5))
	require.Equal(t, uint8(255), out.NRGBAAt(2, 2).A)
}

func TestEstimateNoProbingWhenStepExceedsEdge(t *testing.T) {
	out, err := Estimate(context.Background(), All, image.Rect(0, 0, 4, 4), Options{EdgeWidth: 0.5, StepSize: 1})
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			require.Equal(t, upPixel, out.NRGBAAt(x, y))
		}
	}
}

func TestEstimateInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero edge", Options{EdgeWidth: 0, StepSize: 1}},
		{"negative step", Options{EdgeWidth: 2, StepSize: -1}},
		{"zero step", Options{EdgeWidth: 2, StepSize: 0}},
		{"nan edge", Options{EdgeWidth: math.NaN(), StepSize: 1}},
		{"inf center", Options{EdgeWidth: 2, StepSize: 1, FromCenter: true, Center: Point{math.Inf(1), 0}}},
		{"bad falloff", Options{EdgeWidth: 2, StepSize: 1, Falloff: Falloff(7)}},
		{"overflowing ratio", Options{EdgeWidth: 1e300, StepSize: 1e-300}},
		{"too many steps", Options{EdgeWidth: 1e12, StepSize: 1}},
		{"one step over", Options{EdgeWidth: MaxSteps + 1, StepSize: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEstimator(tt.opts)
			require.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
	require.Equal(t, 0, Options{}.Steps())
	require.Equal(t, 3, Options{EdgeWidth: 0.3, StepSize: 0.1}.Steps())

	limit := Options{EdgeWidth: MaxSteps, StepSize: 1, Falloff: Cosine}
	require.NoError(t, limit.Validate())
	require.Equal(t, MaxSteps, limit.Steps())
}

func TestEstimateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Estimate(ctx, All, image.Rect(0, 0, 8, 8), DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestEstimateWorkerCountDoesNotChangeOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewMask(image.Rect(0, 0, 40, 31))
	for y := 0; y < 31; y++ {
		for x := 0; x < 40; x++ {
			if rng.Intn(5) > 0 {
				m.Set(x, y, 255)
			}
		}
	}
	for _, fromCenter := range []bool{false, true} {
		opts := Options{EdgeWidth: 4, StepSize: 0.5, FromCenter: fromCenter, Center: Point{20, 15}, Workers: 1}
		seq, err := Estimate(context.Background(), m, m.Bounds(), opts)
		require.NoError(t, err)
		opts.Workers = 8
		par, err := Estimate(context.Background(), m, m.Bounds(), opts)
		require.NoError(t, err)
		require.Equal(t, seq.Pix, par.Pix)
	}
}

func TestEstimateOffsetRaster(t *testing.T) {
	// a destination that does not start at the origin probes its own bounds
	r := image.Rect(10, 20, 15, 25)
	out, err := Estimate(context.Background(), All, r, Options{EdgeWidth: 1, StepSize: 1})
	require.NoError(t, err)
	require.Equal(t, upPixel, out.NRGBAAt(12, 22))
	require.NotEqual(t, upPixel, out.NRGBAAt(10, 22))
}

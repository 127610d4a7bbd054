package normal

import (
	"fmt"
	"math"
	"strings"
)

// Falloff selects the curve that attenuates a nudge with distance from the pixel.
type Falloff int

const (
	// Cosine eases out: cos(f·π/2). It stays near 1 close to the pixel and
	// drops quickly toward the edge of the probing radius.
	Cosine Falloff = iota
	// Linear decays as 1 - f.
	Linear
)

// FalloffFor returns Linear when linear is set and Cosine otherwise.
func FalloffFor(linear bool) Falloff {
	if linear {
		return Linear
	}
	return Cosine
}

// Weight maps a fraction of the probing radius to a weight in [0,1]. Both
// curves are 1 at fraction 0 and 0 at fraction 1; fractions outside [0,1]
// are clamped.
func (f Falloff) Weight(fraction float64) float64 {
	switch {
	case fraction <= 0:
		return 1
	case fraction >= 1:
		return 0
	}
	if f == Linear {
		return 1 - fraction
	}
	return math.Cos(fraction * math.Pi / 2)
}

func (f Falloff) String() string {
	switch f {
	case Cosine:
		return "cosine"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Falloff(%d)", int(f))
	}
}

// ParseFalloff accepts "cosine" (or "ease") and "linear", case-insensitively.
func ParseFalloff(s string) (Falloff, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosine", "cos", "ease", "":
		return Cosine, nil
	case "linear":
		return Linear, nil
	}
	return 0, fmt.Errorf("unknown falloff %q: %w", s, ErrInvalidConfiguration)
}

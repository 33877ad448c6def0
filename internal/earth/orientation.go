package earth

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"

	"github.com/orbview/groundsite/internal/frame"
)

// Orientation bundles the Earth-orientation quantities for one instant: the
// celestial→terrestrial rotation M, its transpose MT, and the apparent
// sidereal time GAST. Time records the UTC instant the state describes and
// is what time-parameterized bodies (SGP4 targets) propagate to; it is zero
// for states supplied without an epoch.
//
// A batch of instants is simply []Orientation, ordered; every batched
// operation downstream preserves that order.
type Orientation struct {
	M, MT *mat.Dense
	GAST  unit.HourAngle
	Time  time.Time
}

// NewOrientation builds a state from a celestial→terrestrial matrix and
// sidereal time. MT is derived from M, which must be 3x3.
func NewOrientation(at time.Time, m *mat.Dense, gast unit.HourAngle) (Orientation, error) {
	if r, c := m.Dims(); r != 3 || c != 3 {
		return Orientation{}, fmt.Errorf("orientation: %w: M is %dx%d, want 3x3", frame.ErrShapeMismatch, r, c)
	}
	return Orientation{M: m, MT: frame.Transpose(m), GAST: gast, Time: at}, nil
}

// OrientationAt builds the state for a UTC instant.
//
// Sidereal time is Greenwich Mean Sidereal Time and M is the identity:
// precession, nutation and the equation of the equinoxes are ignored. This
// is the same equinox-of-date simplification the pass-prediction layer
// works in, good to roughly an arcminute of Earth rotation phase. Callers
// holding a full precession-nutation matrix supply their own state through
// NewOrientation instead.
func OrientationAt(t time.Time) Orientation {
	t = t.UTC()
	jd := satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	gmst := satellite.ThetaG_JD(jd)
	return Orientation{
		M:    frame.Identity(),
		MT:   frame.Identity(),
		GAST: unit.HourAngle(unit.PMod(gmst, 2*math.Pi)),
		Time: t,
	}
}

// OrientationRange samples n states starting at start, step apart, in time
// order.
func OrientationRange(start time.Time, step time.Duration, n int) []Orientation {
	out := make([]Orientation, n)
	for i := range out {
		out[i] = OrientationAt(start.Add(time.Duration(i) * step))
	}
	return out
}

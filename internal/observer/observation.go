package observer

import (
	"fmt"
	"math"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"

	"github.com/orbview/groundsite/internal/earth"
	"github.com/orbview/groundsite/internal/frame"
	"github.com/orbview/groundsite/internal/metrics"
)

// ObservationFrame identifies the origin of an Observation's position.
type ObservationFrame int

const (
	// Geocentric observations are offsets from the Earth's center.
	Geocentric ObservationFrame = iota
	// Barycentric observations include the Earth's own barycentric
	// position from an attached Ephemeris.
	Barycentric
)

func (f ObservationFrame) String() string {
	switch f {
	case Geocentric:
		return "geocentric"
	case Barycentric:
		return "barycentric"
	}
	return fmt.Sprintf("ObservationFrame(%d)", int(f))
}

// Observation is the fully evaluated state of a Location at one instant.
// All fields are populated at construction; the struct is never mutated
// afterwards.
type Observation struct {
	Frame    ObservationFrame
	Position [3]float64 // AU, in Frame's origin
	Velocity [3]float64 // AU/day

	// GeocentricPosition and GeocentricVelocity are the observer's offset
	// from the Earth's center regardless of Frame.
	GeocentricPosition [3]float64
	GeocentricVelocity [3]float64

	Horizon     *mat.Dense // celestial → north/east/up rotation
	Orientation earth.Orientation
}

// At evaluates the location for one orientation state, returning its
// celestial position and velocity together with the horizon rotation for
// later altitude/azimuth queries. With an Ephemeris attached the result is
// barycentric; otherwise geocentric.
func (l *Location) At(o earth.Orientation) (*Observation, error) {
	pos, vel, err := l.PositionVelocity(o)
	if err != nil {
		return nil, err
	}
	horizon, err := l.HorizonRotation(o)
	if err != nil {
		return nil, err
	}
	metrics.IncObserverEvaluations()

	obs := &Observation{
		Frame:              Geocentric,
		Position:           pos,
		Velocity:           vel,
		GeocentricPosition: pos,
		GeocentricVelocity: vel,
		Horizon:            horizon,
		Orientation:        o,
	}
	if l.eph == nil {
		return obs, nil
	}

	epos, evel, err := l.eph.EarthPV(o)
	if err != nil {
		return nil, fmt.Errorf("earth ephemeris: %w", err)
	}
	obs.Frame = Barycentric
	for i := 0; i < 3; i++ {
		obs.Position[i] = epos[i] + pos[i]
		obs.Velocity[i] = evel[i] + vel[i]
	}
	return obs, nil
}

// AtEach evaluates a batch of orientation states in input order.
func (l *Location) AtEach(os []earth.Orientation) ([]*Observation, error) {
	out := make([]*Observation, len(os))
	for i, o := range os {
		obs, err := l.At(o)
		if err != nil {
			return nil, fmt.Errorf("instant %d: %w", i, err)
		}
		out[i] = obs
	}
	return out, nil
}

// AltAz converts a target position in the observation's frame into local
// horizon coordinates: altitude above the horizon, azimuth clockwise from
// north, and range. The target must share the observation's origin
// (geocentric or barycentric).
func (o *Observation) AltAz(target [3]float64) (alt, az unit.Angle, rangeAU float64, err error) {
	rel := [3]float64{
		target[0] - o.Position[0],
		target[1] - o.Position[1],
		target[2] - o.Position[2],
	}
	h, err := frame.Apply(o.Horizon, rel)
	if err != nil {
		return 0, 0, 0, err
	}

	rangeAU = math.Sqrt(h[0]*h[0] + h[1]*h[1] + h[2]*h[2])
	if rangeAU == 0 {
		return 0, 0, 0, fmt.Errorf("altaz: target coincides with observer")
	}
	alt = unit.Angle(math.Asin(h[2] / rangeAU))
	az = unit.Angle(unit.PMod(math.Atan2(h[1], h[0]), 2*math.Pi))
	return alt, az, rangeAU, nil
}

// Package observer computes where a fixed Earth-surface location is in the
// celestial frame, and the rotation that carries celestial-frame vectors
// into that location's local horizon basis.
//
// The pipeline chains several rotation stages: geodetic→terrestrial
// (earth.Terra), terrestrial→celestial (the orientation state's MT), and
// small polar-motion corrections. The horizon rotation composes the cached
// latitude rotation, a meridian Z rotation, and the orientation state's M.
// Rotation order and sign conventions here are load-bearing; the tests pin
// them with axis probes and round-trips rather than re-derivation.
package observer

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"

	"github.com/orbview/groundsite/internal/earth"
	"github.com/orbview/groundsite/internal/frame"
)

// ErrInvalidCoordinate reports a latitude or longitude that could not be
// interpreted or is out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Ephemeris supplies the Earth's own barycentric position (AU) and velocity
// (AU/day) for an instant. Attaching one to a Location upgrades At results
// from geocentric to barycentric.
type Ephemeris interface {
	EarthPV(o earth.Orientation) (pos, vel [3]float64, err error)
}

// Body is anything whose celestial-frame position and velocity can be
// evaluated at an instant. Both ground locations and propagated satellites
// implement it.
type Body interface {
	EvaluateAt(o earth.Orientation) (pos, vel [3]float64, err error)
}

// Config holds the geodetic parameters for a Location.
type Config struct {
	Latitude   unit.Angle // geodetic, north positive, [-90°, +90°]
	Longitude  unit.Angle // east positive; any range, normalized to (-180°, +180°]
	ElevationM float64    // meters above the reference ellipsoid
	PolarX     float64    // polar-motion offset about Y, arcseconds
	PolarY     float64    // polar-motion offset about X, arcseconds
	Ephemeris  Ephemeris  // optional; nil means geocentric results
}

// Location is a fixed point on the Earth's surface. Immutable after
// construction; safe for concurrent use.
type Location struct {
	Latitude   unit.Angle
	Longitude  unit.Angle
	ElevationM float64
	PolarX     float64
	PolarY     float64

	elevationAU float64
	rLat        *mat.Dense // latitude rotation, depends only on latitude
	eph         Ephemeris
}

// NewLocation validates cfg and builds an immutable Location. The latitude
// rotation used by every horizon query is computed once here.
func NewLocation(cfg Config) (*Location, error) {
	if math.IsNaN(cfg.Latitude.Rad()) || math.IsInf(cfg.Latitude.Rad(), 0) {
		return nil, fmt.Errorf("latitude: %w: not a finite angle", ErrInvalidCoordinate)
	}
	if math.IsNaN(cfg.Longitude.Rad()) || math.IsInf(cfg.Longitude.Rad(), 0) {
		return nil, fmt.Errorf("longitude: %w: not a finite angle", ErrInvalidCoordinate)
	}
	if r := cfg.Latitude.Rad(); r < -math.Pi/2 || r > math.Pi/2 {
		return nil, fmt.Errorf("latitude: %w: %.6f° outside [-90°, +90°]", ErrInvalidCoordinate, cfg.Latitude.Deg())
	}
	if math.IsNaN(cfg.ElevationM) || math.IsInf(cfg.ElevationM, 0) {
		return nil, fmt.Errorf("elevation: %w: not finite", ErrInvalidCoordinate)
	}

	// Normalize longitude to (-180°, +180°], leaving in-range values
	// untouched bit for bit.
	lon := cfg.Longitude
	if d := lon.Deg(); d <= -180 || d > 180 {
		lon = lon.Mod1()
		if lon.Deg() > 180 {
			lon -= unit.AngleFromDeg(360)
		}
	}

	return &Location{
		Latitude:    cfg.Latitude,
		Longitude:   lon,
		ElevationM:  cfg.ElevationM,
		PolarX:      cfg.PolarX,
		PolarY:      cfg.PolarY,
		elevationAU: cfg.ElevationM / earth.AUMeters,
		rLat:        frame.LatitudeRotation(cfg.Latitude),
		eph:         cfg.Ephemeris,
	}, nil
}

// ElevationAU reports the elevation in astronomical units.
func (l *Location) ElevationAU() float64 {
	return l.elevationAU
}

// PositionVelocity computes the location's position (AU) and velocity
// (AU/day) in the celestial frame for one orientation state.
//
// The terrestrial vectors from earth.Terra are rotated by the state's MT,
// then the polar-motion offsets, when nonzero, rotate the position about Y
// (PolarX) and X (PolarY). Polar motion is applied to the position only;
// the velocity keeps the uncorrected terrestrial-to-celestial rotation.
func (l *Location) PositionVelocity(o earth.Orientation) (pos, vel [3]float64, err error) {
	tpos, tvel := earth.Terra(l.Latitude, l.Longitude, l.elevationAU, o.GAST)

	pos, err = frame.Apply(o.MT, tpos)
	if err != nil {
		return pos, vel, err
	}
	vel, err = frame.Apply(o.MT, tvel)
	if err != nil {
		return pos, vel, err
	}

	if l.PolarX != 0 {
		pos, err = frame.Apply(frame.RotY(unit.AngleFromSec(l.PolarX)), pos)
		if err != nil {
			return pos, vel, err
		}
	}
	if l.PolarY != 0 {
		pos, err = frame.Apply(frame.RotX(unit.AngleFromSec(l.PolarY)), pos)
		if err != nil {
			return pos, vel, err
		}
	}
	return pos, vel, nil
}

// EvaluateAt implements Body.
func (l *Location) EvaluateAt(o earth.Orientation) (pos, vel [3]float64, err error) {
	return l.PositionVelocity(o)
}

// PositionVelocityBatch evaluates a batch of orientation states. Results
// are ordered instant-by-instant exactly as the input.
func (l *Location) PositionVelocityBatch(os []earth.Orientation) (pos, vel [][3]float64, err error) {
	pos = make([][3]float64, len(os))
	vel = make([][3]float64, len(os))
	for i, o := range os {
		pos[i], vel[i], err = l.PositionVelocity(o)
		if err != nil {
			return nil, nil, fmt.Errorf("instant %d: %w", i, err)
		}
	}
	return pos, vel, nil
}

// HorizonRotation computes the 3x3 rotation carrying celestial-frame
// vectors into the location's north/east/up horizon basis at the state's
// instant:
//
//	R = R_lat · RotZ(-(longitude + gast)) · M
//
// M applies first, then the meridian alignment, then the cached latitude
// rotation.
func (l *Location) HorizonRotation(o earth.Orientation) (*mat.Dense, error) {
	rLon := frame.RotZ(-(l.Longitude + o.GAST.Angle()))
	return frame.Compose(l.rLat, rLon, o.M)
}

func (l *Location) String() string {
	return fmt.Sprintf("Location %.4f°N %.4f°E", l.Latitude.Deg(), l.Longitude.Deg())
}

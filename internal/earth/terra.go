// Package earth holds the terrestrial-frame primitive and the
// Earth-orientation state consumed by the observer pipeline.
//
// All distances inside the pipeline are astronomical units and all rates are
// AU per day; callers convert meters and km at the boundary. Angles are
// radians via the unit package.
package earth

import (
	"math"

	"github.com/soniakeys/unit"
)

// Reference ellipsoid and rotation constants (IERS 2010 / WGS-84 flattening).
const (
	AUMeters   = 1.4959787069098932e11 // astronomical unit, meters
	RadiusM    = 6378136.6             // equatorial radius, meters
	Flattening = 1.0 / 298.257223563
	AngVel     = 7.2921150e-5 // rotation rate, rad/s
	DaySeconds = 86400.0
)

const (
	omf2     = (1 - Flattening) * (1 - Flattening)
	radiusAU = RadiusM / AUMeters
)

// Terra computes the position (AU) and velocity (AU/day) of a geodetic
// surface point in the Earth-fixed equatorial frame of date.
//
// Latitude is geodetic, north positive; longitude east positive; elevation
// is height above the reference ellipsoid in AU; gast is the apparent
// sidereal time that fixes the frame's rotational phase. The velocity is the
// uniform-rotation term only: its z component is identically zero and it is
// perpendicular to the position's equatorial projection.
func Terra(latitude, longitude unit.Angle, elevationAU float64, gast unit.HourAngle) (pos, vel [3]float64) {
	sinphi, cosphi := latitude.Sincos()
	c := 1.0 / math.Sqrt(cosphi*cosphi+sinphi*sinphi*omf2)
	s := omf2 * c
	ach := radiusAU*c + elevationAU
	ash := radiusAU*s + elevationAU

	// Local sidereal angle at the observer's meridian.
	sinst, cosst := math.Sincos(gast.Rad() + longitude.Rad())

	ac := ach * cosphi
	pos = [3]float64{ac * cosst, ac * sinst, ash * sinphi}

	w := AngVel * DaySeconds
	vel = [3]float64{-w * ac * sinst, w * ac * cosst, 0}
	return pos, vel
}

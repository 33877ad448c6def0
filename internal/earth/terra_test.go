package earth

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
)

func TestTerraEquator(t *testing.T) {
	pos, _ := Terra(0, 0, 0, 0)

	// At the equator and prime meridian with gast 0 the position is along
	// +x with magnitude equal to the equatorial radius.
	if math.Abs(pos[0]*AUMeters-RadiusM) > 1e-3 {
		t.Errorf("x = %.6f m, want %.1f m", pos[0]*AUMeters, RadiusM)
	}
	if math.Abs(pos[1]) > 1e-18 || math.Abs(pos[2]) > 1e-18 {
		t.Errorf("y,z = %g, %g, want 0, 0", pos[1], pos[2])
	}
}

func TestTerraPole(t *testing.T) {
	pos, vel := Terra(unit.AngleFromDeg(90), 0, 0, 0)

	// The pole sits on the rotation axis: no equatorial component, no
	// rotational velocity, z equal to the polar radius a(1-f).
	horiz := math.Hypot(pos[0], pos[1])
	if horiz > 1e-20 {
		t.Errorf("equatorial magnitude = %g AU, want ~0", horiz)
	}
	polarM := RadiusM * (1 - Flattening)
	if math.Abs(pos[2]*AUMeters-polarM) > 1e-3 {
		t.Errorf("z = %.6f m, want %.1f m", pos[2]*AUMeters, polarM)
	}
	if speed := math.Sqrt(vel[0]*vel[0] + vel[1]*vel[1] + vel[2]*vel[2]); speed > 1e-18 {
		t.Errorf("polar speed = %g AU/day, want ~0", speed)
	}
}

func TestTerraVelocityGeometry(t *testing.T) {
	pos, vel := Terra(unit.AngleFromDeg(39.0), unit.AngleFromDeg(-77.0), 0, unit.HourAngleFromHour(3.5))

	// Velocity is the uniform-rotation term: perpendicular to the
	// equatorial projection of the position, zero z, magnitude ω·ρ.
	if vel[2] != 0 {
		t.Errorf("vel z = %g, want exactly 0", vel[2])
	}
	dot := pos[0]*vel[0] + pos[1]*vel[1]
	if math.Abs(dot) > 1e-20 {
		t.Errorf("equatorial pos·vel = %g, want 0", dot)
	}
	rho := math.Hypot(pos[0], pos[1])
	wantSpeed := AngVel * DaySeconds * rho
	gotSpeed := math.Hypot(vel[0], vel[1])
	if math.Abs(gotSpeed-wantSpeed) > 1e-15 {
		t.Errorf("speed = %g AU/day, want %g", gotSpeed, wantSpeed)
	}
}

func TestTerraSiderealPhase(t *testing.T) {
	// Six sidereal hours rotate the equatorial position a quarter turn.
	pos0, _ := Terra(0, 0, 0, 0)
	pos6, _ := Terra(0, 0, 0, unit.HourAngleFromHour(6))

	if math.Abs(pos6[0]) > 1e-18 {
		t.Errorf("x after 6h = %g, want ~0", pos6[0])
	}
	if math.Abs(pos6[1]-pos0[0]) > 1e-18 {
		t.Errorf("y after 6h = %g, want %g", pos6[1], pos0[0])
	}
}

func TestTerraMatchesEllipsoidFormula(t *testing.T) {
	// Cross-check against the prime-vertical form of the geodetic→ECEF
	// conversion: x = (N+h)cosφcosλ with N = a/sqrt(1 - e² sin²φ).
	lat := unit.AngleFromDeg(39.0)
	lon := unit.AngleFromDeg(-77.0)
	hM := 120.0

	pos, _ := Terra(lat, lon, hM/AUMeters, 0)

	e2 := Flattening * (2 - Flattening)
	sinLat, cosLat := lat.Sincos()
	sinLon, cosLon := lon.Sincos()
	n := RadiusM / math.Sqrt(1-e2*sinLat*sinLat)
	want := [3]float64{
		(n + hM) * cosLat * cosLon,
		(n + hM) * cosLat * sinLon,
		(n*(1-e2) + hM) * sinLat,
	}

	for i := 0; i < 3; i++ {
		if math.Abs(pos[i]*AUMeters-want[i]) > 1e-3 {
			t.Errorf("component %d = %.6f m, want %.6f m", i, pos[i]*AUMeters, want[i])
		}
	}
}

func TestTerraElevation(t *testing.T) {
	pos0, _ := Terra(0, 0, 0, 0)
	pos1, _ := Terra(0, 0, 1000.0/AUMeters, 0)

	diffM := (pos1[0] - pos0[0]) * AUMeters
	if math.Abs(diffM-1000.0) > 1e-3 {
		t.Errorf("elevation raised x by %.6f m, want 1000 m", diffM)
	}
}

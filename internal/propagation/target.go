// Package propagation adapts SGP4-propagated satellites into celestial-frame
// bodies the observer pipeline can point at.
//
// SGP4 library choice: github.com/joshuaferrara/go-satellite. Pure Go, most
// community adoption, explicit TEME output. Its equinox-of-date TEME frame
// matches the GMST-only orientation states built by earth.OrientationAt, so
// satellite positions and observer positions subtract cleanly.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible to the caller. Propagation failures are detected by checking the
// output for NaN/Inf and unreasonable position magnitudes.
package propagation

import (
	"fmt"
	"math"
	"strings"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/orbview/groundsite/internal/earth"
)

// Target wraps one SGP4-propagated satellite.
type Target struct {
	sat     satellite.Satellite
	noradID int
}

// NewTarget creates a Target from TLE lines. Returns an error if the TLE
// cannot be parsed or the SGP4 model fails to initialize.
//
// Pre-validates TLE format before passing to the library, because
// go-satellite calls log.Fatal on malformed input (which would kill the
// process).
func NewTarget(line1, line2 string, noradID int) (*Target, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &Target{sat: sat, noradID: noradID}, nil
}

// NORADID returns the satellite's catalog number.
func (t *Target) NORADID() int {
	return t.noradID
}

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// EvaluateAt implements observer.Body: the satellite's position (AU) and
// velocity (AU/day) in the celestial frame at the orientation state's
// instant. The state must carry an epoch (built by earth.OrientationAt).
func (t *Target) EvaluateAt(o earth.Orientation) (pos, vel [3]float64, err error) {
	if o.Time.IsZero() {
		return pos, vel, fmt.Errorf("propagating NORAD %d: orientation state carries no epoch", t.noradID)
	}
	at := o.Time.UTC()

	p, v := satellite.Propagate(t.sat, at.Year(), int(at.Month()), at.Day(), at.Hour(), at.Minute(), at.Second())

	if !finite(p.X) || !finite(p.Y) || !finite(p.Z) || !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
		return pos, vel, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", t.noradID)
	}

	// Sanity check: Earth orbits run from just above the surface to a bit
	// beyond GEO.
	magKm := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	if magKm < 6300 || magKm > 500000 {
		return pos, vel, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", t.noradID, magKm)
	}

	kmAU := 1000.0 / earth.AUMeters
	pos = [3]float64{p.X * kmAU, p.Y * kmAU, p.Z * kmAU}
	vel = [3]float64{
		v.X * kmAU * earth.DaySeconds,
		v.Y * kmAU * earth.DaySeconds,
		v.Z * kmAU * earth.DaySeconds,
	}
	return pos, vel, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

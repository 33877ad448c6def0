package observer

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/unit"

	"github.com/orbview/groundsite/internal/earth"
	"github.com/orbview/groundsite/internal/frame"
)

// identityState returns an orientation with M = MT = identity and the given
// sidereal time, the configuration where the celestial and terrestrial
// frames coincide.
func identityState(t *testing.T, gast unit.HourAngle) earth.Orientation {
	t.Helper()
	o, err := earth.NewOrientation(time.Time{}, frame.Identity(), gast)
	if err != nil {
		t.Fatalf("NewOrientation: %v", err)
	}
	return o
}

func mustLocation(t *testing.T, cfg Config) *Location {
	t.Helper()
	l, err := NewLocation(cfg)
	if err != nil {
		t.Fatalf("NewLocation: %v", err)
	}
	return l
}

func TestNewLocationValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"latitude above range", Config{Latitude: unit.AngleFromDeg(90.0001)}},
		{"latitude below range", Config{Latitude: unit.AngleFromDeg(-91)}},
		{"latitude NaN", Config{Latitude: unit.Angle(math.NaN())}},
		{"longitude Inf", Config{Longitude: unit.Angle(math.Inf(1))}},
		{"elevation NaN", Config{ElevationM: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLocation(tt.cfg); !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("error = %v, want ErrInvalidCoordinate", err)
			}
		})
	}
}

func TestNewLocationNormalizesLongitude(t *testing.T) {
	l := mustLocation(t, Config{Longitude: unit.AngleFromDeg(190)})
	if d := l.Longitude.Deg(); math.Abs(d-(-170)) > 1e-12 {
		t.Errorf("longitude = %.12f°, want -170°", d)
	}

	l = mustLocation(t, Config{Longitude: unit.AngleFromDeg(180)})
	if d := l.Longitude.Deg(); math.Abs(d-180) > 1e-12 {
		t.Errorf("longitude = %.12f°, want 180°", d)
	}
}

// TestIdentityOrientationMatchesTerra pins the frame rotation as a no-op
// when M is the identity: the celestial position must equal the raw
// terrestrial vector bit for bit. Station at 39°N 77°W, sea level.
func TestIdentityOrientationMatchesTerra(t *testing.T) {
	lat := unit.AngleFromDeg(39.0)
	lon := unit.AngleFromDeg(-77.0)
	l := mustLocation(t, Config{Latitude: lat, Longitude: lon})
	o := identityState(t, 0)

	pos, vel, err := l.PositionVelocity(o)
	if err != nil {
		t.Fatalf("PositionVelocity: %v", err)
	}

	wantPos, wantVel := earth.Terra(lat, lon, 0, 0)
	if pos != wantPos {
		t.Errorf("position = %v, want terra output %v", pos, wantPos)
	}
	if vel != wantVel {
		t.Errorf("velocity = %v, want terra output %v", vel, wantVel)
	}
}

func TestPositionVelocityIdempotent(t *testing.T) {
	l := mustLocation(t, Config{
		Latitude:   unit.AngleFromDeg(40.7128),
		Longitude:  unit.AngleFromDeg(-74.006),
		ElevationM: 10,
		PolarX:     0.12,
		PolarY:     -0.25,
	})
	o := identityState(t, unit.HourAngleFromHour(5.5))

	p1, v1, err := l.PositionVelocity(o)
	if err != nil {
		t.Fatalf("PositionVelocity: %v", err)
	}
	p2, v2, err := l.PositionVelocity(o)
	if err != nil {
		t.Fatalf("PositionVelocity: %v", err)
	}
	if p1 != p2 || v1 != v2 {
		t.Errorf("repeated evaluation differs: %v/%v vs %v/%v", p1, v1, p2, v2)
	}
}

// TestPolarOffsetRotatesPositionOnly pins the documented asymmetry: a polar
// offset rotates the position by exactly the expected axis rotation while
// the velocity comes through untouched.
func TestPolarOffsetRotatesPositionOnly(t *testing.T) {
	base := Config{
		Latitude:  unit.AngleFromDeg(39.0),
		Longitude: unit.AngleFromDeg(-77.0),
	}
	o := identityState(t, unit.HourAngleFromHour(2))

	plain := mustLocation(t, base)
	posPlain, velPlain, err := plain.PositionVelocity(o)
	if err != nil {
		t.Fatalf("PositionVelocity: %v", err)
	}

	offset := base
	offset.PolarX = 0.35 // arcseconds
	shifted := mustLocation(t, offset)
	posShifted, velShifted, err := shifted.PositionVelocity(o)
	if err != nil {
		t.Fatalf("PositionVelocity: %v", err)
	}

	wantPos, err := frame.Apply(frame.RotY(unit.AngleFromSec(0.35)), posPlain)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if posShifted != wantPos {
		t.Errorf("position = %v, want %v", posShifted, wantPos)
	}
	if velShifted != velPlain {
		t.Errorf("velocity changed under polar offset: %v vs %v", velShifted, velPlain)
	}
}

func TestPoleLatitude(t *testing.T) {
	l := mustLocation(t, Config{Latitude: unit.AngleFromDeg(90)})
	o := identityState(t, unit.HourAngleFromHour(7))

	obs, err := l.At(o)
	if err != nil {
		t.Fatalf("At: %v", err)
	}

	// The pole's own position, seen in its horizon frame, has no
	// horizontal component: straight up the rotation axis.
	h, err := frame.Apply(obs.Horizon, obs.GeocentricPosition)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if math.Abs(h[0]) > 1e-16 || math.Abs(h[1]) > 1e-16 {
		t.Errorf("horizontal components = %g, %g, want ~0", h[0], h[1])
	}
	if h[2] <= 0 {
		t.Errorf("up component = %g, want positive", h[2])
	}
}

func TestBatchMatchesSingleInstants(t *testing.T) {
	l := mustLocation(t, Config{
		Latitude:  unit.AngleFromDeg(51.4779),
		Longitude: unit.AngleFromDeg(-0.0015),
	})
	states := earth.OrientationRange(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), 10*time.Minute, 6)

	batchPos, batchVel, err := l.PositionVelocityBatch(states)
	if err != nil {
		t.Fatalf("PositionVelocityBatch: %v", err)
	}
	if len(batchPos) != len(states) || len(batchVel) != len(states) {
		t.Fatalf("batch lengths %d/%d, want %d", len(batchPos), len(batchVel), len(states))
	}

	for i, o := range states {
		pos, vel, err := l.PositionVelocity(o)
		if err != nil {
			t.Fatalf("PositionVelocity(%d): %v", i, err)
		}
		if batchPos[i] != pos || batchVel[i] != vel {
			t.Errorf("instant %d: batch %v/%v, single %v/%v", i, batchPos[i], batchVel[i], pos, vel)
		}
	}
}

func TestParseLatitude(t *testing.T) {
	tests := []struct {
		in      string
		wantDeg float64
		wantErr bool
	}{
		{"40.7128", 40.7128, false},
		{"-33.9", -33.9, false},
		{"38.9478 N", 38.9478, false},
		{"33.9S", -33.9, false},
		{"33.9 s", -33.9, false},
		{"", 0, true},
		{"north", 0, true},
		{"12,5", 0, true},
	}
	for _, tt := range tests {
		a, err := ParseLatitude(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("ParseLatitude(%q) error = %v, want ErrInvalidCoordinate", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLatitude(%q): %v", tt.in, err)
			continue
		}
		if math.Abs(a.Deg()-tt.wantDeg) > 1e-12 {
			t.Errorf("ParseLatitude(%q) = %.6f°, want %.6f°", tt.in, a.Deg(), tt.wantDeg)
		}
	}
}

func TestParseLongitude(t *testing.T) {
	a, err := ParseLongitude("77.0647 W")
	if err != nil {
		t.Fatalf("ParseLongitude: %v", err)
	}
	if math.Abs(a.Deg()-(-77.0647)) > 1e-12 {
		t.Errorf("got %.6f°, want -77.0647°", a.Deg())
	}

	if _, err := ParseLongitude("12.5 N"); err == nil {
		// N is not a longitude hemisphere; the bare-number fallback must
		// not silently accept it.
		t.Error("expected error for longitude with N suffix")
	}
}

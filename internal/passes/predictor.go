// Package passes predicts satellite passes over a ground location.
//
// Elevation comes from the observer pipeline: the satellite's celestial
// position and the observer's celestial position are differenced and pushed
// through the horizon rotation, so pass geometry and altitude/azimuth
// queries share one set of frame conventions.
package passes

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/orbview/groundsite/internal/earth"
	"github.com/orbview/groundsite/internal/metrics"
	"github.com/orbview/groundsite/internal/observer"
	"github.com/orbview/groundsite/internal/propagation"
	"github.com/orbview/groundsite/internal/tle"
)

// PassEvent describes a single satellite pass over the observer.
type PassEvent struct {
	Rise            time.Time `json:"rise"`
	Culmination     time.Time `json:"culmination"`
	Set             time.Time `json:"set"`
	DurationSeconds float64   `json:"duration_seconds"`
	MaxAltitude     float64   `json:"max_altitude"` // degrees
	AzimuthAtMax    float64   `json:"azimuth_at_max"`
	RiseAzimuth     float64   `json:"rise_azimuth"`
	SetAzimuth      float64   `json:"set_azimuth"`
}

// SatellitePasses holds the predicted passes for one satellite.
type SatellitePasses struct {
	NORADID int         `json:"norad_id"`
	Name    string      `json:"name,omitempty"`
	Passes  []PassEvent `json:"passes"`
	Error   string      `json:"error,omitempty"`
}

// Request holds the parameters for a pass prediction request.
type Request struct {
	Location     *observer.Location
	Entries      []tle.Entry
	Start        time.Time
	HorizonHours float64
	MinAltitude  float64 // degrees
	MaxPasses    int
}

const (
	coarseStepSec = 30 // seconds between coarse scan steps
	fineStepSec   = 1  // seconds between fine scan steps
	minPassDur    = 10 * time.Second
)

// Predict computes satellite passes for the given request. Each satellite
// is processed in its own goroutine, bounded by a semaphore.
func Predict(ctx context.Context, req Request) []SatellitePasses {
	start := time.Now()
	defer func() { metrics.ObservePassPrediction(time.Since(start)) }()

	results := make([]SatellitePasses, len(req.Entries))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, entry := range req.Entries {
		wg.Add(1)
		go func(idx int, e tle.Entry) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = SatellitePasses{
					NORADID: e.NORADID,
					Name:    e.Name,
					Error:   "cancelled",
				}
				return
			}

			events, err := predictSatellite(ctx, req, e)
			if err != nil {
				results[idx] = SatellitePasses{
					NORADID: e.NORADID,
					Name:    e.Name,
					Error:   err.Error(),
				}
				return
			}
			results[idx] = SatellitePasses{
				NORADID: e.NORADID,
				Name:    e.Name,
				Passes:  events,
			}
		}(i, entry)
	}

	wg.Wait()
	return results
}

// predictSatellite finds all passes for a single satellite.
func predictSatellite(ctx context.Context, req Request, entry tle.Entry) ([]PassEvent, error) {
	target, err := propagation.NewTarget(entry.Line1, entry.Line2, entry.NORADID)
	if err != nil {
		return nil, fmt.Errorf("sgp4 init: %w", err)
	}

	end := req.Start.Add(time.Duration(req.HorizonHours * float64(time.Hour)))
	var events []PassEvent

	// Coarse scan: step through the time range looking for the satellite
	// above the horizon.
	t := req.Start
	for t.Before(end) && len(events) < req.MaxPasses {
		if ctx.Err() != nil {
			return events, nil
		}

		alt, _, err := altitudeAt(req.Location, target, t)
		if err != nil {
			t = t.Add(coarseStepSec * time.Second)
			continue
		}

		if alt > 0 {
			// Candidate window found; fine scan for the full pass.
			pass, windowEnd := refinePass(ctx, req.Location, target, t, req.Start, end, req.MinAltitude)
			if pass != nil && pass.Set.Sub(pass.Rise) >= minPassDur {
				events = append(events, *pass)
			}
			// Jump past the end of this window.
			t = windowEnd.Add(coarseStepSec * time.Second)
		} else {
			t = t.Add(coarseStepSec * time.Second)
		}
	}

	return events, nil
}

// refinePass does a fine-grained scan around a coarse-detected above-horizon
// region. It backs up to find the actual rise, then scans forward to find
// set. Returns the pass event and the time the window ends.
func refinePass(ctx context.Context, loc *observer.Location, target *propagation.Target, coarseHit, windowStart, windowEnd time.Time, minAlt float64) (*PassEvent, time.Time) {
	searchStart := coarseHit.Add(-coarseStepSec * time.Second)
	if searchStart.Before(windowStart) {
		searchStart = windowStart
	}

	var (
		rise      time.Time
		set       time.Time
		riseAz    float64
		setAz     float64
		maxAlt    float64
		maxTime   time.Time
		maxAz     float64
		wasAbove  bool
		foundRise bool
	)

	t := searchStart
	for t.Before(windowEnd) {
		if ctx.Err() != nil {
			break
		}

		alt, az, err := altitudeAt(loc, target, t)
		if err != nil {
			t = t.Add(fineStepSec * time.Second)
			continue
		}

		above := alt >= minAlt

		if above && !wasAbove {
			// Rising.
			rise = t
			riseAz = az
			foundRise = true
			maxAlt = alt
			maxTime = t
			maxAz = az
		}

		if above && foundRise && alt > maxAlt {
			maxAlt = alt
			maxTime = t
			maxAz = az
		}

		if !above && wasAbove && foundRise {
			// Setting.
			set = t
			setAz = az
			break
		}

		wasAbove = above
		t = t.Add(fineStepSec * time.Second)
	}

	// Satellite still above at windowEnd: close the pass there.
	if foundRise && set.IsZero() && wasAbove {
		alt, az, err := altitudeAt(loc, target, t)
		if err == nil {
			set = t
			setAz = az
			if alt > maxAlt {
				maxAlt = alt
				maxTime = t
				maxAz = az
			}
		} else {
			set = t
		}
	}

	if !foundRise || set.IsZero() {
		return nil, t
	}

	return &PassEvent{
		Rise:            rise,
		Culmination:     maxTime,
		Set:             set,
		DurationSeconds: set.Sub(rise).Seconds(),
		MaxAltitude:     maxAlt,
		AzimuthAtMax:    maxAz,
		RiseAzimuth:     riseAz,
		SetAzimuth:      setAz,
	}, set
}

// altitudeAt evaluates the target's altitude and azimuth (degrees) as seen
// from loc at time t.
func altitudeAt(loc *observer.Location, target *propagation.Target, t time.Time) (alt, az float64, err error) {
	o := earth.OrientationAt(t)
	obs, err := loc.At(o)
	if err != nil {
		return 0, 0, err
	}
	pos, _, err := target.EvaluateAt(o)
	if err != nil {
		return 0, 0, err
	}
	a, z, _, err := obs.AltAz(pos)
	if err != nil {
		return 0, 0, err
	}
	return a.Deg(), z.Deg(), nil
}

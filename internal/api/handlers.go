package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/orbview/groundsite/internal/earth"
	"github.com/orbview/groundsite/internal/frame"
	"github.com/orbview/groundsite/internal/observer"
	"github.com/orbview/groundsite/internal/passes"
	"github.com/orbview/groundsite/internal/tle"
)

const (
	maxPassesPerRequest  = 20
	maxHorizonHours      = 24 * 7
	maxTLEBytes          = 1 << 20
	defaultHorizonHours  = 24
	defaultMaxPasses     = 5
	passPredictionBudget = 30 * time.Second
)

// observerResponse is the JSON shape of a single observer evaluation.
type observerResponse struct {
	Time             time.Time  `json:"time"`
	GASTHours        float64    `json:"gast_hours"`
	Frame            string     `json:"frame"`
	PositionAU       [3]float64 `json:"position_au"`
	VelocityAUPerDay [3]float64 `json:"velocity_au_per_day"`
	// HorizonRotation is row-major: applying it to a celestial-frame
	// vector yields north/east/up components.
	HorizonRotation [9]float64 `json:"horizon_rotation"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// statusFor maps coordinate and shape errors to 400, everything else to 500.
func statusFor(err error) int {
	if errors.Is(err, observer.ErrInvalidCoordinate) || errors.Is(err, frame.ErrShapeMismatch) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// locationFromParams builds a Location from string parameters. lat and lon
// go through the coordinate normalizer, so hemisphere-suffix forms work.
func locationFromParams(lat, lon, elevM, xp, yp string) (*observer.Location, error) {
	latitude, err := observer.ParseLatitude(lat)
	if err != nil {
		return nil, err
	}
	longitude, err := observer.ParseLongitude(lon)
	if err != nil {
		return nil, err
	}

	cfg := observer.Config{Latitude: latitude, Longitude: longitude}
	if elevM != "" {
		cfg.ElevationM, err = strconv.ParseFloat(elevM, 64)
		if err != nil {
			return nil, fmt.Errorf("elevation_m: %w: %q", observer.ErrInvalidCoordinate, elevM)
		}
	}
	if xp != "" {
		cfg.PolarX, err = strconv.ParseFloat(xp, 64)
		if err != nil {
			return nil, fmt.Errorf("xp: %w: %q", observer.ErrInvalidCoordinate, xp)
		}
	}
	if yp != "" {
		cfg.PolarY, err = strconv.ParseFloat(yp, 64)
		if err != nil {
			return nil, fmt.Errorf("yp: %w: %q", observer.ErrInvalidCoordinate, yp)
		}
	}
	return observer.NewLocation(cfg)
}

// observerHandler evaluates a ground location at one instant and returns
// its celestial-frame state.
func observerHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		loc, err := locationFromParams(q.Get("lat"), q.Get("lon"), q.Get("elevation_m"), q.Get("xp"), q.Get("yp"))
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		at := time.Now().UTC()
		if ts := q.Get("time"); ts != "" {
			at, err = time.Parse(time.RFC3339, ts)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("time: %v (RFC 3339 expected)", err))
				return
			}
		}

		o := earth.OrientationAt(at)
		obs, err := loc.At(o)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		resp := observerResponse{
			Time:             o.Time,
			GASTHours:        o.GAST.Hour(),
			Frame:            obs.Frame.String(),
			PositionAU:       obs.Position,
			VelocityAUPerDay: obs.Velocity,
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				resp.HorizonRotation[i*3+j] = obs.Horizon.At(i, j)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// passesRequest is the JSON body for pass prediction.
type passesRequest struct {
	Latitude     string  `json:"latitude"`
	Longitude    string  `json:"longitude"`
	ElevationM   float64 `json:"elevation_m"`
	Start        string  `json:"start,omitempty"` // RFC 3339, default now
	HorizonHours float64 `json:"horizon_hours,omitempty"`
	MinAltitude  float64 `json:"min_altitude,omitempty"`
	MaxPasses    int     `json:"max_passes,omitempty"`
	TLE          string  `json:"tle"` // 3-line element sets
}

func passesHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passesRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTLEBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
			return
		}

		latitude, err := observer.ParseLatitude(req.Latitude)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		longitude, err := observer.ParseLongitude(req.Longitude)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		loc, err := observer.NewLocation(observer.Config{
			Latitude:   latitude,
			Longitude:  longitude,
			ElevationM: req.ElevationM,
		})
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		entries, err := tle.Parse(strings.NewReader(req.TLE), logger)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing TLE data: %v", err))
			return
		}
		if len(entries) == 0 {
			writeError(w, http.StatusBadRequest, "no valid TLE entries in request")
			return
		}

		start := time.Now().UTC()
		if req.Start != "" {
			start, err = time.Parse(time.RFC3339, req.Start)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("start: %v (RFC 3339 expected)", err))
				return
			}
		}

		horizon := req.HorizonHours
		if horizon <= 0 {
			horizon = defaultHorizonHours
		}
		if horizon > maxHorizonHours {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("horizon_hours %.0f exceeds maximum %d", horizon, maxHorizonHours))
			return
		}
		maxPasses := req.MaxPasses
		if maxPasses <= 0 {
			maxPasses = defaultMaxPasses
		}
		if maxPasses > maxPassesPerRequest {
			maxPasses = maxPassesPerRequest
		}

		ctx, cancel := context.WithTimeout(r.Context(), passPredictionBudget)
		defer cancel()

		results := passes.Predict(ctx, passes.Request{
			Location:     loc,
			Entries:      entries,
			Start:        start,
			HorizonHours: horizon,
			MinAltitude:  req.MinAltitude,
			MaxPasses:    maxPasses,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

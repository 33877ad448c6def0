// obsdiag prints an observer's celestial-frame state and, given a TLE file,
// the upcoming passes over that observer. Useful for eyeballing the frame
// pipeline against external tools.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/orbview/groundsite/internal/earth"
	"github.com/orbview/groundsite/internal/observer"
	"github.com/orbview/groundsite/internal/passes"
	"github.com/orbview/groundsite/internal/tle"
)

func main() {
	lat := flag.String("lat", "39.7392 N", "observer latitude (decimal degrees or hemisphere suffix)")
	lon := flag.String("lon", "104.9903 W", "observer longitude")
	elev := flag.Float64("elev", 1609, "elevation above the ellipsoid, meters")
	tleFile := flag.String("tle", "", "path to a 3-line TLE file (optional)")
	hours := flag.Float64("hours", 24, "pass prediction horizon, hours")
	minAlt := flag.Float64("min-alt", 10, "minimum pass altitude, degrees")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	latitude, err := observer.ParseLatitude(*lat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	longitude, err := observer.ParseLongitude(*lon)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}

	loc, err := observer.NewLocation(observer.Config{
		Latitude:   latitude,
		Longitude:  longitude,
		ElevationM: *elev,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	o := earth.OrientationAt(now)
	obs, err := loc.At(o)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}

	fmt.Printf("Observer: %s, elevation %.0f m\n", loc, *elev)
	fmt.Printf("Time:     %v (GAST %.6f h)\n", now.Format(time.RFC3339), o.GAST.Hour())
	fmt.Printf("Position: [%.9e %.9e %.9e] AU (%s)\n", obs.Position[0], obs.Position[1], obs.Position[2], obs.Frame)
	fmt.Printf("Velocity: [%.9e %.9e %.9e] AU/day\n", obs.Velocity[0], obs.Velocity[1], obs.Velocity[2])

	if *tleFile == "" {
		return
	}

	f, err := os.Open(*tleFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR reading TLE file:", err)
		os.Exit(1)
	}
	defer f.Close()

	entries, err := tle.Parse(f, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR parsing TLE:", err)
		os.Exit(1)
	}
	fmt.Printf("\nLoaded %d TLE entries, predicting %.0fh of passes (min altitude %.0f°)\n", len(entries), *hours, *minAlt)

	results := passes.Predict(context.Background(), passes.Request{
		Location:     loc,
		Entries:      entries,
		Start:        now,
		HorizonHours: *hours,
		MinAltitude:  *minAlt,
		MaxPasses:    10,
	})

	for _, sat := range results {
		if sat.Error != "" {
			fmt.Printf("  %s (%d): ERROR %s\n", sat.Name, sat.NORADID, sat.Error)
			continue
		}
		fmt.Printf("  %s (%d): %d passes\n", sat.Name, sat.NORADID, len(sat.Passes))
		for _, p := range sat.Passes {
			fmt.Printf("    rise %s az %5.1f°  peak %s alt %5.1f°  set %s az %5.1f°  (%.0fs)\n",
				p.Rise.Format("15:04:05"), p.RiseAzimuth,
				p.Culmination.Format("15:04:05"), p.MaxAltitude,
				p.Set.Format("15:04:05"), p.SetAzimuth,
				p.DurationSeconds)
		}
	}
}

package observer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// ParseLatitude interprets s as a latitude. Accepted forms are signed
// decimal degrees ("40.7128", "-33.9") or decimal degrees with a hemisphere
// suffix ("40.7128 N", "33.9S"). North is positive.
func ParseLatitude(s string) (unit.Angle, error) {
	a, err := parseTude(s, 'N', 'S')
	if err != nil {
		return 0, fmt.Errorf("latitude: %w: %q; give signed decimal degrees or degrees with an N/S suffix", ErrInvalidCoordinate, s)
	}
	return a, nil
}

// ParseLongitude interprets s as a longitude. Accepted forms are signed
// decimal degrees or decimal degrees with an E/W hemisphere suffix
// ("77.0647 W"). East is positive.
func ParseLongitude(s string) (unit.Angle, error) {
	a, err := parseTude(s, 'E', 'W')
	if err != nil {
		return 0, fmt.Errorf("longitude: %w: %q; give signed decimal degrees or degrees with an E/W suffix", ErrInvalidCoordinate, s)
	}
	return a, nil
}

func parseTude(s string, positive, negative byte) (unit.Angle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty")
	}

	sign := 1.0
	last := s[len(s)-1]
	switch {
	case last == positive || last == positive+('a'-'A'):
		s = strings.TrimSpace(s[:len(s)-1])
	case last == negative || last == negative+('a'-'A'):
		sign = -1.0
		s = strings.TrimSpace(s[:len(s)-1])
	}

	deg, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return unit.AngleFromDeg(sign * deg), nil
}

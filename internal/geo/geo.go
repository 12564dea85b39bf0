// Package geo provides the small geometry and calendar helpers the
// assignment engine needs: great-circle distance and business-day windows.
package geo

import (
	"math"
	"time"
)

// earthRadiusMiles is the mean Earth radius used for great-circle math.
const earthRadiusMiles = 3959.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineMiles returns the great-circle distance between two points in
// statute miles.
func HaversineMiles(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// BusinessDays returns the next n weekdays strictly after the given day,
// skipping Saturdays and Sundays. Times are truncated to midnight in from's
// location.
func BusinessDays(from time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := from
	for len(days) < n {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()))
	}
	return days
}

// SameDay reports whether two timestamps fall on the same calendar day in
// a's location.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

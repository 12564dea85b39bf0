package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMiles(t *testing.T) {
	// Austin -> Dallas is roughly 182 miles great-circle.
	austin := Point{Lat: 30.2672, Lng: -97.7431}
	dallas := Point{Lat: 32.7767, Lng: -96.7970}

	d := HaversineMiles(austin, dallas)
	assert.InDelta(t, 182, d, 5)

	assert.InDelta(t, 0, HaversineMiles(austin, austin), 0.001)

	// Symmetric.
	assert.InDelta(t, d, HaversineMiles(dallas, austin), 0.001)
}

func TestBusinessDays_SkipsWeekends(t *testing.T) {
	// 2026-01-01 is a Thursday.
	thu := time.Date(2026, 1, 1, 15, 30, 0, 0, time.UTC)

	days := BusinessDays(thu, 5)
	require.Len(t, days, 5)

	// Fri 2, Mon 5, Tue 6, Wed 7, Thu 8.
	want := []int{2, 5, 6, 7, 8}
	for i, d := range days {
		assert.Equal(t, want[i], d.Day())
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
		// Truncated to midnight.
		assert.Equal(t, 0, d.Hour())
	}
}

func TestBusinessDays_StartsTomorrow(t *testing.T) {
	// A Monday: the window must start Tuesday, not Monday itself.
	mon := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	days := BusinessDays(mon, 1)
	require.Len(t, days, 1)
	assert.Equal(t, 6, days[0].Day())
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC)
	c := time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
}

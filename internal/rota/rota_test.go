package rota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekIndexRangeAndPeriodicity(t *testing.T) {
	// Scan a few years either side of the anchor, including dates well
	// before it (negative week counts must wrap into range).
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 365*4; i++ {
		d := start.AddDate(0, 0, i)
		idx := WeekIndex(d)
		require.GreaterOrEqual(t, idx, 0, "date %s", d.Format("2006-01-02"))
		require.LessOrEqual(t, idx, 3, "date %s", d.Format("2006-01-02"))
		require.Equal(t, idx, WeekIndex(d.AddDate(0, 0, 28)),
			"4-week periodicity broken at %s", d.Format("2006-01-02"))
	}
}

func TestWeekIndexAnchorIsWeekZero(t *testing.T) {
	assert.Equal(t, 0, WeekIndex(time.Date(2025, time.February, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, WeekIndex(time.Date(2025, time.February, 24, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, WeekIndex(time.Date(2025, time.February, 16, 0, 0, 0, 0, time.UTC)))
}

func TestWeekIndexIgnoresTimeOfDay(t *testing.T) {
	d := time.Date(2025, time.March, 3, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, WeekIndex(d), WeekIndex(d.Truncate(24*time.Hour)))
}

func TestAreaForClosedDays(t *testing.T) {
	// Every Friday, Saturday and Sunday over two years has no service area.
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 365*2; i++ {
		d := start.AddDate(0, 0, i)
		switch d.Weekday() {
		case time.Friday, time.Saturday, time.Sunday:
			_, ok := AreaFor(d)
			require.False(t, ok, "expected no area on %s (%s)", d.Format("2006-01-02"), d.Weekday())
		default:
			area, ok := AreaFor(d)
			require.True(t, ok, "expected an area on %s (%s)", d.Format("2006-01-02"), d.Weekday())
			require.NotEmpty(t, area)
		}
	}
}

func TestAreaForKnownDates(t *testing.T) {
	// 2026-02-16 is a Monday in week 0 of the cycle.
	area, ok := AreaFor(time.Date(2026, time.February, 16, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "Groomsport & Bangor", area)

	// Two weeks later, week 2 Monday.
	area, ok = AreaFor(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "Ards & Bangor", area)
}

func TestAreaForAddress(t *testing.T) {
	tests := []struct {
		name     string
		postcode string
		locality string
		want     string
	}{
		{"bangor district", "BT20 5DX", "", "Bangor"},
		{"postcode without space", "bt194qt", "", "Bangor"},
		{"peninsula district", "BT22 1AB", "", "Ards"},
		{"postcode beats locality", "BT21 0AA", "Bangor", "Donaghadee"},
		{"locality fallback", "XX1 2YZ", "Groomsport, Co. Down", "Bangor"},
		{"newtownards not shadowed by ards", "", "Newtownards", "Newtownards"},
		{"locality case-insensitive", "", "MILLISLE", "Millisle"},
		{"unresolved", "EH1 1AA", "Edinburgh", AreaUnknown},
		{"empty", "", "", AreaUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AreaForAddress(tt.postcode, tt.locality))
		})
	}
}

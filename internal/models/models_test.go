package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestBooking_Duration(t *testing.T) {
	b := Booking{
		StartTime: datetime(2026, 1, 15, 10, 0),
		EndTime:   datetime(2026, 1, 15, 12, 30),
	}
	assert.Equal(t, 2*time.Hour+30*time.Minute, b.Duration())
}

func TestBooking_OverlapsWith(t *testing.T) {
	existing := Booking{
		StartTime: datetime(2026, 1, 15, 10, 0),
		EndTime:   datetime(2026, 1, 15, 14, 0),
	}

	// No overlap - before
	before := Booking{
		StartTime: datetime(2026, 1, 15, 8, 0),
		EndTime:   datetime(2026, 1, 15, 10, 0),
	}
	assert.False(t, existing.OverlapsWith(&before))

	// No overlap - adjacent after, half-open semantics
	after := Booking{
		StartTime: datetime(2026, 1, 15, 14, 0),
		EndTime:   datetime(2026, 1, 15, 16, 0),
	}
	assert.False(t, existing.OverlapsWith(&after))

	// Overlap - starts during
	during := Booking{
		StartTime: datetime(2026, 1, 15, 12, 0),
		EndTime:   datetime(2026, 1, 15, 16, 0),
	}
	assert.True(t, existing.OverlapsWith(&during))

	// Overlap - contained
	contained := Booking{
		StartTime: datetime(2026, 1, 15, 11, 0),
		EndTime:   datetime(2026, 1, 15, 13, 0),
	}
	assert.True(t, existing.OverlapsWith(&contained))

	// Overlap - covering
	covering := Booking{
		StartTime: datetime(2026, 1, 15, 9, 0),
		EndTime:   datetime(2026, 1, 15, 15, 0),
	}
	assert.True(t, existing.OverlapsWith(&covering))
}

func TestBooking_ContainsTime(t *testing.T) {
	b := Booking{
		StartTime: datetime(2026, 1, 15, 10, 0),
		EndTime:   datetime(2026, 1, 15, 14, 0),
	}

	assert.True(t, b.ContainsTime(datetime(2026, 1, 15, 10, 0)))
	assert.True(t, b.ContainsTime(datetime(2026, 1, 15, 12, 0)))
	assert.False(t, b.ContainsTime(datetime(2026, 1, 15, 14, 0)))
	assert.False(t, b.ContainsTime(datetime(2026, 1, 15, 9, 0)))
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 1.0, RoundHours(time.Hour))
	assert.Equal(t, 1.5, RoundHours(90*time.Minute))
	assert.Equal(t, 0.17, RoundHours(10*time.Minute))
	assert.Equal(t, 0.33, RoundHours(20*time.Minute))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 120.0, Round2(1.0*120))
	assert.Equal(t, 166.67, Round2(1.6667*100))
	assert.Equal(t, 0.17, Round2(1.0/6.0))
}

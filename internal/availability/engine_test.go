package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stationbook/internal/models"
)

func datetime(hour, min int) time.Time {
	return time.Date(2026, 1, 15, hour, min, 0, 0, time.UTC)
}

func booking(startHour, endHour int, status string) models.Booking {
	return models.Booking{
		StartTime: datetime(startHour, 0),
		EndTime:   datetime(endHour, 0),
		Status:    status,
	}
}

func TestHasConflict(t *testing.T) {
	existing := []models.Booking{
		booking(14, 15, models.StatusConfirmed),
	}

	t.Run("OverlappingConfirmed", func(t *testing.T) {
		assert.True(t, HasConflict(datetime(14, 30), datetime(15, 30), existing))
		assert.True(t, HasConflict(datetime(13, 30), datetime(14, 30), existing))
		assert.True(t, HasConflict(datetime(14, 0), datetime(15, 0), existing))
	})

	t.Run("AdjacentIsNotConflict", func(t *testing.T) {
		assert.False(t, HasConflict(datetime(15, 0), datetime(16, 0), existing))
		assert.False(t, HasConflict(datetime(13, 0), datetime(14, 0), existing))
	})

	t.Run("CompletedNeverBlocks", func(t *testing.T) {
		completed := []models.Booking{booking(14, 15, models.StatusCompleted)}
		assert.False(t, HasConflict(datetime(14, 30), datetime(15, 30), completed))
	})

	t.Run("EmptySchedule", func(t *testing.T) {
		assert.False(t, HasConflict(datetime(14, 0), datetime(15, 0), nil))
	})
}

func TestLiveStatus(t *testing.T) {
	t.Run("Available", func(t *testing.T) {
		bookings := []models.Booking{booking(14, 15, models.StatusConfirmed)}
		status := LiveStatus(datetime(13, 0), bookings)
		assert.True(t, status.Available)
		assert.Nil(t, status.Occupying)
	})

	t.Run("Occupied", func(t *testing.T) {
		bookings := []models.Booking{booking(14, 16, models.StatusConfirmed)}
		status := LiveStatus(datetime(14, 30), bookings)
		assert.False(t, status.Available)
		assert.NotNil(t, status.Occupying)
		assert.Equal(t, 90, status.RemainingMinutes)
	})

	t.Run("EndBoundaryIsFree", func(t *testing.T) {
		bookings := []models.Booking{booking(14, 16, models.StatusConfirmed)}
		status := LiveStatus(datetime(16, 0), bookings)
		assert.True(t, status.Available)
	})

	t.Run("CompletedFreesImmediately", func(t *testing.T) {
		// Early completion must free the station even though now still
		// falls inside the original interval.
		bookings := []models.Booking{booking(14, 16, models.StatusCompleted)}
		status := LiveStatus(datetime(14, 30), bookings)
		assert.True(t, status.Available)
	})

	t.Run("EarliestStartWinsOnDirtyData", func(t *testing.T) {
		bookings := []models.Booking{
			booking(14, 16, models.StatusConfirmed),
			booking(13, 15, models.StatusConfirmed),
		}
		status := LiveStatus(datetime(14, 30), bookings)
		assert.False(t, status.Available)
		assert.Equal(t, datetime(13, 0), status.Occupying.StartTime)
	})
}

func TestWindowFree(t *testing.T) {
	bookings := []models.Booking{booking(14, 15, models.StatusConfirmed)}
	assert.True(t, WindowFree(datetime(15, 0), datetime(16, 0), bookings))
	assert.False(t, WindowFree(datetime(14, 30), datetime(15, 30), bookings))
}

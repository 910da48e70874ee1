package export

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationbook/internal/models"
)

// fakeWriter records what the report writes into it.
type fakeWriter struct {
	sheet  string
	header []string
	rows   [][]interface{}
	rowErr error
}

func (w *fakeWriter) AddSheet(name string) error {
	w.sheet = name
	return nil
}

func (w *fakeWriter) WriteHeader(columns []string) error {
	w.header = columns
	return nil
}

func (w *fakeWriter) WriteRow(values []interface{}) error {
	if w.rowErr != nil {
		return w.rowErr
	}
	w.rows = append(w.rows, values)
	return nil
}

func (w *fakeWriter) Save(out io.Writer) error { return nil }

func sampleBookings() []models.Booking {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	return []models.Booking{
		{
			CustomerName:  "Alice",
			Contact:       "555-0101",
			StationName:   "PC-01",
			BookingDate:   date,
			StartTime:     date.Add(14 * time.Hour),
			EndTime:       date.Add(16 * time.Hour),
			DurationHours: 2,
			TotalPrice:    240,
			Status:        models.StatusConfirmed,
			BookingCode:   "code-1",
			CreatedAt:     time.Date(2026, 1, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			CustomerName: "Bob",
			StationName:  "PS5-01",
			BookingDate:  date,
			StartTime:    date.Add(18 * time.Hour),
			EndTime:      date.Add(19 * time.Hour),
			Status:       models.StatusCompleted,
			BookingCode:  "code-2",
		},
	}
}

func TestWriteBookingsReport(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, WriteBookingsReport(w, sampleBookings()))

	assert.Equal(t, "Bookings", w.sheet)
	assert.Equal(t, reportColumns, w.header)
	require.Len(t, w.rows, 2)

	first := w.rows[0]
	require.Len(t, first, len(reportColumns))
	assert.Equal(t, "code-1", first[0])
	assert.Equal(t, "Alice", first[1])
	assert.Equal(t, "2026-01-15", first[4])
	assert.Equal(t, "14:00", first[5])
	assert.Equal(t, "16:00", first[6])
	assert.Equal(t, 240.0, first[8])
	assert.Equal(t, "2026-01-14 09:30:00", first[10])

	assert.Equal(t, models.StatusCompleted, w.rows[1][9])
}

func TestWriteBookingsReport_Empty(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, WriteBookingsReport(w, nil))
	assert.Equal(t, reportColumns, w.header)
	assert.Empty(t, w.rows)
}

func TestWriteBookingsReport_RowError(t *testing.T) {
	w := &fakeWriter{rowErr: errors.New("disk full")}
	err := WriteBookingsReport(w, sampleBookings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code-1")
}

func TestReportFilename(t *testing.T) {
	name := ReportFilename(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "bookings_2026-08-30.xlsx", name)
}

// Package export builds downloadable Excel reports of the booking history.
package export

import (
	"fmt"
	"time"

	"stationbook/internal/models"
)

var reportColumns = []string{
	"Booking Code", "Customer", "Contact", "Station", "Date",
	"Start", "End", "Hours", "Price", "Status", "Created At",
}

// WriteBookingsReport renders bookings into a single-sheet report.
func WriteBookingsReport(w ExcelWriter, bookings []models.Booking) error {
	if err := w.AddSheet("Bookings"); err != nil {
		return err
	}
	if err := w.WriteHeader(reportColumns); err != nil {
		return err
	}

	for i := range bookings {
		b := &bookings[i]
		row := []interface{}{
			b.BookingCode,
			b.CustomerName,
			b.Contact,
			b.StationName,
			b.DateString(),
			b.StartTime.Format(models.TimeFormat),
			b.EndTime.Format(models.TimeFormat),
			b.DurationHours,
			b.TotalPrice,
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.WriteRow(row); err != nil {
			return fmt.Errorf("write booking %s: %w", b.BookingCode, err)
		}
	}
	return nil
}

// ReportFilename names the download after the generation date, like
// "bookings_2026-08-30.xlsx".
func ReportFilename(t time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", t.Format("2006-01-02"))
}

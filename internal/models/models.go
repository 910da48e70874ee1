package models

import (
	"math"
	"time"
)

// Booking status lifecycle. A booking is created as confirmed and can only
// move to completed.
const (
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
)

// DateFormat and TimeFormat are the wire formats for booking dates and
// times of day.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// Station represents a bookable computer station.
type Station struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Specs       string    `json:"specs,omitempty"`
	RatePerHour float64   `json:"rate_per_hour"`
	CreatedAt   time.Time `json:"created_at"`
}

// Booking represents a reservation of one station for a contiguous time
// interval on one calendar date.
type Booking struct {
	ID            int64     `json:"id"`
	CustomerName  string    `json:"customer_name"`
	Contact       string    `json:"contact,omitempty"`
	StationID     int64     `json:"station_id"`
	StationName   string    `json:"station_name,omitempty"`
	BookingDate   time.Time `json:"-"`
	StartTime     time.Time `json:"-"`
	EndTime       time.Time `json:"-"`
	DurationHours float64   `json:"duration_hours"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	BookingCode   string    `json:"booking_code"`
	CreatedAt     time.Time `json:"created_at"`
}

// Duration returns the booked interval length.
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// OverlapsWith reports whether this booking overlaps another.
// Uses half-open interval [start, end) semantics - end boundary is
// exclusive, so a booking ending at 10:00 does not overlap one starting
// at 10:00.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return b.StartTime.Before(other.EndTime) && other.StartTime.Before(b.EndTime)
}

// ContainsTime reports whether t falls within [StartTime, EndTime).
func (b *Booking) ContainsTime(t time.Time) bool {
	return !t.Before(b.StartTime) && t.Before(b.EndTime)
}

// DateString returns the booking date in wire format.
func (b *Booking) DateString() string {
	return b.BookingDate.Format(DateFormat)
}

// RoundHours rounds a duration to fractional hours with 2 decimal places.
func RoundHours(d time.Duration) float64 {
	return Round2(d.Hours())
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stationbook/internal/models"
)

// Schedule lists the bookings of one day.
type Schedule interface {
	GetBookingsByDate(ctx context.Context, date time.Time) ([]models.Booking, error)
}

// Sender delivers a reminder text to staff.
type Sender interface {
	SendText(ctx context.Context, text string) error
}

// SessionReminder pings staff shortly before each confirmed session starts
// so the station can be prepared. Each booking is reminded at most once.
type SessionReminder struct {
	schedule Schedule
	sender   Sender
	lead     time.Duration
	logger   *zerolog.Logger

	sent     map[int64]struct{}
	sentDate string
}

// NewSessionReminder builds the reminder. A non-positive lead defaults to
// 15 minutes.
func NewSessionReminder(schedule Schedule, sender Sender, lead time.Duration, logger *zerolog.Logger) *SessionReminder {
	if lead <= 0 {
		lead = 15 * time.Minute
	}
	return &SessionReminder{
		schedule: schedule,
		sender:   sender,
		lead:     lead,
		logger:   logger,
		sent:     make(map[int64]struct{}),
	}
}

// Start checks the schedule once a minute until ctx is cancelled.
func (r *SessionReminder) Start(ctx context.Context) {
	r.logger.Info().Dur("lead", r.lead).Msg("Session reminders started")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.remind(ctx, time.Now())
		}
	}
}

func (r *SessionReminder) remind(ctx context.Context, now time.Time) {
	// Stored booking times carry no zone; compare in the same frame.
	now = time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if date := day.Format(models.DateFormat); date != r.sentDate {
		r.sent = make(map[int64]struct{})
		r.sentDate = date
	}

	bookings, err := r.schedule.GetBookingsByDate(ctx, day)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to load bookings for reminders")
		return
	}

	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.StatusConfirmed {
			continue
		}
		if _, done := r.sent[b.ID]; done {
			continue
		}
		// Remind inside the lead window only; sessions already running
		// have staff at the desk anyway.
		if b.StartTime.After(now.Add(r.lead)) || !b.StartTime.After(now) {
			continue
		}

		if err := r.sender.SendText(ctx, reminderText(b)); err != nil {
			r.logger.Error().Err(err).Str("booking_code", b.BookingCode).Msg("Failed to send session reminder")
			continue
		}
		r.sent[b.ID] = struct{}{}
	}
}

func reminderText(b *models.Booking) string {
	return fmt.Sprintf(
		"Upcoming session %s\nStation: %s\nCustomer: %s\nStarts: %s",
		b.BookingCode,
		b.StationName,
		b.CustomerName,
		b.StartTime.Format(models.TimeFormat),
	)
}

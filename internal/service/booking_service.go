package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stationbook/internal/availability"
	"stationbook/internal/database"
	"stationbook/internal/events"
	"stationbook/internal/metrics"
	"stationbook/internal/models"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	GetStationByID(ctx context.Context, id int64) (*models.Station, error)
	ListStations(ctx context.Context) ([]models.Station, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	CompleteBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	GetBookingsByDate(ctx context.Context, date time.Time) ([]models.Booking, error)
}

// EventBus publishes domain events.
type EventBus interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MirrorQueue accepts best-effort replication work for the spreadsheet.
type MirrorQueue interface {
	EnqueueRecord(ctx context.Context, booking *models.Booking) error
	EnqueueMarkCompleted(ctx context.Context, bookingCode string) error
}

// Notifier tells staff about new bookings, best-effort.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *models.Booking) error
}

// ValidationError rejects a malformed booking request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErr(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// CreateRequest carries the raw fields of a new booking request.
type CreateRequest struct {
	CustomerName string
	Contact      string
	StationID    int64
	BookingDate  string // YYYY-MM-DD
	StartTime    string // HH:MM
	EndTime      string // HH:MM
}

// Window is a candidate interval used to annotate station availability.
type Window struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// StationStatus is one station annotated with live occupancy and, when a
// window was requested, whether that window is free.
type StationStatus struct {
	Station         models.Station
	Live            availability.Status
	WindowAvailable *bool
}

// BookingService owns the booking lifecycle: validation, pricing, the
// conflict gate, and the best-effort side effects.
type BookingService struct {
	repo     Repository
	bus      EventBus
	mirror   MirrorQueue
	notifier Notifier
	logger   *zerolog.Logger
}

// NewBookingService wires the service. The notifier may be nil.
func NewBookingService(repo Repository, bus EventBus, mirror MirrorQueue, notifier Notifier, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		bus:      bus,
		mirror:   mirror,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateBooking validates the request, prices it against the station rate
// and persists it behind the conflict gate. Mirror and notification
// failures are logged and never fail the booking.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	if req.CustomerName == "" {
		return nil, validationErr("customer_name is required")
	}
	if req.StationID <= 0 {
		return nil, validationErr("station_id is required")
	}

	date, start, end, err := parseInterval(req.BookingDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	station, err := s.repo.GetStationByID(ctx, req.StationID)
	if errors.Is(err, database.ErrStationNotFound) {
		return nil, validationErr("unknown station %d", req.StationID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve station: %w", err)
	}

	hours := models.RoundHours(end.Sub(start))
	booking := &models.Booking{
		CustomerName:  req.CustomerName,
		Contact:       req.Contact,
		StationID:     station.ID,
		StationName:   station.Name,
		BookingDate:   date,
		StartTime:     start,
		EndTime:       end,
		DurationHours: hours,
		TotalPrice:    models.Round2(hours * station.RatePerHour),
		Status:        models.StatusConfirmed,
		BookingCode:   uuid.NewString(),
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, database.ErrBookingConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("booking_code", booking.BookingCode).
		Int64("station_id", booking.StationID).
		Str("date", booking.DateString()).
		Msg("Booking created")

	if err := s.bus.PublishJSON(events.TypeBookingCreated, booking); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish booking.created")
	}
	if err := s.mirror.EnqueueRecord(ctx, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_code", booking.BookingCode).Msg("Failed to enqueue mirror record")
	}
	if s.notifier != nil {
		if err := s.notifier.BookingCreated(ctx, booking); err != nil {
			s.logger.Error().Err(err).Msg("Failed to notify staff about booking")
		}
	}

	return booking, nil
}

// CompleteBooking transitions confirmed -> completed.
func (s *BookingService) CompleteBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.repo.CompleteBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCompleted()
	s.logger.Info().Int64("booking_id", id).Str("booking_code", booking.BookingCode).Msg("Booking completed")

	if err := s.bus.PublishJSON(events.TypeBookingCompleted, booking); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish booking.completed")
	}
	if err := s.mirror.EnqueueMarkCompleted(ctx, booking.BookingCode); err != nil {
		s.logger.Error().Err(err).Str("booking_code", booking.BookingCode).Msg("Failed to enqueue mirror status update")
	}

	return booking, nil
}

// ListBookings returns the newest-first booking history with station names.
func (s *BookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// StationStatuses returns every station with its live occupancy at now and,
// when a window is given, whether that window is still free.
func (s *BookingService) StationStatuses(ctx context.Context, now time.Time, window *Window) ([]StationStatus, error) {
	stations, err := s.repo.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	// Stored booking times carry no zone, so the wall clock is mapped into
	// the same frame before any comparison.
	now = naiveClock(now)
	today := truncateToDay(now)
	byStation, err := s.bookingsByStation(ctx, today)
	if err != nil {
		return nil, err
	}

	var windowByStation map[int64][]models.Booking
	if window != nil {
		if truncateToDay(window.Date).Equal(today) {
			windowByStation = byStation
		} else {
			windowByStation, err = s.bookingsByStation(ctx, window.Date)
			if err != nil {
				return nil, err
			}
		}
	}

	statuses := make([]StationStatus, 0, len(stations))
	for _, st := range stations {
		status := StationStatus{
			Station: st,
			Live:    availability.LiveStatus(now, byStation[st.ID]),
		}
		if window != nil {
			free := availability.WindowFree(window.Start, window.End, windowByStation[st.ID])
			status.WindowAvailable = &free
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// ParseWindow validates the optional availability-window query parameters.
func ParseWindow(dateStr, startStr, endStr string) (*Window, error) {
	if dateStr == "" && startStr == "" && endStr == "" {
		return nil, nil
	}
	if dateStr == "" || startStr == "" || endStr == "" {
		return nil, validationErr("date, start_time and end_time must be given together")
	}

	date, start, end, err := parseInterval(dateStr, startStr, endStr)
	if err != nil {
		return nil, err
	}
	return &Window{Date: date, Start: start, End: end}, nil
}

func (s *BookingService) bookingsByStation(ctx context.Context, date time.Time) (map[int64][]models.Booking, error) {
	bookings, err := s.repo.GetBookingsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	grouped := make(map[int64][]models.Booking)
	for _, b := range bookings {
		grouped[b.StationID] = append(grouped[b.StationID], b)
	}
	return grouped, nil
}

// parseInterval turns the wire date and times into concrete timestamps on
// that date and checks the interval is well-formed. Crossing midnight is
// unsupported: both times belong to the same calendar date and the end
// must be strictly after the start.
func parseInterval(dateStr, startStr, endStr string) (date, start, end time.Time, err error) {
	if dateStr == "" {
		return date, start, end, validationErr("booking_date is required")
	}
	if startStr == "" || endStr == "" {
		return date, start, end, validationErr("start_time and end_time are required")
	}

	date, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return date, start, end, validationErr("invalid booking_date %q; expected YYYY-MM-DD", dateStr)
	}
	startOfDay, err := time.Parse(models.TimeFormat, startStr)
	if err != nil {
		return date, start, end, validationErr("invalid start_time %q; expected HH:MM", startStr)
	}
	endOfDay, err := time.Parse(models.TimeFormat, endStr)
	if err != nil {
		return date, start, end, validationErr("invalid end_time %q; expected HH:MM", endStr)
	}

	start = date.Add(time.Duration(startOfDay.Hour())*time.Hour + time.Duration(startOfDay.Minute())*time.Minute)
	end = date.Add(time.Duration(endOfDay.Hour())*time.Hour + time.Duration(endOfDay.Minute())*time.Minute)

	if !end.After(start) {
		return date, start, end, validationErr("end_time must be after start_time")
	}
	return date, start, end, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// naiveClock reinterprets the wall-clock fields of t in the zone-less UTC
// frame that parsed booking times live in.
func naiveClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

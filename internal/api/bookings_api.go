package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stationbook/internal/database"
	"stationbook/internal/export"
	"stationbook/internal/metrics"
	"stationbook/internal/models"
	"stationbook/internal/service"
)

// CreateBookingRequest is the request body for POST /api/bookings.
type CreateBookingRequest struct {
	CustomerName string `json:"customer_name"`
	Contact      string `json:"contact,omitempty"`
	StationID    int64  `json:"station_id"`
	BookingDate  string `json:"booking_date"` // Format: YYYY-MM-DD
	StartTime    string `json:"start_time"`   // Format: HH:MM
	EndTime      string `json:"end_time"`     // Format: HH:MM
}

// BookingResponse is the wire form of a booking.
type BookingResponse struct {
	ID            int64   `json:"id"`
	CustomerName  string  `json:"customer_name"`
	Contact       string  `json:"contact,omitempty"`
	StationID     int64   `json:"station_id"`
	StationName   string  `json:"station_name,omitempty"`
	BookingDate   string  `json:"booking_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DurationHours float64 `json:"duration_hours"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	BookingCode   string  `json:"booking_code"`
	CreatedAt     string  `json:"created_at"`
}

func bookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		CustomerName:  b.CustomerName,
		Contact:       b.Contact,
		StationID:     b.StationID,
		StationName:   b.StationName,
		BookingDate:   b.DateString(),
		StartTime:     b.StartTime.Format(models.TimeFormat),
		EndTime:       b.EndTime.Format(models.TimeFormat),
		DurationHours: b.DurationHours,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		BookingCode:   b.BookingCode,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

// handleBookings lists the booking history or creates a booking.
// GET /api/bookings | POST /api/bookings
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")

	bookings, err := s.svc.ListBookings(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list bookings")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, bookingResponse(&bookings[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": responses})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")

	var req CreateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.svc.CreateBooking(r.Context(), service.CreateRequest{
		CustomerName: req.CustomerName,
		Contact:      req.Contact,
		StationID:    req.StationID,
		BookingDate:  req.BookingDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	s.cache.Invalidate(r.Context(), liveStatusCacheKey)
	writeJSON(w, http.StatusCreated, bookingResponse(booking))
}

// handleBookingSubroutes dispatches /api/bookings/export and
// /api/bookings/{id}/complete.
func (s *HTTPServer) handleBookingSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/bookings/")

	if rest == "export" {
		s.exportBookings(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	if len(parts) == 2 && parts[1] == "complete" {
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid booking id")
			return
		}
		s.completeBooking(w, r, id)
		return
	}

	writeError(w, http.StatusNotFound, "not found")
}

func (s *HTTPServer) completeBooking(w http.ResponseWriter, r *http.Request, id int64) {
	metrics.IncHTTP("bookings_complete")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	booking, err := s.svc.CompleteBooking(r.Context(), id)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	s.cache.Invalidate(r.Context(), liveStatusCacheKey)
	writeJSON(w, http.StatusOK, bookingResponse(booking))
}

// exportBookings streams the whole history as an xlsx download.
// GET /api/bookings/export
func (s *HTTPServer) exportBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.svc.ListBookings(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list bookings for export")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writer := export.NewExcelizeWriter()
	if err := export.WriteBookingsReport(writer, bookings); err != nil {
		s.logger.Error().Err(err).Msg("Failed to build bookings report")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer
	if err := writer.Save(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render bookings report")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	filename := export.ReportFilename(time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrBookingConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Booking operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Package api exposes the booking service over HTTP. Handlers are thin:
// they parse and render, while the conflict and status rules live in the
// service and availability packages.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"stationbook/internal/cache"
	"stationbook/internal/models"
	"stationbook/internal/service"
)

// BookingService is the core surface the handlers call.
type BookingService interface {
	CreateBooking(ctx context.Context, req service.CreateRequest) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	StationStatuses(ctx context.Context, now time.Time, window *service.Window) ([]service.StationStatus, error)
}

// HTTPServer holds handler dependencies.
type HTTPServer struct {
	svc    BookingService
	cache  *cache.StatusCache
	logger *zerolog.Logger
}

// NewHTTPServer creates the API server. The cache may be nil.
func NewHTTPServer(svc BookingService, statusCache *cache.StatusCache, logger *zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		svc:    svc,
		cache:  statusCache,
		logger: logger,
	}
}

// Routes builds the HTTP mux for the public API.
func (s *HTTPServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stations", s.handleStations)
	mux.HandleFunc("/api/bookings", s.handleBookings)
	mux.HandleFunc("/api/bookings/", s.handleBookingSubroutes)
	return s.withRequestLog(mux)
}

func (s *HTTPServer) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stationbook",
			Name:      "booking_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stationbook",
			Name:      "booking_conflict_total",
			Help:      "Count of booking attempts rejected for an overlapping interval.",
		},
	)

	bookingCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stationbook",
			Name:      "booking_completed_total",
			Help:      "Count of bookings marked completed.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stationbook",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	mirrorSync = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stationbook",
			Name:      "mirror_sync_total",
			Help:      "Count of spreadsheet mirror sync attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConflict, bookingCompleted, httpRequests, mirrorSync)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingConflict() {
	bookingConflict.Inc()
}

func IncBookingCompleted() {
	bookingCompleted.Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncMirrorSync(result string) {
	mirrorSync.WithLabelValues(result).Inc()
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"stationbook/internal/metrics"
	"stationbook/internal/service"
)

const liveStatusCacheKey = "stations:live"

// OccupancyResponse describes the booking currently holding a station.
type OccupancyResponse struct {
	BookingCode  string `json:"booking_code"`
	CustomerName string `json:"customer_name"`
	EndTime      string `json:"end_time"`
}

// StationResponse is one station annotated with availability.
type StationResponse struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Specs            string             `json:"specs,omitempty"`
	RatePerHour      float64            `json:"rate_per_hour"`
	Status           string             `json:"status"` // "available" or "occupied"
	OccupiedBy       *OccupancyResponse `json:"occupied_by,omitempty"`
	RemainingMinutes int                `json:"remaining_minutes"`
	WindowAvailable  *bool              `json:"window_available,omitempty"`
}

// handleStations lists stations with live occupancy. With date, start_time
// and end_time query parameters each station is also annotated with
// whether that window is free.
// GET /api/stations?date=YYYY-MM-DD&start_time=HH:MM&end_time=HH:MM
func (s *HTTPServer) handleStations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stations")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	window, err := service.ParseWindow(query.Get("date"), query.Get("start_time"), query.Get("end_time"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The live listing is what clients poll every few seconds, so it is
	// the one response worth caching. Window queries bypass the cache.
	useCache := window == nil
	if useCache {
		if data, ok := s.cache.Get(r.Context(), liveStatusCacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		}
	}

	statuses, err := s.svc.StationStatuses(r.Context(), time.Now(), window)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute station statuses")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	stations := make([]StationResponse, 0, len(statuses))
	for _, st := range statuses {
		stations = append(stations, stationResponse(st))
	}
	response := map[string]interface{}{"stations": stations}

	if useCache {
		if data, err := json.Marshal(response); err == nil {
			s.cache.Set(r.Context(), liveStatusCacheKey, data)
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func stationResponse(st service.StationStatus) StationResponse {
	resp := StationResponse{
		ID:              st.Station.ID,
		Name:            st.Station.Name,
		Specs:           st.Station.Specs,
		RatePerHour:     st.Station.RatePerHour,
		Status:          "available",
		WindowAvailable: st.WindowAvailable,
	}
	if !st.Live.Available {
		resp.Status = "occupied"
		resp.RemainingMinutes = st.Live.RemainingMinutes
		resp.OccupiedBy = &OccupancyResponse{
			BookingCode:  st.Live.Occupying.BookingCode,
			CustomerName: st.Live.Occupying.CustomerName,
			EndTime:      st.Live.Occupying.EndTime.Format("15:04"),
		}
	}
	return resp
}

package sheets

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stationbook/internal/models"
)

func TestNewSheetsService_Unconfigured(t *testing.T) {
	logger := zerolog.New(io.Discard)
	s, err := NewSheetsService(context.Background(), "", "", "Bookings", &logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Enabled() {
		t.Error("unconfigured service must be disabled")
	}

	// A disabled mirror accepts work and does nothing.
	b := &models.Booking{BookingCode: "code-1"}
	if err := s.Record(context.Background(), b); err != nil {
		t.Errorf("Record on disabled service: %v", err)
	}
	if err := s.MarkCompleted(context.Background(), "code-1"); err != nil {
		t.Errorf("MarkCompleted on disabled service: %v", err)
	}
}

func TestBookingRowValues(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	b := &models.Booking{
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
	}

	row := bookingRowValues(b)
	if len(row) != len(headerRow) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(headerRow))
	}
	if row[0] != "code-1" {
		t.Errorf("code cell = %v", row[0])
	}
	if row[4] != "2026-01-15" {
		t.Errorf("date cell = %v", row[4])
	}
	if row[5] != "14:00" || row[6] != "16:00" {
		t.Errorf("time cells = %v, %v", row[5], row[6])
	}
	if row[9] != models.StatusConfirmed {
		t.Errorf("status cell = %v", row[9])
	}
}

func TestRowFromRange(t *testing.T) {
	tests := []struct {
		in   string
		row  int
		ok   bool
	}{
		{"Bookings!A5:J5", 5, true},
		{"Bookings!A12", 12, true},
		{"'My Sheet'!AB101:AJ101", 101, true},
		{"A5:J5", 0, false},
		{"Bookings!A0", 0, false},
		{"Bookings!ABC", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		row, ok := rowFromRange(tt.in)
		if row != tt.row || ok != tt.ok {
			t.Errorf("rowFromRange(%q) = (%d, %v), want (%d, %v)", tt.in, row, ok, tt.row, tt.ok)
		}
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int
		name string
	}{
		{1, "A"},
		{10, "J"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{703, "AAA"},
	}

	for _, tt := range tests {
		if got := columnName(tt.col); got != tt.name {
			t.Errorf("columnName(%d) = %q, want %q", tt.col, got, tt.name)
		}
	}
}

func TestRowCache(t *testing.T) {
	logger := zerolog.New(io.Discard)
	s, err := NewSheetsService(context.Background(), "", "", "Bookings", &logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := s.getCachedRow("code-1"); ok {
		t.Error("empty cache must miss")
	}

	s.setCachedRow("code-1", 5)
	if row, ok := s.getCachedRow("code-1"); !ok || row != 5 {
		t.Errorf("cached row = (%d, %v), want (5, true)", row, ok)
	}

	s.deleteCacheRow("code-1")
	if _, ok := s.getCachedRow("code-1"); ok {
		t.Error("deleted entry must miss")
	}

	s.setCachedRow("code-1", 5)
	s.setCachedRow("code-2", 6)
	s.ClearCache()
	if _, ok := s.getCachedRow("code-2"); ok {
		t.Error("cleared cache must miss")
	}
}

// Package sheets mirrors booking records into a Google Sheets spreadsheet.
// The mirror is best-effort and never authoritative: every failure is
// logged and swallowed, and a missing configuration turns the whole
// service into a no-op.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"stationbook/internal/models"
)

var headerRow = []interface{}{
	"Booking Code", "Customer", "Contact", "Station", "Date",
	"Start", "End", "Hours", "Price", "Status",
}

// Column of the status cell, 1-based (see headerRow).
const statusColumn = 10

// SheetsService writes booking rows to one sheet of one spreadsheet.
// Row positions are cached by booking code so completion updates avoid a
// full column scan on the happy path.
type SheetsService struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *zerolog.Logger

	mu          sync.Mutex
	rowCache    map[string]int
	headerReady bool
}

// NewSheetsService builds the mirror client from a service-account
// credentials file. An empty spreadsheet id or credentials path returns a
// disabled service and no error.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *zerolog.Logger) (*SheetsService, error) {
	s := &SheetsService{
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
		rowCache:      make(map[string]int),
	}

	if credentialsFile == "" || spreadsheetID == "" {
		logger.Info().Msg("Sheets mirror is not configured, running without it")
		return s, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	s.svc = svc
	logger.Info().Str("spreadsheet", spreadsheetID).Str("sheet", sheetName).Msg("Sheets mirror enabled")
	return s, nil
}

// Enabled reports whether the mirror is configured.
func (s *SheetsService) Enabled() bool {
	return s.svc != nil
}

// Record appends one denormalized booking row.
func (s *SheetsService) Record(ctx context.Context, booking *models.Booking) error {
	if !s.Enabled() {
		return nil
	}

	if err := s.ensureHeader(ctx); err != nil {
		return err
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{bookingRowValues(booking)}}
	resp, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append booking row: %w", err)
	}

	if resp.Updates != nil {
		if row, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(booking.BookingCode, row)
		}
	}
	return nil
}

// MarkCompleted updates the status cell of the row matching the booking
// code. The cached row position is tried first; a scan of the code column
// is the degraded path. A missing row is not an error, the mirror may
// simply have never seen the booking.
func (s *SheetsService) MarkCompleted(ctx context.Context, bookingCode string) error {
	if !s.Enabled() {
		return nil
	}

	row, ok := s.getCachedRow(bookingCode)
	if !ok {
		var err error
		row, ok, err = s.findRowByCode(ctx, bookingCode)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn().Str("booking_code", bookingCode).Msg("Booking not found in mirror sheet")
			return nil
		}
		s.setCachedRow(bookingCode, row)
	}

	cell := fmt.Sprintf("%s!%s%d", s.sheetName, columnName(statusColumn), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{models.StatusCompleted}}}
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, cell, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		s.deleteCacheRow(bookingCode)
		return fmt.Errorf("update status cell: %w", err)
	}
	return nil
}

func (s *SheetsService) ensureHeader(ctx context.Context) error {
	s.mu.Lock()
	ready := s.headerReady
	s.mu.Unlock()
	if ready {
		return nil
	}

	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.sheetName+"!A1:A1").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	if len(resp.Values) == 0 {
		vr := &sheets.ValueRange{Values: [][]interface{}{headerRow}}
		_, err = s.svc.Spreadsheets.Values.
			Update(s.spreadsheetID, s.sheetName+"!A1", vr).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	s.mu.Lock()
	s.headerReady = true
	s.mu.Unlock()
	return nil
}

// findRowByCode scans the booking-code column for an exact match.
func (s *SheetsService) findRowByCode(ctx context.Context, bookingCode string) (int, bool, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.sheetName+"!A:A").
		Context(ctx).
		Do()
	if err != nil {
		return 0, false, fmt.Errorf("scan code column: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if code, ok := row[0].(string); ok && code == bookingCode {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

func bookingRowValues(b *models.Booking) []interface{} {
	return []interface{}{
		b.BookingCode,
		b.CustomerName,
		b.Contact,
		b.StationName,
		b.BookingDate.Format(models.DateFormat),
		b.StartTime.Format(models.TimeFormat),
		b.EndTime.Format(models.TimeFormat),
		b.DurationHours,
		b.TotalPrice,
		b.Status,
	}
}

// rowFromRange extracts the row number from a range like "Bookings!A5:J5".
func rowFromRange(updatedRange string) (int, bool) {
	idx := strings.Index(updatedRange, "!")
	if idx < 0 {
		return 0, false
	}
	ref := updatedRange[idx+1:]
	if colon := strings.Index(ref, ":"); colon >= 0 {
		ref = ref[:colon]
	}
	digits := strings.TrimLeftFunc(ref, func(r rune) bool {
		return r >= 'A' && r <= 'Z'
	})
	row, err := strconv.Atoi(digits)
	if err != nil || row <= 0 {
		return 0, false
	}
	return row, true
}

// columnName converts a 1-based column index to its A1 letter form.
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

func (s *SheetsService) getCachedRow(bookingCode string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rowCache[bookingCode]
	return row, ok
}

func (s *SheetsService) setCachedRow(bookingCode string, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache[bookingCode] = row
}

func (s *SheetsService) deleteCacheRow(bookingCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rowCache, bookingCode)
}

// ClearCache drops all cached row positions.
func (s *SheetsService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache = make(map[string]int)
}

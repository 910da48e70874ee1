package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stationbook/internal/models"
)

const bookingColumns = `id, customer_name, contact, station_id, booking_date,
	start_time, end_time, duration_hours, total_price, status, booking_code, created_at`

// CreateBooking persists a booking if no confirmed booking overlaps its
// interval for the same station and date. The overlap check and the insert
// run in one transaction; with _txlock=immediate the whole sequence is
// serialized, so concurrent overlapping creates cannot both pass the check.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var conflicts int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE station_id = ? AND booking_date = ? AND status = ?
		  AND start_time < ? AND end_time > ?`,
		b.StationID, b.DateString(), models.StatusConfirmed, b.EndTime, b.StartTime,
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if conflicts > 0 {
		return ErrBookingConflict
	}

	b.CreatedAt = time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (
			customer_name, contact, station_id, booking_date, start_time, end_time,
			duration_hours, total_price, status, booking_code, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.CustomerName, b.Contact, b.StationID, b.DateString(), b.StartTime, b.EndTime,
		b.DurationHours, b.TotalPrice, b.Status, b.BookingCode, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	b.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CompleteBooking transitions a confirmed booking to completed and returns
// the updated row. Only confirmed -> completed is permitted.
func (db *DB) CompleteBooking(ctx context.Context, id int64) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	if status != models.StatusConfirmed {
		return nil, ErrAlreadyCompleted
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`,
		models.StatusCompleted, id,
	); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	booking, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return booking, nil
}

// GetBooking returns one booking by id or ErrBookingNotFound.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

const joinedBookingColumns = `b.id, b.customer_name, b.contact, b.station_id, b.booking_date,
	b.start_time, b.end_time, b.duration_hours, b.total_price,
	b.status, b.booking_code, b.created_at, s.name`

// ListBookings returns all bookings joined with station names, newest first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+joinedBookingColumns+`
		FROM bookings b
		JOIN stations s ON s.id = b.station_id
		ORDER BY b.booking_date DESC, b.start_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJoinedBookings(rows)
}

// GetBookingsByDate returns all bookings for a date across stations,
// joined with station names.
func (db *DB) GetBookingsByDate(ctx context.Context, date time.Time) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+joinedBookingColumns+`
		FROM bookings b
		JOIN stations s ON s.id = b.station_id
		WHERE b.booking_date = ?
		ORDER BY b.station_id, b.start_time`,
		date.Format(models.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJoinedBookings(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var contact sql.NullString
	var date string
	err := row.Scan(
		&b.ID, &b.CustomerName, &contact, &b.StationID, &date,
		&b.StartTime, &b.EndTime, &b.DurationHours, &b.TotalPrice,
		&b.Status, &b.BookingCode, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Contact = contact.String
	if b.BookingDate, err = time.Parse(models.DateFormat, date); err != nil {
		return nil, fmt.Errorf("parse booking date %q: %w", date, err)
	}
	return &b, nil
}

func scanJoinedBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		var contact sql.NullString
		var date string
		if err := rows.Scan(
			&b.ID, &b.CustomerName, &contact, &b.StationID, &date,
			&b.StartTime, &b.EndTime, &b.DurationHours, &b.TotalPrice,
			&b.Status, &b.BookingCode, &b.CreatedAt, &b.StationName,
		); err != nil {
			return nil, err
		}
		b.Contact = contact.String
		var err error
		if b.BookingDate, err = time.Parse(models.DateFormat, date); err != nil {
			return nil, fmt.Errorf("parse booking date %q: %w", date, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

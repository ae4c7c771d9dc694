package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookingapi/internal/database"
	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
)

const bookingColumns = `id, property_id, user_id, start_date, end_date, status, details, created_at, updated_at`

type BookingRepository struct {
	db      *sql.DB
	dialect database.Dialect
	logger  logger.Logger
}

func NewBookingRepository(db *sql.DB, dialect database.Dialect, logger logger.Logger) domain.BookingRepository {
	return &BookingRepository{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

func scanBooking(row interface{ Scan(...interface{}) error }) (*domain.Booking, error) {
	var (
		booking    domain.Booking
		start, end time.Time
		details    sql.NullString
	)
	err := row.Scan(
		&booking.ID,
		&booking.PropertyID,
		&booking.UserID,
		&start,
		&end,
		&booking.Status,
		&details,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.StartDate = domain.DateOf(start)
	booking.EndDate = domain.DateOf(end)
	booking.Details = details.String
	return &booking, nil
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// FindByID returns nil, nil when no booking has the id.
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	defer observe("find_by_id", "booking", time.Now())

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(database.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Booking lookup failed", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("booking could not be read: %w", err)
	}

	return booking, nil
}

func (r *BookingRepository) FindByProperty(ctx context.Context, propertyID int64) ([]*domain.Booking, error) {
	defer observe("find_by_property", "booking", time.Now())

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE property_id = $1 ORDER BY start_date, id`

	bookings, err := r.queryBookings(ctx, query, propertyID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Property bookings could not be listed", map[string]interface{}{"property_id": propertyID, "error": err.Error()})
		return nil, fmt.Errorf("bookings could not be listed: %w", err)
	}

	return bookings, nil
}

// FindOverlapping returns the bookings of one property whose closed date
// interval shares at least one day with dates and whose status is in
// statuses.
func (r *BookingRepository) FindOverlapping(ctx context.Context, propertyID int64, dates domain.DateRange, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	defer observe("find_overlapping", "booking", time.Now())

	if len(statuses) == 0 {
		return []*domain.Booking{}, nil
	}

	args := []interface{}{propertyID, dates.End.Time, dates.Start.Time}
	placeholders := make([]string, len(statuses))
	for i, status := range statuses {
		args = append(args, string(status))
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE property_id = $1
		AND start_date <= $2
		AND end_date >= $3
		AND status IN (` + strings.Join(placeholders, ", ") + `)`

	bookings, err := r.queryBookings(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Overlapping bookings could not be read", map[string]interface{}{
			"property_id": propertyID,
			"range":       dates.String(),
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("overlapping bookings could not be read: %w", err)
	}

	return bookings, nil
}

func (r *BookingRepository) CountByPropertyAndStatus(ctx context.Context, propertyID int64, status domain.BookingStatus) (int64, error) {
	defer observe("count", "booking", time.Now())

	query := `SELECT COUNT(*) FROM bookings WHERE property_id = $1 AND status = $2`

	var count int64
	if err := database.Executor(ctx, r.db).QueryRowContext(ctx, query, propertyID, string(status)).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Bookings could not be counted", map[string]interface{}{"property_id": propertyID, "error": err.Error()})
		return 0, fmt.Errorf("bookings could not be counted: %w", err)
	}

	return count, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	defer observe("create", "booking", time.Now())

	query := `
		INSERT INTO bookings (property_id, user_id, start_date, end_date, status, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	err := database.Executor(ctx, r.db).QueryRowContext(
		ctx,
		query,
		booking.PropertyID,
		booking.UserID,
		booking.StartDate.Time,
		booking.EndDate.Time,
		string(booking.Status),
		nullableString(booking.Details),
		booking.CreatedAt,
		booking.UpdatedAt,
	).Scan(&booking.ID)

	if err != nil {
		r.logger.ErrorContext(ctx, "Booking could not be created", map[string]interface{}{"property_id": booking.PropertyID, "error": err.Error()})
		return fmt.Errorf("booking could not be created: %w", err)
	}

	return nil
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	defer observe("update", "booking", time.Now())

	query := `
		UPDATE bookings
		SET property_id = $1, user_id = $2, start_date = $3, end_date = $4, status = $5, details = $6, updated_at = $7
		WHERE id = $8
	`

	booking.UpdatedAt = time.Now().UTC()

	result, err := database.Executor(ctx, r.db).ExecContext(
		ctx,
		query,
		booking.PropertyID,
		booking.UserID,
		booking.StartDate.Time,
		booking.EndDate.Time,
		string(booking.Status),
		nullableString(booking.Details),
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Booking could not be updated", map[string]interface{}{"id": booking.ID, "error": err.Error()})
		return fmt.Errorf("booking could not be updated: %w", err)
	}

	return requireAffected(result, booking.ID)
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	defer observe("delete", "booking", time.Now())

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Booking could not be deleted", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("booking could not be deleted: %w", err)
	}

	return requireAffected(result, id)
}

func (r *BookingRepository) DeleteAll(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	defer observe("delete_all", "booking", time.Now())

	args := make([]interface{}, len(bookings))
	placeholders := make([]string, len(bookings))
	for i, booking := range bookings {
		args[i] = booking.ID
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := `DELETE FROM bookings WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.ErrorContext(ctx, "Bookings could not be deleted", map[string]interface{}{"count": len(bookings), "error": err.Error()})
		return fmt.Errorf("bookings could not be deleted: %w", err)
	}

	return nil
}

func (r *BookingRepository) LockProperty(ctx context.Context, propertyID int64) error {
	query := r.dialect.PropertyLockQuery()
	if query == "" {
		return nil
	}

	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, propertyID); err != nil {
		r.logger.ErrorContext(ctx, "Property lock could not be taken", map[string]interface{}{"property_id": propertyID, "error": err.Error()})
		return fmt.Errorf("property lock could not be taken: %w", err)
	}

	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("affected rows could not be read: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("booking %d: %w", id, domain.ErrBookingNotFound)
	}
	return nil
}

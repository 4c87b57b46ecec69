package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `
	id, ride_id, user_id, driver_id, bid_id, final_amount, status, payment_status,
	driver_rating, user_rating, driver_feedback, user_feedback,
	cancellation_reason, start_time, end_time, created_at
`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, ride_id, user_id, driver_id, bid_id, final_amount,
			status, payment_status, driver_rating, user_rating, driver_feedback,
			user_feedback, cancellation_reason, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.RideID,
		booking.UserID,
		booking.DriverID,
		booking.BidID,
		booking.FinalAmount,
		booking.Status,
		booking.PaymentStatus,
		nullFloat(booking.DriverRating),
		nullFloat(booking.UserRating),
		nullString(booking.DriverFeedback),
		nullString(booking.UserFeedback),
		nullString(booking.CancellationReason),
		nullTime(booking.StartTime),
		nullTime(booking.EndTime),
		booking.CreatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.q.QueryRowContext(ctx, query, id))
}

// GetByRideID retrieves the booking created for a ride.
func (r *BookingRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ride_id = $1`
	return r.scanBooking(r.q.QueryRowContext(ctx, query, rideID))
}

// Find retrieves bookings matching the filter, newest first.
func (r *BookingRepository) Find(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		query += fmt.Sprintf(` AND payment_status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

// GetByUserID retrieves a user's bookings, newest first.
func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, status domain.BookingStatus) ([]*domain.Booking, error) {
	return r.findByParty(ctx, "user_id", userID, status)
}

// GetByDriverID retrieves a driver's bookings, newest first.
func (r *BookingRepository) GetByDriverID(ctx context.Context, driverID string, status domain.BookingStatus) ([]*domain.Booking, error) {
	return r.findByParty(ctx, "driver_id", driverID, status)
}

func (r *BookingRepository) findByParty(ctx context.Context, column, id string, status domain.BookingStatus) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1`
	args := []any{id}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

// Update updates an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2, driver_rating = $3, user_rating = $4,
			driver_feedback = $5, user_feedback = $6, cancellation_reason = $7,
			start_time = $8, end_time = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		nullFloat(booking.DriverRating),
		nullFloat(booking.UserRating),
		nullString(booking.DriverFeedback),
		nullString(booking.UserFeedback),
		nullString(booking.CancellationReason),
		nullTime(booking.StartTime),
		nullTime(booking.EndTime),
		booking.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AverageDriverRating computes the mean of the driver's received ratings.
func (r *BookingRepository) AverageDriverRating(ctx context.Context, driverID string) (float64, error) {
	query := `SELECT AVG(driver_rating) FROM bookings WHERE driver_id = $1 AND driver_rating IS NOT NULL`

	var avg sql.NullFloat64
	if err := r.q.QueryRowContext(ctx, query, driverID).Scan(&avg); err != nil {
		return 0, err
	}

	if !avg.Valid {
		return 0, repository.ErrNotFound
	}

	return avg.Float64, nil
}

func (r *BookingRepository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var driverRating, userRating sql.NullFloat64
	var driverFeedback, userFeedback, cancellationReason sql.NullString
	var startTime, endTime sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.UserID,
		&booking.DriverID,
		&booking.BidID,
		&booking.FinalAmount,
		&booking.Status,
		&booking.PaymentStatus,
		&driverRating,
		&userRating,
		&driverFeedback,
		&userFeedback,
		&cancellationReason,
		&startTime,
		&endTime,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if driverRating.Valid {
		booking.DriverRating = driverRating.Float64
	}
	if userRating.Valid {
		booking.UserRating = userRating.Float64
	}
	if driverFeedback.Valid {
		booking.DriverFeedback = driverFeedback.String
	}
	if userFeedback.Valid {
		booking.UserFeedback = userFeedback.String
	}
	if cancellationReason.Valid {
		booking.CancellationReason = cancellationReason.String
	}
	if startTime.Valid {
		booking.StartTime = startTime.Time
	}
	if endTime.Valid {
		booking.EndTime = endTime.Time
	}

	return &booking, nil
}

func (r *BookingRepository) collectBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

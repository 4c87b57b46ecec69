package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `
	id, user_id, from_address, from_lat, from_lng, to_address, to_lat, to_lng,
	base_price, customer_max_price, distance, estimated_duration, status,
	bidding_end_time, accepted_driver_id, final_price, ride_start_time,
	ride_end_time, created_at
`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, user_id, from_address, from_lat, from_lng, to_address, to_lat, to_lng,
			base_price, customer_max_price, distance, estimated_duration, status,
			bidding_end_time, accepted_driver_id, final_price, ride_start_time, ride_end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.UserID,
		ride.From.Address,
		ride.From.Lat,
		ride.From.Lng,
		ride.To.Address,
		ride.To.Lat,
		ride.To.Lng,
		ride.BasePrice,
		ride.CustomerMaxPrice,
		ride.Distance,
		ride.EstimatedDuration,
		ride.Status,
		ride.BiddingEndTime,
		nullString(ride.AcceptedDriverID),
		nullFloat(ride.FinalPrice),
		nullTime(ride.RideStartTime),
		nullTime(ride.RideEndTime),
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return r.scanRide(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a ride with a row lock. Inside a transaction
// this serializes all auction mutations for the ride; rides are locked
// independently, so different rides never block each other.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return r.scanRide(r.q.QueryRowContext(ctx, query, id))
}

// FindBidding retrieves rides that are still open for bidding.
func (r *RideRepository) FindBidding(ctx context.Context, now time.Time) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status = $1 AND bidding_end_time > $2
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, domain.RideStatusBidding, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectRides(rows)
}

// GetByUserID retrieves a user's rides, optionally filtered by status.
func (r *RideRepository) GetByUserID(ctx context.Context, userID string, status domain.RideStatus) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = $1`
	args := []any{userID}

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

	return r.collectRides(rows)
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET status = $1, bidding_end_time = $2, accepted_driver_id = $3, final_price = $4,
			customer_max_price = $5, ride_start_time = $6, ride_end_time = $7
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Status,
		ride.BiddingEndTime,
		nullString(ride.AcceptedDriverID),
		nullFloat(ride.FinalPrice),
		ride.CustomerMaxPrice,
		nullTime(ride.RideStartTime),
		nullTime(ride.RideEndTime),
		ride.ID,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RideRepository) scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var acceptedDriverID sql.NullString
	var finalPrice sql.NullFloat64
	var startTime, endTime sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.UserID,
		&ride.From.Address,
		&ride.From.Lat,
		&ride.From.Lng,
		&ride.To.Address,
		&ride.To.Lat,
		&ride.To.Lng,
		&ride.BasePrice,
		&ride.CustomerMaxPrice,
		&ride.Distance,
		&ride.EstimatedDuration,
		&ride.Status,
		&ride.BiddingEndTime,
		&acceptedDriverID,
		&finalPrice,
		&startTime,
		&endTime,
		&ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if acceptedDriverID.Valid {
		ride.AcceptedDriverID = acceptedDriverID.String
	}
	if finalPrice.Valid {
		ride.FinalPrice = finalPrice.Float64
	}
	if startTime.Valid {
		ride.RideStartTime = startTime.Time
	}
	if endTime.Valid {
		ride.RideEndTime = endTime.Time
	}

	return &ride, nil
}

func (r *RideRepository) collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		ride, err := r.scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

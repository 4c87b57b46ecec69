package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// BidRepository is a PostgreSQL implementation of repository.BidRepository.
type BidRepository struct {
	q Querier
}

// NewBidRepository creates a new PostgreSQL bid repository.
func NewBidRepository(db *sql.DB) *BidRepository {
	return &BidRepository{q: db}
}

// NewBidRepositoryWithTx creates a bid repository using a transaction.
func NewBidRepositoryWithTx(tx *sql.Tx) *BidRepository {
	return &BidRepository{q: tx}
}

const bidColumns = `
	id, ride_id, driver_id, bid_amount, message, estimated_arrival,
	status, is_winning, created_at, updated_at
`

// Create persists a new bid.
func (r *BidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	query := `
		INSERT INTO bids (id, ride_id, driver_id, bid_amount, message, estimated_arrival,
			status, is_winning, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		bid.ID,
		bid.RideID,
		bid.DriverID,
		bid.BidAmount,
		nullString(bid.Message),
		bid.EstimatedArrival,
		bid.Status,
		bid.IsWinning,
		bid.CreatedAt,
		bid.UpdatedAt,
	)

	return err
}

// GetByID retrieves a bid by ID.
func (r *BidRepository) GetByID(ctx context.Context, id string) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	return r.scanBid(r.q.QueryRowContext(ctx, query, id))
}

// GetByRideAndDriver retrieves the single bid a driver holds on a ride.
func (r *BidRepository) GetByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE ride_id = $1 AND driver_id = $2`
	return r.scanBid(r.q.QueryRowContext(ctx, query, rideID, driverID))
}

// GetByRideID retrieves all bids for a ride, lowest amount first.
func (r *BidRepository) GetByRideID(ctx context.Context, rideID string) ([]*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE ride_id = $1 ORDER BY bid_amount ASC, created_at ASC`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectBids(rows)
}

// GetByDriverID retrieves a driver's bids, newest first.
func (r *BidRepository) GetByDriverID(ctx context.Context, driverID string, status domain.BidStatus) ([]*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE driver_id = $1`
	args := []any{driverID}

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

	return r.collectBids(rows)
}

// Update updates an existing bid.
func (r *BidRepository) Update(ctx context.Context, bid *domain.Bid) error {
	query := `
		UPDATE bids
		SET bid_amount = $1, message = $2, estimated_arrival = $3, status = $4,
			is_winning = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		bid.BidAmount,
		nullString(bid.Message),
		bid.EstimatedArrival,
		bid.Status,
		bid.IsWinning,
		bid.UpdatedAt,
		bid.ID,
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

// ClearWinning unsets the winning flag on every bid of a ride.
func (r *BidRepository) ClearWinning(ctx context.Context, rideID string) error {
	query := `UPDATE bids SET is_winning = FALSE WHERE ride_id = $1 AND is_winning = TRUE`
	_, err := r.q.ExecContext(ctx, query, rideID)
	return err
}

// LowestActive retrieves the lowest-amount ACTIVE bid for a ride.
// Ties break toward the earliest-created bid so resolution is deterministic.
func (r *BidRepository) LowestActive(ctx context.Context, rideID string) (*domain.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE ride_id = $1 AND status = $2
		ORDER BY bid_amount ASC, created_at ASC
		LIMIT 1
	`
	return r.scanBid(r.q.QueryRowContext(ctx, query, rideID, domain.BidStatusActive))
}

// SetWinning marks a single bid as winning.
func (r *BidRepository) SetWinning(ctx context.Context, bidID string) error {
	query := `UPDATE bids SET is_winning = TRUE WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, bidID)
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

// RejectOthers marks every bid on the ride except the given one as REJECTED.
func (r *BidRepository) RejectOthers(ctx context.Context, rideID, exceptBidID string) error {
	query := `UPDATE bids SET status = $1, is_winning = FALSE WHERE ride_id = $2 AND id <> $3`
	_, err := r.q.ExecContext(ctx, query, domain.BidStatusRejected, rideID, exceptBidID)
	return err
}

func (r *BidRepository) scanBid(row rowScanner) (*domain.Bid, error) {
	var bid domain.Bid
	var message sql.NullString

	err := row.Scan(
		&bid.ID,
		&bid.RideID,
		&bid.DriverID,
		&bid.BidAmount,
		&message,
		&bid.EstimatedArrival,
		&bid.Status,
		&bid.IsWinning,
		&bid.CreatedAt,
		&bid.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if message.Valid {
		bid.Message = message.String
	}

	return &bid, nil
}

func (r *BidRepository) collectBids(rows *sql.Rows) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	for rows.Next() {
		bid, err := r.scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

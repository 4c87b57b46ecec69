package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `
	id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(license_number, ''),
	vehicle_model, vehicle_number, vehicle_type, rating, total_rides, status, is_active
`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, email, phone, license_number,
			vehicle_model, vehicle_number, vehicle_type, rating, total_rides, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		nullString(driver.Email),
		nullString(driver.Phone),
		nullString(driver.LicenseNumber),
		driver.Vehicle.Model,
		driver.Vehicle.Number,
		driver.Vehicle.Type,
		driver.Rating,
		driver.TotalRides,
		driver.Status,
		driver.IsActive,
	)

	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanDriver(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`
	return r.scanDriver(r.q.QueryRowContext(ctx, query, phone))
}

// Find retrieves drivers matching the filter, newest first.
func (r *DriverRepository) Find(ctx context.Context, filter repository.DriverFilter) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(` AND is_active = $%d`, len(args))
	}
	query += ` ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := r.scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1 WHERE id = $2`
	return r.execOne(ctx, query, status, id)
}

// UpdateRating stores a recomputed running-average rating.
func (r *DriverRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	query := `UPDATE drivers SET rating = $1 WHERE id = $2`
	return r.execOne(ctx, query, rating, id)
}

// IncrementTotalRides bumps the completed-ride counter.
func (r *DriverRepository) IncrementTotalRides(ctx context.Context, id string) error {
	query := `UPDATE drivers SET total_rides = total_rides + 1 WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *DriverRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
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

func (r *DriverRepository) scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver

	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Email,
		&driver.Phone,
		&driver.LicenseNumber,
		&driver.Vehicle.Model,
		&driver.Vehicle.Number,
		&driver.Vehicle.Type,
		&driver.Rating,
		&driver.TotalRides,
		&driver.Status,
		&driver.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

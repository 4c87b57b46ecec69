package repository

import "context"

// Repositories bundles the transaction-scoped repositories handed to a
// TxManager callback. Every write made through them belongs to the same
// storage transaction.
type Repositories struct {
	Rides    RideRepository
	Bids     BidRepository
	Drivers  DriverRepository
	Bookings BookingRepository
}

// TxManager runs a function inside a single storage transaction. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// multi-step mutation either applies fully or not at all.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

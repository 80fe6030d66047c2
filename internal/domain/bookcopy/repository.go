package bookcopy

import "context"

type Repository interface {
	Create(ctx context.Context, c *BookCopy) error
	GetByID(ctx context.Context, id uint64) (*BookCopy, error)
	// GetByIDForUpdate reads the latest committed row and locks it for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*BookCopy, error)
	GetByCopyID(ctx context.Context, copyID string) (*BookCopy, error)
	ListByCopyIDs(ctx context.Context, copyIDs []string) ([]BookCopy, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]BookCopy, error)

	// CompareAndSwapStatus writes `to` only while the row's status is one of `from`.
	// Returns ErrStatusMismatch when no row matched.
	CompareAndSwapStatus(ctx context.Context, id uint64, from []Status, to Status) error
}

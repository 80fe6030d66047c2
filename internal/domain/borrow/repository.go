package borrow

import "context"

type Repository interface {
	// Create inserts the borrow and its details.
	Create(ctx context.Context, b *Borrow) error
	Save(ctx context.Context, b *Borrow) error
	SaveDetail(ctx context.Context, d *Detail) error

	// Getters load Details as well.
	GetByID(ctx context.Context, id uint64) (*Borrow, error)
	GetByBorrowID(ctx context.Context, borrowID string) (*Borrow, error)
	GetByBorrowIDForUpdate(ctx context.Context, borrowID string) (*Borrow, error)
	GetByCode(ctx context.Context, code string) (*Borrow, error)
	GetByLoanID(ctx context.Context, loanID uint64) (*Borrow, error)

	GetDetailByDetailID(ctx context.Context, detailID string) (*Detail, error)
}

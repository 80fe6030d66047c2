package loan

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts the loan and its details.
	Create(ctx context.Context, l *Loan) error
	// Save persists the loan row only.
	Save(ctx context.Context, l *Loan) error
	SaveDetail(ctx context.Context, d *Detail) error

	// Getters load Details as well.
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)

	GetDetailByDetailID(ctx context.Context, detailID string) (*Detail, error)
	ListByUserID(ctx context.Context, userID string) ([]Loan, error)
	// ListDueOnOrBefore returns loans in one of statuses whose due date is <= cutoff.
	ListDueOnOrBefore(ctx context.Context, cutoff time.Time, statuses []Status) ([]Loan, error)
}

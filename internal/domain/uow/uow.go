package uow

import (
	"context"

	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/loan"
)

// Repos are bound to one transaction.
type Repos struct {
	Copies    bookcopy.Repository
	Loans     loan.Repository
	Borrows   borrow.Repository
	Fines     fine.Repository
	FineTypes fine.TypeRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in with its details
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}

package loanmock

import (
	"context"
	"time"

	domain "library-circulation/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled; unset writes succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	SaveDetailFn           func(ctx context.Context, d *domain.Detail) error
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByIDForUpdateFn     func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetDetailByDetailIDFn  func(ctx context.Context, detailID string) (*domain.Detail, error)
	ListByUserIDFn         func(ctx context.Context, userID string) ([]domain.Loan, error)
	ListDueOnOrBeforeFn    func(ctx context.Context, cutoff time.Time, statuses []domain.Status) ([]domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) SaveDetail(ctx context.Context, d *domain.Detail) error {
	if m.SaveDetailFn != nil {
		return m.SaveDetailFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetDetailByDetailID(ctx context.Context, detailID string) (*domain.Detail, error) {
	if m.GetDetailByDetailIDFn != nil {
		return m.GetDetailByDetailIDFn(ctx, detailID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListDueOnOrBefore(ctx context.Context, cutoff time.Time, statuses []domain.Status) ([]domain.Loan, error) {
	if m.ListDueOnOrBeforeFn != nil {
		return m.ListDueOnOrBeforeFn(ctx, cutoff, statuses)
	}
	return nil, context.Canceled
}

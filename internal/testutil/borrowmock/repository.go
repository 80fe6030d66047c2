package borrowmock

import (
	"context"

	domain "library-circulation/internal/domain/borrow"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                 func(ctx context.Context, b *domain.Borrow) error
	SaveFn                   func(ctx context.Context, b *domain.Borrow) error
	SaveDetailFn             func(ctx context.Context, d *domain.Detail) error
	GetByIDFn                func(ctx context.Context, id uint64) (*domain.Borrow, error)
	GetByBorrowIDFn          func(ctx context.Context, borrowID string) (*domain.Borrow, error)
	GetByBorrowIDForUpdateFn func(ctx context.Context, borrowID string) (*domain.Borrow, error)
	GetByCodeFn              func(ctx context.Context, code string) (*domain.Borrow, error)
	GetByLoanIDFn            func(ctx context.Context, loanID uint64) (*domain.Borrow, error)
	GetDetailByDetailIDFn    func(ctx context.Context, detailID string) (*domain.Detail, error)
}

func (m *Repo) Create(ctx context.Context, b *domain.Borrow) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, b *domain.Borrow) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, b)
	}
	return nil
}

func (m *Repo) SaveDetail(ctx context.Context, d *domain.Detail) error {
	if m.SaveDetailFn != nil {
		return m.SaveDetailFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Borrow, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByBorrowID(ctx context.Context, borrowID string) (*domain.Borrow, error) {
	if m.GetByBorrowIDFn != nil {
		return m.GetByBorrowIDFn(ctx, borrowID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByBorrowIDForUpdate(ctx context.Context, borrowID string) (*domain.Borrow, error) {
	if m.GetByBorrowIDForUpdateFn != nil {
		return m.GetByBorrowIDForUpdateFn(ctx, borrowID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Borrow, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID uint64) (*domain.Borrow, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetDetailByDetailID(ctx context.Context, detailID string) (*domain.Detail, error) {
	if m.GetDetailByDetailIDFn != nil {
		return m.GetDetailByDetailIDFn(ctx, detailID)
	}
	return nil, context.Canceled
}

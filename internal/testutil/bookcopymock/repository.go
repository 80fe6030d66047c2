package bookcopymock

import (
	"context"

	domain "library-circulation/internal/domain/bookcopy"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, c *domain.BookCopy) error
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.BookCopy, error)
	GetByIDForUpdateFn     func(ctx context.Context, id uint64) (*domain.BookCopy, error)
	GetByCopyIDFn          func(ctx context.Context, copyID string) (*domain.BookCopy, error)
	ListByCopyIDsFn        func(ctx context.Context, copyIDs []string) ([]domain.BookCopy, error)
	ListByIDsFn            func(ctx context.Context, ids []uint64) ([]domain.BookCopy, error)
	CompareAndSwapStatusFn func(ctx context.Context, id uint64, from []domain.Status, to domain.Status) error
}

func (m *Repo) Create(ctx context.Context, c *domain.BookCopy) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.BookCopy, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.BookCopy, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByCopyID(ctx context.Context, copyID string) (*domain.BookCopy, error) {
	if m.GetByCopyIDFn != nil {
		return m.GetByCopyIDFn(ctx, copyID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByCopyIDs(ctx context.Context, copyIDs []string) ([]domain.BookCopy, error) {
	if m.ListByCopyIDsFn != nil {
		return m.ListByCopyIDsFn(ctx, copyIDs)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByIDs(ctx context.Context, ids []uint64) ([]domain.BookCopy, error) {
	if m.ListByIDsFn != nil {
		return m.ListByIDsFn(ctx, ids)
	}
	return nil, context.Canceled
}

func (m *Repo) CompareAndSwapStatus(ctx context.Context, id uint64, from []domain.Status, to domain.Status) error {
	if m.CompareAndSwapStatusFn != nil {
		return m.CompareAndSwapStatusFn(ctx, id, from, to)
	}
	return nil
}

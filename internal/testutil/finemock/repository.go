package finemock

import (
	"context"

	domain "library-circulation/internal/domain/fine"
)

var (
	_ domain.Repository     = (*Repo)(nil)
	_ domain.TypeRepository = (*TypeRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, f *domain.Fine) error
	SaveFn                 func(ctx context.Context, f *domain.Fine) error
	DeleteFn               func(ctx context.Context, id uint64) error
	GetByFineIDFn          func(ctx context.Context, fineID string) (*domain.Fine, error)
	GetByFineIDForUpdateFn func(ctx context.Context, fineID string) (*domain.Fine, error)
	ListByBorrowIDFn       func(ctx context.Context, borrowID uint64) ([]domain.Fine, error)
	CountByFineTypeFn      func(ctx context.Context, fineTypeID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, f *domain.Fine) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, f)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, f *domain.Fine) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, f)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) GetByFineID(ctx context.Context, fineID string) (*domain.Fine, error) {
	if m.GetByFineIDFn != nil {
		return m.GetByFineIDFn(ctx, fineID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByFineIDForUpdate(ctx context.Context, fineID string) (*domain.Fine, error) {
	if m.GetByFineIDForUpdateFn != nil {
		return m.GetByFineIDForUpdateFn(ctx, fineID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByBorrowID(ctx context.Context, borrowID uint64) ([]domain.Fine, error) {
	if m.ListByBorrowIDFn != nil {
		return m.ListByBorrowIDFn(ctx, borrowID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountByFineType(ctx context.Context, fineTypeID uint64) (int64, error) {
	if m.CountByFineTypeFn != nil {
		return m.CountByFineTypeFn(ctx, fineTypeID)
	}
	return 0, context.Canceled
}

// TypeRepo is a function-backed mock that satisfies domain.TypeRepository.
type TypeRepo struct {
	CreateFn          func(ctx context.Context, t *domain.FineType) error
	SaveFn            func(ctx context.Context, t *domain.FineType) error
	DeleteFn          func(ctx context.Context, id uint64) error
	GetByIDFn         func(ctx context.Context, id uint64) (*domain.FineType, error)
	GetByFineTypeIDFn func(ctx context.Context, fineTypeID string) (*domain.FineType, error)
	FirstByKindFn     func(ctx context.Context, kind domain.Kind) (*domain.FineType, error)
	ListFn            func(ctx context.Context) ([]domain.FineType, error)
}

func (m *TypeRepo) Create(ctx context.Context, t *domain.FineType) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *TypeRepo) Save(ctx context.Context, t *domain.FineType) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, t)
	}
	return nil
}

func (m *TypeRepo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *TypeRepo) GetByID(ctx context.Context, id uint64) (*domain.FineType, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *TypeRepo) GetByFineTypeID(ctx context.Context, fineTypeID string) (*domain.FineType, error) {
	if m.GetByFineTypeIDFn != nil {
		return m.GetByFineTypeIDFn(ctx, fineTypeID)
	}
	return nil, context.Canceled
}

func (m *TypeRepo) FirstByKind(ctx context.Context, kind domain.Kind) (*domain.FineType, error) {
	if m.FirstByKindFn != nil {
		return m.FirstByKindFn(ctx, kind)
	}
	return nil, context.Canceled
}

func (m *TypeRepo) List(ctx context.Context) ([]domain.FineType, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}

package fine

import "context"

type Repository interface {
	Create(ctx context.Context, f *Fine) error
	Save(ctx context.Context, f *Fine) error
	Delete(ctx context.Context, id uint64) error
	GetByFineID(ctx context.Context, fineID string) (*Fine, error)
	GetByFineIDForUpdate(ctx context.Context, fineID string) (*Fine, error)
	ListByBorrowID(ctx context.Context, borrowID uint64) ([]Fine, error)
	CountByFineType(ctx context.Context, fineTypeID uint64) (int64, error)
}

type TypeRepository interface {
	Create(ctx context.Context, t *FineType) error
	Save(ctx context.Context, t *FineType) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*FineType, error)
	GetByFineTypeID(ctx context.Context, fineTypeID string) (*FineType, error)
	// FirstByKind returns the catalog entry with the lowest id for kind.
	FirstByKind(ctx context.Context, kind Kind) (*FineType, error)
	List(ctx context.Context) ([]FineType, error)
}

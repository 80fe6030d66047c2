package mysql

import (
	"context"

	"library-circulation/internal/domain/fine"

	"gorm.io/gorm"
)

type FineRepository struct{ db *gorm.DB }

func NewFineRepository(db *gorm.DB) *FineRepository { return &FineRepository{db: db} }

func (r *FineRepository) Create(ctx context.Context, f *fine.Fine) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FineRepository) Save(ctx context.Context, f *fine.Fine) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FineRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&fine.Fine{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fine.ErrNotFound
	}
	return nil
}

func (r *FineRepository) GetByFineID(ctx context.Context, fineID string) (*fine.Fine, error) {
	return r.first(ctx, r.db, fineID)
}

func (r *FineRepository) GetByFineIDForUpdate(ctx context.Context, fineID string) (*fine.Fine, error) {
	return r.first(ctx, forUpdate(r.db), fineID)
}

func (r *FineRepository) first(ctx context.Context, db *gorm.DB, fineID string) (*fine.Fine, error) {
	var out fine.Fine
	if err := db.WithContext(ctx).Where("fine_id = ?", fineID).First(&out).Error; err != nil {
		return nil, notFound(err, fine.ErrNotFound)
	}
	return &out, nil
}

func (r *FineRepository) ListByBorrowID(ctx context.Context, borrowID uint64) ([]fine.Fine, error) {
	var out []fine.Fine
	err := r.db.WithContext(ctx).Where("borrow_id = ?", borrowID).Order("id").Find(&out).Error
	return out, err
}

func (r *FineRepository) CountByFineType(ctx context.Context, fineTypeID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&fine.Fine{}).Where("fine_type_id = ?", fineTypeID).Count(&n).Error
	return n, err
}

type FineTypeRepository struct{ db *gorm.DB }

func NewFineTypeRepository(db *gorm.DB) *FineTypeRepository { return &FineTypeRepository{db: db} }

func (r *FineTypeRepository) Create(ctx context.Context, t *fine.FineType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *FineTypeRepository) Save(ctx context.Context, t *fine.FineType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *FineTypeRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&fine.FineType{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fine.ErrTypeNotFound
	}
	return nil
}

func (r *FineTypeRepository) GetByID(ctx context.Context, id uint64) (*fine.FineType, error) {
	var out fine.FineType
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, fine.ErrTypeNotFound)
	}
	return &out, nil
}

func (r *FineTypeRepository) GetByFineTypeID(ctx context.Context, fineTypeID string) (*fine.FineType, error) {
	var out fine.FineType
	if err := r.db.WithContext(ctx).Where("fine_type_id = ?", fineTypeID).First(&out).Error; err != nil {
		return nil, notFound(err, fine.ErrTypeNotFound)
	}
	return &out, nil
}

func (r *FineTypeRepository) FirstByKind(ctx context.Context, kind fine.Kind) (*fine.FineType, error) {
	var out fine.FineType
	if err := r.db.WithContext(ctx).Where("type = ?", kind).Order("id").First(&out).Error; err != nil {
		return nil, notFound(err, fine.ErrTypeNotFound)
	}
	return &out, nil
}

func (r *FineTypeRepository) List(ctx context.Context) ([]fine.FineType, error) {
	var out []fine.FineType
	err := r.db.WithContext(ctx).Order("type, id").Find(&out).Error
	return out, err
}

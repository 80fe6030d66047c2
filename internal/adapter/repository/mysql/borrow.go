package mysql

import (
	"context"

	"library-circulation/internal/domain/borrow"

	"gorm.io/gorm"
)

type BorrowRepository struct{ db *gorm.DB }

func NewBorrowRepository(db *gorm.DB) *BorrowRepository { return &BorrowRepository{db: db} }

func (r *BorrowRepository) Create(ctx context.Context, b *borrow.Borrow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		for i := range b.Details {
			b.Details[i].BorrowID = b.ID
		}
		if len(b.Details) == 0 {
			return nil
		}
		return tx.Create(&b.Details).Error
	})
}

func (r *BorrowRepository) Save(ctx context.Context, b *borrow.Borrow) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BorrowRepository) SaveDetail(ctx context.Context, d *borrow.Detail) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *BorrowRepository) GetByID(ctx context.Context, id uint64) (*borrow.Borrow, error) {
	return r.first(ctx, r.db, "id = ?", id)
}

func (r *BorrowRepository) GetByBorrowID(ctx context.Context, borrowID string) (*borrow.Borrow, error) {
	return r.first(ctx, r.db, "borrow_id = ?", borrowID)
}

func (r *BorrowRepository) GetByBorrowIDForUpdate(ctx context.Context, borrowID string) (*borrow.Borrow, error) {
	return r.first(ctx, forUpdate(r.db), "borrow_id = ?", borrowID)
}

func (r *BorrowRepository) GetByCode(ctx context.Context, code string) (*borrow.Borrow, error) {
	return r.first(ctx, r.db, "borrow_code = ?", code)
}

func (r *BorrowRepository) GetByLoanID(ctx context.Context, loanID uint64) (*borrow.Borrow, error) {
	return r.first(ctx, r.db, "loan_id = ?", loanID)
}

func (r *BorrowRepository) first(ctx context.Context, db *gorm.DB, query string, arg any) (*borrow.Borrow, error) {
	var out borrow.Borrow
	if err := db.WithContext(ctx).Where(query, arg).First(&out).Error; err != nil {
		return nil, notFound(err, borrow.ErrNotFound)
	}
	if err := r.db.WithContext(ctx).Where("borrow_id = ?", out.ID).Order("id").Find(&out.Details).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BorrowRepository) GetDetailByDetailID(ctx context.Context, detailID string) (*borrow.Detail, error) {
	var out borrow.Detail
	if err := r.db.WithContext(ctx).Where("detail_id = ?", detailID).First(&out).Error; err != nil {
		return nil, notFound(err, borrow.ErrDetailNotFound)
	}
	return &out, nil
}

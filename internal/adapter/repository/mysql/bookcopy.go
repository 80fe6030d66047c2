package mysql

import (
	"context"
	"time"

	"library-circulation/internal/domain/bookcopy"

	"gorm.io/gorm"
)

type BookCopyRepository struct{ db *gorm.DB }

func NewBookCopyRepository(db *gorm.DB) *BookCopyRepository { return &BookCopyRepository{db: db} }

func (r *BookCopyRepository) Create(ctx context.Context, c *bookcopy.BookCopy) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *BookCopyRepository) GetByID(ctx context.Context, id uint64) (*bookcopy.BookCopy, error) {
	var out bookcopy.BookCopy
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, bookcopy.ErrNotFound)
	}
	return &out, nil
}

func (r *BookCopyRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*bookcopy.BookCopy, error) {
	var out bookcopy.BookCopy
	if err := forUpdate(r.db).WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, bookcopy.ErrNotFound)
	}
	return &out, nil
}

func (r *BookCopyRepository) GetByCopyID(ctx context.Context, copyID string) (*bookcopy.BookCopy, error) {
	var out bookcopy.BookCopy
	if err := r.db.WithContext(ctx).Where("copy_id = ?", copyID).First(&out).Error; err != nil {
		return nil, notFound(err, bookcopy.ErrNotFound)
	}
	return &out, nil
}

func (r *BookCopyRepository) ListByCopyIDs(ctx context.Context, copyIDs []string) ([]bookcopy.BookCopy, error) {
	var out []bookcopy.BookCopy
	if len(copyIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("copy_id IN ?", copyIDs).Order("id").Find(&out).Error
	return out, err
}

func (r *BookCopyRepository) ListByIDs(ctx context.Context, ids []uint64) ([]bookcopy.BookCopy, error) {
	var out []bookcopy.BookCopy
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

// CompareAndSwapStatus is the only write path for a copy's status.
func (r *BookCopyRepository) CompareAndSwapStatus(ctx context.Context, id uint64, from []bookcopy.Status, to bookcopy.Status) error {
	res := r.db.WithContext(ctx).
		Model(&bookcopy.BookCopy{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return bookcopy.ErrStatusMismatch
	}
	return nil
}

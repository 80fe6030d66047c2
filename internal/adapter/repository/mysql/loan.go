package mysql

import (
	"context"
	"time"

	loanDomain "library-circulation/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *LoanRepository) Tx(ctx context.Context, fn func(repo loanDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoanRepository{db: tx})
	})
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		for i := range l.Details {
			l.Details[i].LoanID = l.ID
		}
		if len(l.Details) == 0 {
			return nil
		}
		return tx.Create(&l.Details).Error
	})
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) SaveDetail(ctx context.Context, d *loanDomain.Detail) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	return r.first(ctx, r.db, "id = ?", id)
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.first(ctx, r.db, "loan_id = ?", loanID)
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.first(ctx, forUpdate(r.db), "loan_id = ?", loanID)
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	return r.first(ctx, forUpdate(r.db), "id = ?", id)
}

func (r *LoanRepository) first(ctx context.Context, db *gorm.DB, query string, arg any) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := db.WithContext(ctx).Where(query, arg).First(&out).Error; err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	if err := r.loadDetails(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) loadDetails(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", l.ID).Order("id").Find(&l.Details).Error
}

func (r *LoanRepository) GetDetailByDetailID(ctx context.Context, detailID string) (*loanDomain.Detail, error) {
	var out loanDomain.Detail
	if err := r.db.WithContext(ctx).Where("detail_id = ?", detailID).First(&out).Error; err != nil {
		return nil, notFound(err, loanDomain.ErrDetailNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) ListByUserID(ctx context.Context, userID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadDetails(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *LoanRepository) ListDueOnOrBefore(ctx context.Context, cutoff time.Time, statuses []loanDomain.Status) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date <= ?", statuses, cutoff).
		Order("due_date, id").
		Find(&out).Error
	return out, err
}

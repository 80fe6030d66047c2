package borrow

import (
	"context"
	"time"

	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/loan"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/id"
	"library-circulation/pkg/logger"
)

const NoteNotApprovedInTime = "not approved before pickup"

type Usecase struct {
	uow     uow.UnitOfWork
	log     *logger.Logger
	metrics *metrics.Circulation
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, log *logger.Logger, m *metrics.Circulation) *Usecase {
	return &Usecase{uow: tx, log: log, metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

// MarkAsBorrowed hands the approved copies to the borrower. Only a waiting loan can be picked up;
// details still pending are rejected. Reserved copies stay borrowed in the registry.
func (u *Usecase) MarkAsBorrowed(ctx context.Context, loanID string) (*BorrowDTO, error) {
	var out *BorrowDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusWaiting {
			return apperr.InvalidState("loan %s is %s, only waiting loans can be borrowed", l.LoanID, l.Status).
				WithDetails(map[string]any{"loan_id": l.LoanID, "status": l.Status})
		}
		now := u.now()
		for i := range l.Details {
			d := &l.Details[i]
			if d.ApprovalStatus != loan.DetailPending {
				continue
			}
			if err := d.Reject(NoteNotApprovedInTime); err != nil {
				return err
			}
			if err := r.Loans.SaveDetail(ctx, d); err != nil {
				return err
			}
		}
		l.Recompute(now)

		approved := l.ApprovedDetails()
		if len(approved) == 0 {
			return apperr.InvalidState("loan %s has no approved copies", l.LoanID).
				WithDetails(map[string]any{"loan_id": l.LoanID})
		}
		b := &borrow.Borrow{
			BorrowID:   id.NewID32(),
			LoanID:     l.ID,
			BorrowCode: id.NewBorrowCode(),
			BorrowDate: now,
			ReturnDate: l.DueDate,
			Status:     borrow.StatusOpen,
		}
		for _, d := range approved {
			b.Details = append(b.Details, borrow.Detail{
				DetailID:   id.NewID32(),
				BookCopyID: d.BookCopyID,
				Status:     borrow.DetailBorrowed,
			})
		}
		if err := r.Borrows.Create(ctx, b); err != nil {
			return err
		}
		l.SetStatus(loan.StatusBorrowed, now)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto, err := BuildDTO(ctx, r, b, l)
		out = dto
		return err
	})
	u.metrics.Observe("mark_borrowed", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithFields(ctx, map[string]any{
		"loan_id":   loanID,
		"borrow_id": out.BorrowID,
		"copies":    len(out.Details),
	}), "loan borrowed")
	return out, nil
}

func (u *Usecase) GetBorrow(ctx context.Context, borrowID string) (*BorrowDTO, error) {
	return u.get(ctx, func(r uow.Repos) (*borrow.Borrow, error) { return r.Borrows.GetByBorrowID(ctx, borrowID) })
}

// GetBorrowByCode resolves the code printed on the pickup slip.
func (u *Usecase) GetBorrowByCode(ctx context.Context, code string) (*BorrowDTO, error) {
	return u.get(ctx, func(r uow.Repos) (*borrow.Borrow, error) { return r.Borrows.GetByCode(ctx, code) })
}

func (u *Usecase) get(ctx context.Context, find func(r uow.Repos) (*borrow.Borrow, error)) (*BorrowDTO, error) {
	var out *BorrowDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := find(r)
		if err != nil {
			return err
		}
		l, err := r.Loans.GetByID(ctx, b.LoanID)
		if err != nil {
			return err
		}
		out, err = BuildDTO(ctx, r, b, l)
		return err
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

// BuildDTO renders b with public copy ids resolved through r.
func BuildDTO(ctx context.Context, r uow.Repos, b *borrow.Borrow, l *loan.Loan) (*BorrowDTO, error) {
	ids := make([]uint64, 0, len(b.Details))
	for _, d := range b.Details {
		ids = append(ids, d.BookCopyID)
	}
	copies, err := r.Copies.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	publicID := make(map[uint64]string, len(copies))
	for _, c := range copies {
		publicID[c.ID] = c.CopyID
	}

	out := &BorrowDTO{
		BorrowID:   b.BorrowID,
		LoanID:     l.LoanID,
		LoanStatus: string(l.Status),
		BorrowCode: b.BorrowCode,
		BorrowDate: b.BorrowDate,
		ReturnDate: b.ReturnDate.UTC().Format("2006-01-02"),
		Status:     string(b.Status),
		ClosedAt:   b.ClosedAt,
		Details:    make([]BorrowDetailDTO, 0, len(b.Details)),
	}
	for _, d := range b.Details {
		out.Details = append(out.Details, BorrowDetailDTO{
			DetailID:   d.DetailID,
			BookCopyID: publicID[d.BookCopyID],
			Status:     string(d.Status),
			Note:       d.Note,
			ReturnedAt: d.ReturnedAt,
		})
	}
	return out, nil
}

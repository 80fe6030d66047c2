package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainBorrow "library-circulation/internal/domain/borrow"
	domainFine "library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/loan"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/borrow"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/internal/usecase/fine"
	"library-circulation/internal/usecase/registry"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/logger"
)

// FineAssessor raises fines inside the caller's transaction.
type FineAssessor interface {
	AutoAssess(ctx context.Context, r uow.Repos, p fine.AutoAssessParams) (*domainFine.Fine, error)
}

type Usecase struct {
	uow     uow.UnitOfWork
	fines   FineAssessor
	log     *logger.Logger
	metrics *metrics.Circulation
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, fines FineAssessor, log *logger.Logger, m *metrics.Circulation) *Usecase {
	return &Usecase{uow: tx, fines: fines, log: log, metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

// RequestReturn checks in borrowed copies. Copies flagged damaged leave circulation with a damaged
// fine; everything returned after the due day carries a late fine per copy.
func (u *Usecase) RequestReturn(ctx context.Context, in ReturnInput) (*ResultDTO, error) {
	if len(in.DetailIDs) == 0 {
		return nil, apperr.Validation("borrow_detail_ids must not be empty")
	}
	requested := make(map[string]struct{}, len(in.DetailIDs))
	for _, did := range in.DetailIDs {
		if _, dup := requested[did]; dup {
			return nil, apperr.Validation("borrow detail %s listed twice", did).
				WithDetails(map[string]any{"borrow_detail_id": did})
		}
		requested[did] = struct{}{}
	}
	damaged := make(map[string]struct{}, len(in.DamagedDetailIDs))
	for _, did := range in.DamagedDetailIDs {
		if _, ok := requested[did]; !ok {
			return nil, apperr.Validation("damaged detail %s is not part of this return", did).
				WithDetails(map[string]any{"borrow_detail_id": did})
		}
		damaged[did] = struct{}{}
	}

	var out *ResultDTO
	err := u.withBorrowTx(ctx, in.BorrowID, func(r uow.Repos, b *domainBorrow.Borrow, l *loan.Loan) error {
		now := u.now()
		targets := make([]*domainBorrow.Detail, 0, len(in.DetailIDs))
		for _, did := range in.DetailIDs {
			d := b.DetailByDetailID(did)
			if d == nil {
				return apperr.NotFound("borrow detail %s not found in borrow %s", did, b.BorrowID).
					WithDetails(map[string]any{"borrow_id": b.BorrowID, "borrow_detail_id": did})
			}
			if d.Status != domainBorrow.DetailBorrowed {
				return apperr.InvalidState("borrow detail %s is %s", did, d.Status).
					WithDetails(map[string]any{"borrow_detail_id": did, "status": d.Status})
			}
			targets = append(targets, d)
		}

		daysLate := domainBorrow.DaysOverdue(b.ReturnDate, now)
		var raised []domainFine.Fine
		for _, d := range targets {
			if err := d.MarkReturned(now); err != nil {
				return err
			}
			if err := r.Borrows.SaveDetail(ctx, d); err != nil {
				return err
			}
			if _, isDamaged := damaged[d.DetailID]; isDamaged {
				if err := registry.MarkDamaged(ctx, r.Copies, d.BookCopyID); err != nil {
					return err
				}
				f, err := u.fines.AutoAssess(ctx, r, fine.AutoAssessParams{Borrow: b, Detail: d, Kind: domainFine.KindDamaged, Note: "returned damaged"})
				if err != nil {
					return err
				}
				raised = append(raised, *f)
			} else if err := registry.Release(ctx, r.Copies, d.BookCopyID); err != nil {
				return err
			}
			if daysLate > 0 {
				f, err := u.fines.AutoAssess(ctx, r, fine.AutoAssessParams{
					Borrow:   b,
					Detail:   d,
					Kind:     domainFine.KindLate,
					DaysLate: daysLate,
					Note:     fmt.Sprintf("returned %d day(s) late", daysLate),
				})
				if err != nil {
					return err
				}
				raised = append(raised, *f)
			}
		}
		res, err := u.finish(ctx, r, b, l, now)
		if err != nil {
			return err
		}
		if res.Fines, err = fine.BuildDTOs(ctx, r, raised); err != nil {
			return err
		}
		out = res
		return nil
	})
	u.metrics.Observe("request_return", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithFields(ctx, map[string]any{
		"borrow_id":   in.BorrowID,
		"returned":    len(in.DetailIDs),
		"damaged":     len(in.DamagedDetailIDs),
		"loan_status": out.Borrow.LoanStatus,
	}), "copies returned")
	return out, nil
}

// ReportLost records the copy as lost and always charges a lost fine.
func (u *Usecase) ReportLost(ctx context.Context, in LostInput) (*ResultDTO, error) {
	var out *ResultDTO
	err := u.withBorrowTx(ctx, in.BorrowID, func(r uow.Repos, b *domainBorrow.Borrow, l *loan.Loan) error {
		c, err := r.Copies.GetByCopyID(ctx, in.BookCopyID)
		if err != nil {
			return err
		}
		d := b.DetailByCopy(c.ID)
		if d == nil {
			return apperr.NotFound("book copy %s is not part of borrow %s", in.BookCopyID, b.BorrowID).
				WithDetails(map[string]any{"borrow_id": b.BorrowID, "book_copy_id": in.BookCopyID})
		}
		if d.Status != domainBorrow.DetailBorrowed {
			return apperr.InvalidState("borrow detail %s is %s", d.DetailID, d.Status).
				WithDetails(map[string]any{"borrow_detail_id": d.DetailID, "status": d.Status})
		}

		now := u.now()
		notes := strings.TrimSpace(in.Notes)
		if err := d.MarkLost(notes); err != nil {
			return err
		}
		if err := r.Borrows.SaveDetail(ctx, d); err != nil {
			return err
		}
		if err := registry.MarkLost(ctx, r.Copies, d.BookCopyID); err != nil {
			return err
		}
		f, err := u.fines.AutoAssess(ctx, r, fine.AutoAssessParams{Borrow: b, Detail: d, Kind: domainFine.KindLost, Note: notes})
		if err != nil {
			return err
		}
		res, err := u.finish(ctx, r, b, l, now)
		if err != nil {
			return err
		}
		if res.Fines, err = fine.BuildDTOs(ctx, r, []domainFine.Fine{*f}); err != nil {
			return err
		}
		out = res
		return nil
	})
	u.metrics.Observe("report_lost", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithFields(ctx, map[string]any{
		"borrow_id":    in.BorrowID,
		"book_copy_id": in.BookCopyID,
		"loan_status":  out.Borrow.LoanStatus,
	}), "copy reported lost")
	return out, nil
}

// withBorrowTx locks the loan row before the borrow row, the same order every loan-scoped operation uses.
func (u *Usecase) withBorrowTx(ctx context.Context, borrowID string, fn func(r uow.Repos, b *domainBorrow.Borrow, l *loan.Loan) error) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ref, err := r.Borrows.GetByBorrowID(ctx, borrowID)
		if err != nil {
			return err
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, ref.LoanID)
		if err != nil {
			return err
		}
		if !l.Status.IsCirculating() {
			return apperr.InvalidState("loan %s is %s, its copies are not out", l.LoanID, l.Status).
				WithDetails(map[string]any{"loan_id": l.LoanID, "status": l.Status})
		}
		b, err := r.Borrows.GetByBorrowIDForUpdate(ctx, borrowID)
		if err != nil {
			return err
		}
		if b.Status != domainBorrow.StatusOpen {
			return apperr.InvalidState("borrow %s is closed", b.BorrowID).
				WithDetails(map[string]any{"borrow_id": b.BorrowID, "status": b.Status})
		}
		return fn(r, b, l)
	})
}

// finish closes the borrow when nothing is out and re-derives the loan status.
func (u *Usecase) finish(ctx context.Context, r uow.Repos, b *domainBorrow.Borrow, l *loan.Loan, now time.Time) (*ResultDTO, error) {
	if b.CloseIfComplete(now) {
		if err := r.Borrows.Save(ctx, b); err != nil {
			return nil, err
		}
	}
	l.SetStatus(domainBorrow.DeriveLoanStatus(l.Status, b.Details), now)
	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}
	dto, err := borrow.BuildDTO(ctx, r, b, l)
	if err != nil {
		return nil, err
	}
	return &ResultDTO{Borrow: *dto, Fines: []fine.FineDTO{}}, nil
}

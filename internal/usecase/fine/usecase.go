package fine

import (
	"context"
	"strings"
	"time"

	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/loan"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/id"
	"library-circulation/pkg/logger"

	"github.com/shopspring/decimal"
)

type Usecase struct {
	uow     uow.UnitOfWork
	log     *logger.Logger
	metrics *metrics.Circulation
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, log *logger.Logger, m *metrics.Circulation) *Usecase {
	return &Usecase{uow: tx, log: log, metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

// AutoAssessParams describes a fine raised by the return processor.
type AutoAssessParams struct {
	Borrow   *borrow.Borrow
	Detail   *borrow.Detail
	Kind     fine.Kind
	DaysLate int
	Note     string
}

// AutoAssess charges the first catalog entry of p.Kind inside the caller's transaction.
// A missing catalog entry is NOT_FOUND so the caller rolls back.
func (u *Usecase) AutoAssess(ctx context.Context, r uow.Repos, p AutoAssessParams) (*fine.Fine, error) {
	ft, err := r.FineTypes.FirstByKind(ctx, p.Kind)
	if err != nil {
		if apperr.HasCode(errmap.From(err), apperr.CodeNotFound) {
			return nil, apperr.NotFound("no fine type configured for %s", p.Kind).
				WithDetails(map[string]any{"type": p.Kind, "borrow_detail_id": p.Detail.DetailID})
		}
		return nil, err
	}
	return u.create(ctx, r, p.Borrow, p.Detail, ft, ft.AmountFor(p.DaysLate), p.Note)
}

func (u *Usecase) create(ctx context.Context, r uow.Repos, b *borrow.Borrow, d *borrow.Detail, ft *fine.FineType, amount decimal.Decimal, note string) (*fine.Fine, error) {
	f := &fine.Fine{
		FineID:         id.NewID32(),
		LoanID:         b.LoanID,
		BorrowID:       b.ID,
		BorrowDetailID: d.ID,
		FineTypeID:     ft.ID,
		Amount:         amount.Round(2),
		Status:         fine.StatusUnpaid,
	}
	if note != "" {
		f.Note = &note
	}
	if err := r.Fines.Create(ctx, f); err != nil {
		return nil, err
	}
	u.metrics.IncFineAssessed(string(ft.Type))
	u.log.Info(u.log.WithFields(ctx, map[string]any{
		"fine_id":          f.FineID,
		"borrow_detail_id": d.DetailID,
		"type":             ft.Type,
		"amount":           f.Amount.StringFixed(2),
	}), "fine assessed")
	return f, nil
}

// Assess raises a manual fine against a borrow detail.
func (u *Usecase) Assess(ctx context.Context, in AssessInput) (*FineDTO, error) {
	if in.Amount != nil && in.Amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative").
			WithDetails(map[string]any{"amount": in.Amount.String()})
	}
	var out *FineDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ref, err := r.Borrows.GetDetailByDetailID(ctx, in.BorrowDetailID)
		if err != nil {
			return err
		}
		b, err := r.Borrows.GetByID(ctx, ref.BorrowID)
		if err != nil {
			return err
		}
		ft, err := r.FineTypes.GetByFineTypeID(ctx, in.FineTypeID)
		if err != nil {
			return err
		}
		amount := ft.Amount
		if in.Amount != nil {
			amount = *in.Amount
		}
		f, err := u.create(ctx, r, b, ref, ft, amount, strings.TrimSpace(in.Note))
		if err != nil {
			return err
		}
		dtos, err := BuildDTOs(ctx, r, []fine.Fine{*f})
		if err != nil {
			return err
		}
		out = &dtos[0]
		return nil
	})
	u.metrics.Observe("assess_fine", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

func (u *Usecase) MarkAsPaid(ctx context.Context, fineID string) (*FineDTO, error) {
	return u.settle(ctx, "pay_fine", fineID, func(f *fine.Fine, at time.Time) error { return f.Pay(at) })
}

func (u *Usecase) Waive(ctx context.Context, fineID string) (*FineDTO, error) {
	return u.settle(ctx, "waive_fine", fineID, func(f *fine.Fine, at time.Time) error { return f.Waive(at) })
}

func (u *Usecase) settle(ctx context.Context, op, fineID string, apply func(*fine.Fine, time.Time) error) (*FineDTO, error) {
	var out *FineDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Fines.GetByFineIDForUpdate(ctx, fineID)
		if err != nil {
			return err
		}
		if err := apply(f, u.now()); err != nil {
			return apperr.Wrap(apperr.CodeInvalidState, err, err.Error()).
				WithDetails(map[string]any{"fine_id": f.FineID, "status": f.Status})
		}
		if err := r.Fines.Save(ctx, f); err != nil {
			return err
		}
		dtos, err := BuildDTOs(ctx, r, []fine.Fine{*f})
		if err != nil {
			return err
		}
		out = &dtos[0]
		return nil
	})
	u.metrics.Observe(op, err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithFields(ctx, map[string]any{"fine_id": fineID, "status": out.Status}), "fine settled")
	return out, nil
}

// Delete removes a fine raised in error. Settled fines are kept.
func (u *Usecase) Delete(ctx context.Context, fineID string) error {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Fines.GetByFineIDForUpdate(ctx, fineID)
		if err != nil {
			return err
		}
		if !f.CanDelete() {
			return apperr.InvalidState("fine %s is %s and cannot be deleted", f.FineID, f.Status).
				WithDetails(map[string]any{"fine_id": f.FineID, "status": f.Status})
		}
		return r.Fines.Delete(ctx, f.ID)
	})
	u.metrics.Observe("delete_fine", err)
	return errmap.From(err)
}

func (u *Usecase) Get(ctx context.Context, fineID string) (*FineDTO, error) {
	var out *FineDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Fines.GetByFineID(ctx, fineID)
		if err != nil {
			return err
		}
		dtos, err := BuildDTOs(ctx, r, []fine.Fine{*f})
		if err != nil {
			return err
		}
		out = &dtos[0]
		return nil
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

func (u *Usecase) ListByBorrow(ctx context.Context, borrowID string) ([]FineDTO, error) {
	var out []FineDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Borrows.GetByBorrowID(ctx, borrowID)
		if err != nil {
			return err
		}
		fines, err := r.Fines.ListByBorrowID(ctx, b.ID)
		if err != nil {
			return err
		}
		out, err = BuildDTOs(ctx, r, fines)
		return err
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

// BuildDTOs resolves public ids, caching each parent row once.
func BuildDTOs(ctx context.Context, r uow.Repos, fines []fine.Fine) ([]FineDTO, error) {
	borrows := map[uint64]*borrow.Borrow{}
	loans := map[uint64]*loan.Loan{}
	types := map[uint64]*fine.FineType{}

	out := make([]FineDTO, 0, len(fines))
	for _, f := range fines {
		b, ok := borrows[f.BorrowID]
		if !ok {
			var err error
			if b, err = r.Borrows.GetByID(ctx, f.BorrowID); err != nil {
				return nil, err
			}
			borrows[f.BorrowID] = b
		}
		l, ok := loans[f.LoanID]
		if !ok {
			var err error
			if l, err = r.Loans.GetByID(ctx, f.LoanID); err != nil {
				return nil, err
			}
			loans[f.LoanID] = l
		}
		ft, ok := types[f.FineTypeID]
		if !ok {
			var err error
			if ft, err = r.FineTypes.GetByID(ctx, f.FineTypeID); err != nil {
				return nil, err
			}
			types[f.FineTypeID] = ft
		}

		dto := FineDTO{
			FineID:     f.FineID,
			LoanID:     l.LoanID,
			BorrowID:   b.BorrowID,
			FineTypeID: ft.FineTypeID,
			Type:       string(ft.Type),
			Amount:     f.Amount,
			Status:     string(f.Status),
			PaidAt:     f.PaidAt,
			WaivedAt:   f.WaivedAt,
			Note:       f.Note,
			CreatedAt:  f.CreatedAt,
		}
		for _, d := range b.Details {
			if d.ID == f.BorrowDetailID {
				dto.BorrowDetailID = d.DetailID
				break
			}
		}
		out = append(out, dto)
	}
	return out, nil
}

package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/domain/loan"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/internal/usecase/registry"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/id"
	"library-circulation/pkg/logger"
)

const (
	NoteReservedElsewhere = "copy no longer available: reserved by another loan"
	NoteCopyLost          = "copy no longer available: reported lost"
	NoteCopyDamaged       = "copy no longer available: marked damaged"
)

// unavailableNote explains a lost reservation by the status the copy was found in.
func unavailableNote(s bookcopy.Status) string {
	switch s {
	case bookcopy.StatusLost:
		return NoteCopyLost
	case bookcopy.StatusDamaged:
		return NoteCopyDamaged
	default:
		return NoteReservedElsewhere
	}
}

type Usecase struct {
	uow     uow.UnitOfWork
	log     *logger.Logger
	metrics *metrics.Circulation
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, log *logger.Logger, m *metrics.Circulation) *Usecase {
	return &Usecase{uow: tx, log: log, metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

// CreateLoan records a request for copies. Copies are checked but not reserved.
func (u *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	now := u.now()
	due, err := u.validateCreate(in, now)
	if err != nil {
		return nil, err
	}

	l := &loan.Loan{
		LoanID:          id.NewID32(),
		UserID:          in.UserID,
		LoanDate:        truncateDay(now),
		DueDate:         due,
		Status:          loan.StatusPending,
		ApprovalStatus:  loan.ApprovalPending,
		StatusUpdatedAt: now,
	}
	var out *LoanDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		copies, err := r.Copies.ListByCopyIDs(ctx, in.BookCopyIDs)
		if err != nil {
			return err
		}
		byPublic := make(map[string]bookcopy.BookCopy, len(copies))
		for _, c := range copies {
			byPublic[c.CopyID] = c
		}
		for _, cid := range in.BookCopyIDs {
			c, ok := byPublic[cid]
			if !ok {
				return apperr.NotFound("book copy %s not found", cid).
					WithDetails(map[string]any{"book_copy_id": cid})
			}
			if c.Status != bookcopy.StatusAvailable {
				return apperr.Validation("book copy %s is %s", cid, c.Status).
					WithDetails(map[string]any{"book_copy_id": cid, "status": c.Status})
			}
			l.Details = append(l.Details, loan.Detail{
				DetailID:       id.NewID32(),
				BookCopyID:     c.ID,
				ApprovalStatus: loan.DetailPending,
			})
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		out = toLoanDTO(l, copies)
		return nil
	})
	u.metrics.Observe("create_loan", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.loanCtx(ctx, l), "loan requested")
	return out, nil
}

func (u *Usecase) validateCreate(in CreateLoanInput, now time.Time) (time.Time, error) {
	if !id.IsID32(in.UserID) {
		return time.Time{}, apperr.Validation("user id must be 32 lowercase hex characters").
			WithDetails(map[string]any{"user_id": in.UserID})
	}
	if len(in.BookCopyIDs) == 0 {
		return time.Time{}, apperr.Validation("book_copy_ids must not be empty")
	}
	seen := make(map[string]struct{}, len(in.BookCopyIDs))
	for _, cid := range in.BookCopyIDs {
		if _, dup := seen[cid]; dup {
			return time.Time{}, apperr.Validation("book copy %s requested twice", cid).
				WithDetails(map[string]any{"book_copy_id": cid})
		}
		seen[cid] = struct{}{}
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return time.Time{}, apperr.Validation("due_date is required")
	}
	due, err := time.ParseInLocation(DateLayout, in.DueDate, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("due_date must be YYYY-MM-DD").
			WithDetails(map[string]any{"due_date": in.DueDate})
	}
	if due.Before(truncateDay(now)) {
		return time.Time{}, apperr.Validation("due_date %s is in the past", in.DueDate).
			WithDetails(map[string]any{"due_date": in.DueDate})
	}
	return due, nil
}

// ApproveLoan approves every pending detail. A copy taken by a concurrent approval
// rejects only that detail; it is committed and reported in Conflicts.
func (u *Usecase) ApproveLoan(ctx context.Context, loanID string) (*ApprovalResultDTO, error) {
	var out *ApprovalResultDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.Status.IsPreBorrow() || !l.HasPendingDetails() {
			return apperr.InvalidState("loan %s is %s with no pending details to approve", l.LoanID, l.Status).
				WithDetails(map[string]any{"loan_id": l.LoanID, "status": l.Status})
		}
		var conflicts []ReservationConflict
		for i := range l.Details {
			d := &l.Details[i]
			if d.ApprovalStatus != loan.DetailPending {
				continue
			}
			c, err := u.approveDetail(ctx, r, l, d)
			if err != nil {
				return err
			}
			if c != nil {
				conflicts = append(conflicts, *c)
			}
		}
		res, err := u.finishApproval(ctx, r, l, conflicts)
		out = res
		return err
	})
	u.metrics.Observe("approve_loan", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithFields(ctx, map[string]any{
		"loan_id":         out.Loan.LoanID,
		"approval_status": out.Loan.ApprovalStatus,
		"conflicts":       len(out.Conflicts),
	}), "loan approved")
	return out, nil
}

// ApproveLoanDetail approves a single pending detail of a pre-borrow loan.
func (u *Usecase) ApproveLoanDetail(ctx context.Context, detailID string) (*ApprovalResultDTO, error) {
	var out *ApprovalResultDTO
	err := u.withDetailTx(ctx, detailID, func(r uow.Repos, l *loan.Loan, d *loan.Detail) error {
		if d.ApprovalStatus != loan.DetailPending {
			return apperr.InvalidState("loan detail %s is %s, only pending details can be approved", d.DetailID, d.ApprovalStatus).
				WithDetails(map[string]any{"detail_id": d.DetailID, "approval_status": d.ApprovalStatus})
		}
		c, err := u.approveDetail(ctx, r, l, d)
		if err != nil {
			return err
		}
		var conflicts []ReservationConflict
		if c != nil {
			conflicts = append(conflicts, *c)
		}
		res, err := u.finishApproval(ctx, r, l, conflicts)
		out = res
		return err
	})
	u.metrics.Observe("approve_loan_detail", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

// approveDetail reserves the detail's copy. A lost race rejects the detail and returns the conflict.
func (u *Usecase) approveDetail(ctx context.Context, r uow.Repos, l *loan.Loan, d *loan.Detail) (*ReservationConflict, error) {
	rerr := registry.Reserve(ctx, r.Copies, d.BookCopyID)
	switch {
	case rerr == nil:
		if err := d.Approve(); err != nil {
			return nil, err
		}
		return nil, r.Loans.SaveDetail(ctx, d)
	case apperr.HasCode(rerr, apperr.CodeConflict):
		found, _ := registry.FoundStatus(rerr)
		note := unavailableNote(found)
		if err := d.Reject(note); err != nil {
			return nil, err
		}
		if err := r.Loans.SaveDetail(ctx, d); err != nil {
			return nil, err
		}
		u.metrics.IncReservationConflict()
		conflict := &ReservationConflict{DetailID: d.DetailID, Note: note}
		if details, ok := apperr.As(rerr).Details().(map[string]any); ok {
			conflict.BookCopyID, _ = details["book_copy_id"].(string)
		}
		u.log.Warn(u.log.WithFields(ctx, map[string]any{
			"loan_id":      l.LoanID,
			"detail_id":    d.DetailID,
			"book_copy_id": conflict.BookCopyID,
			"copy_status":  found,
		}), "copy could not be reserved")
		return conflict, nil
	default:
		return nil, rerr
	}
}

func (u *Usecase) finishApproval(ctx context.Context, r uow.Repos, l *loan.Loan, conflicts []ReservationConflict) (*ApprovalResultDTO, error) {
	l.Recompute(u.now())
	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}
	dto, err := u.loadDTO(ctx, r, l)
	if err != nil {
		return nil, err
	}
	if conflicts == nil {
		conflicts = []ReservationConflict{}
	}
	return &ApprovalResultDTO{Loan: *dto, Conflicts: conflicts}, nil
}

// RejectLoan rejects every non-rejected detail, releasing approved copies. Terminal.
func (u *Usecase) RejectLoan(ctx context.Context, in RejectLoanInput) (*LoanDTO, error) {
	reason := strings.TrimSpace(in.RejectionReason)
	var out *LoanDTO
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.Status.IsPreBorrow() {
			return apperr.InvalidState("loan %s is %s and can no longer be rejected", l.LoanID, l.Status).
				WithDetails(map[string]any{"loan_id": l.LoanID, "status": l.Status})
		}
		for i := range l.Details {
			d := &l.Details[i]
			if d.ApprovalStatus == loan.DetailRejected {
				continue
			}
			if err := u.rejectDetail(ctx, r, d, reason); err != nil {
				return err
			}
		}
		if reason != "" {
			l.RejectionReason = &reason
		}
		l.Recompute(u.now())
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto, err := u.loadDTO(ctx, r, l)
		out = dto
		return err
	})
	u.metrics.Observe("reject_loan", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithField(ctx, "loan_id", in.LoanID), "loan rejected")
	return out, nil
}

func (u *Usecase) RejectLoanDetail(ctx context.Context, in RejectDetailInput) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.withDetailTx(ctx, in.DetailID, func(r uow.Repos, l *loan.Loan, d *loan.Detail) error {
		if d.ApprovalStatus == loan.DetailRejected {
			return apperr.InvalidState("loan detail %s is already rejected", d.DetailID).
				WithDetails(map[string]any{"detail_id": d.DetailID})
		}
		if err := u.rejectDetail(ctx, r, d, strings.TrimSpace(in.Note)); err != nil {
			return err
		}
		l.Recompute(u.now())
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto, err := u.loadDTO(ctx, r, l)
		out = dto
		return err
	})
	u.metrics.Observe("reject_loan_detail", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

func (u *Usecase) rejectDetail(ctx context.Context, r uow.Repos, d *loan.Detail, note string) error {
	if d.ApprovalStatus == loan.DetailApproved {
		if err := registry.Release(ctx, r.Copies, d.BookCopyID); err != nil {
			return err
		}
	}
	if err := d.Reject(note); err != nil {
		return err
	}
	return r.Loans.SaveDetail(ctx, d)
}

// withDetailTx resolves the detail's loan, locks it, and hands over the detail inside l.Details.
func (u *Usecase) withDetailTx(ctx context.Context, detailID string, fn func(r uow.Repos, l *loan.Loan, d *loan.Detail) error) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ref, err := r.Loans.GetDetailByDetailID(ctx, detailID)
		if err != nil {
			return err
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, ref.LoanID)
		if err != nil {
			return err
		}
		if !l.Status.IsPreBorrow() {
			return apperr.InvalidState("loan %s is %s, details can no longer change", l.LoanID, l.Status).
				WithDetails(map[string]any{"loan_id": l.LoanID, "detail_id": detailID, "status": l.Status})
		}
		d := l.DetailByDetailID(detailID)
		if d == nil {
			return fmt.Errorf("%w: %s", loan.ErrDetailNotFound, detailID)
		}
		return fn(r, l, d)
	})
}

func (u *Usecase) GetLoan(ctx context.Context, loanID string) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		out, err = u.loadDTO(ctx, r, l)
		return err
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

func (u *Usecase) ListLoansByUser(ctx context.Context, userID string) ([]LoanDTO, error) {
	if !id.IsID32(userID) {
		return nil, apperr.Validation("user id must be 32 lowercase hex characters")
	}
	out := []LoanDTO{}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		loans, err := r.Loans.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		for i := range loans {
			dto, err := u.loadDTO(ctx, r, &loans[i])
			if err != nil {
				return err
			}
			out = append(out, *dto)
		}
		return nil
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

func (u *Usecase) loadDTO(ctx context.Context, r uow.Repos, l *loan.Loan) (*LoanDTO, error) {
	ids := make([]uint64, 0, len(l.Details))
	for _, d := range l.Details {
		ids = append(ids, d.BookCopyID)
	}
	copies, err := r.Copies.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toLoanDTO(l, copies), nil
}

func (u *Usecase) loanCtx(ctx context.Context, l *loan.Loan) context.Context {
	return u.log.WithFields(ctx, map[string]any{"loan_id": l.LoanID, "status": l.Status})
}

func toLoanDTO(l *loan.Loan, copies []bookcopy.BookCopy) *LoanDTO {
	publicID := make(map[uint64]string, len(copies))
	for _, c := range copies {
		publicID[c.ID] = c.CopyID
	}
	out := &LoanDTO{
		LoanID:          l.LoanID,
		UserID:          l.UserID,
		LoanDate:        l.LoanDate.UTC().Format(DateLayout),
		DueDate:         l.DueDate.UTC().Format(DateLayout),
		Status:          string(l.Status),
		ApprovalStatus:  string(l.ApprovalStatus),
		RejectionReason: l.RejectionReason,
		StatusUpdatedAt: l.StatusUpdatedAt,
		CreatedAt:       l.CreatedAt,
		Details:         make([]LoanDetailDTO, 0, len(l.Details)),
	}
	for _, d := range l.Details {
		out.Details = append(out.Details, LoanDetailDTO{
			DetailID:       d.DetailID,
			BookCopyID:     publicID[d.BookCopyID],
			ApprovalStatus: string(d.ApprovalStatus),
			Note:           d.Note,
		})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

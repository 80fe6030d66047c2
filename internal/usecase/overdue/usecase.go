package overdue

import (
	"context"
	"time"

	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/loan"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/pkg/logger"

	"go.uber.org/multierr"
)

var sweepStatuses = []loan.Status{loan.StatusBorrowed, loan.StatusChecking}

type Result struct {
	Scanned int      `json:"scanned"`
	Marked  []string `json:"marked"`
}

type Usecase struct {
	uow     uow.UnitOfWork
	log     *logger.Logger
	metrics *metrics.Circulation
}

func NewUsecase(tx uow.UnitOfWork, log *logger.Logger, m *metrics.Circulation) *Usecase {
	return &Usecase{uow: tx, log: log, metrics: m}
}

// MarkOverdue flips circulating loans past their due day to late. Every loan commits on its own;
// failures are collected and returned together after the pass.
func (u *Usecase) MarkOverdue(ctx context.Context, now time.Time) (res *Result, err error) {
	started := time.Now()
	defer func() { u.metrics.ObserveSweep(time.Since(started), err) }()

	now = now.UTC()
	var candidates []loan.Loan
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var lerr error
		candidates, lerr = r.Loans.ListDueOnOrBefore(ctx, now.AddDate(0, 0, -1), sweepStatuses)
		return lerr
	})
	if err != nil {
		return nil, errmap.From(err)
	}

	res = &Result{Scanned: len(candidates), Marked: []string{}}
	for _, c := range candidates {
		if ctx.Err() != nil {
			err = multierr.Append(err, ctx.Err())
			break
		}
		marked, lerr := u.markOne(ctx, c.LoanID, now)
		if lerr != nil {
			u.log.Error(u.log.WithField(ctx, "loan_id", c.LoanID), "overdue sweep failed for loan", lerr)
			err = multierr.Append(err, errmap.From(lerr))
			continue
		}
		if marked {
			res.Marked = append(res.Marked, c.LoanID)
		}
	}
	u.log.Info(u.log.WithFields(ctx, map[string]any{
		"scanned": res.Scanned,
		"marked":  len(res.Marked),
		"failed":  len(multierr.Errors(err)),
	}), "overdue sweep finished")
	return res, err
}

func (u *Usecase) markOne(ctx context.Context, loanID string, now time.Time) (bool, error) {
	marked := false
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		// the row may have moved since the scan
		if l.Status != loan.StatusBorrowed && l.Status != loan.StatusChecking {
			return nil
		}
		if !l.IsOverdue(now) {
			return nil
		}
		b, err := r.Borrows.GetByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		// settled with a loss: nothing is out any more
		if b.Status != borrow.StatusOpen {
			return nil
		}
		l.SetStatus(loan.StatusLate, now)
		marked = true
		return r.Loans.Save(ctx, l)
	})
	u.metrics.Observe("mark_overdue", err)
	return marked && err == nil, err
}

package borrow

import (
	"context"
	"testing"
	"time"

	"library-circulation/internal/adapter/repository/mysql"
	"library-circulation/internal/metrics"
	"library-circulation/internal/testutil/testdb"
	"library-circulation/internal/usecase/loan"
	"library-circulation/internal/usecase/registry"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/id"
	"library-circulation/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	borrows *Usecase
	loans   *loan.Usecase
	copies  *registry.Usecase
	user    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tx := mysql.NewGormUoW(testdb.Open(t))
	m := metrics.New(nil)
	u := NewUsecase(tx, logger.Nop(), m)
	u.now = func() time.Time { return time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC) }
	return &fixture{
		borrows: u,
		loans:   loan.NewUsecase(tx, logger.Nop(), m),
		copies:  registry.NewUsecase(tx, logger.Nop(), m),
		user:    id.NewID32(),
	}
}

func (f *fixture) copies2(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	a, err := f.copies.Register(ctx, registry.RegisterCopyInput{BookID: "isbn-1", CopyCode: "A"})
	require.NoError(t, err)
	b, err := f.copies.Register(ctx, registry.RegisterCopyInput{BookID: "isbn-1", CopyCode: "B"})
	require.NoError(t, err)
	return a.CopyID, b.CopyID
}

func (f *fixture) request(t *testing.T, copyIDs ...string) *loan.LoanDTO {
	t.Helper()
	due := time.Now().UTC().AddDate(0, 0, 14).Format(loan.DateLayout)
	l, err := f.loans.CreateLoan(context.Background(), loan.CreateLoanInput{UserID: f.user, BookCopyIDs: copyIDs, DueDate: due})
	require.NoError(t, err)
	return l
}

func TestPartialApprovalToBorrow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.copies2(t)
	l := f.request(t, a, b)

	res, err := f.loans.ApproveLoanDetail(ctx, l.Details[0].DetailID)
	require.NoError(t, err)
	assert.Equal(t, "partial", res.Loan.ApprovalStatus)

	rl, err := f.loans.RejectLoanDetail(ctx, loan.RejectDetailInput{DetailID: l.Details[1].DetailID})
	require.NoError(t, err)
	assert.Equal(t, "partial", rl.ApprovalStatus)

	br, err := f.borrows.MarkAsBorrowed(ctx, l.LoanID)
	require.NoError(t, err)
	assert.Equal(t, "open", br.Status)
	assert.Equal(t, "borrowed", br.LoanStatus)
	assert.Equal(t, l.DueDate, br.ReturnDate)
	require.Len(t, br.Details, 1)
	assert.Equal(t, a, br.Details[0].BookCopyID)
	assert.Equal(t, "borrowed", br.Details[0].Status)
	assert.Len(t, br.BorrowCode, 36)

	byCode, err := f.borrows.GetBorrowByCode(ctx, br.BorrowCode)
	require.NoError(t, err)
	assert.Equal(t, br.BorrowID, byCode.BorrowID)

	got, err := f.borrows.GetBorrow(ctx, br.BorrowID)
	require.NoError(t, err)
	assert.Equal(t, l.LoanID, got.LoanID)
}

func TestMarkAsBorrowed_OnlyFromWaiting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.copies2(t)

	pending := f.request(t, a)
	_, err := f.borrows.MarkAsBorrowed(ctx, pending.LoanID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState), "pending loan: %v", err)

	waiting := f.request(t, b)
	_, err = f.loans.ApproveLoan(ctx, waiting.LoanID)
	require.NoError(t, err)
	_, err = f.borrows.MarkAsBorrowed(ctx, waiting.LoanID)
	require.NoError(t, err)

	_, err = f.borrows.MarkAsBorrowed(ctx, waiting.LoanID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState), "second pickup: %v", err)

	rejected := f.request(t, a)
	_, err = f.loans.RejectLoan(ctx, loan.RejectLoanInput{LoanID: rejected.LoanID})
	require.NoError(t, err)
	_, err = f.borrows.MarkAsBorrowed(ctx, rejected.LoanID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState), "rejected loan: %v", err)

	_, err = f.borrows.MarkAsBorrowed(ctx, id.NewID32())
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestMarkAsBorrowed_RejectsStillPendingDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.copies2(t)
	l := f.request(t, a, b)

	_, err := f.loans.ApproveLoanDetail(ctx, l.Details[0].DetailID)
	require.NoError(t, err)

	br, err := f.borrows.MarkAsBorrowed(ctx, l.LoanID)
	require.NoError(t, err)
	require.Len(t, br.Details, 1)

	after, err := f.loans.GetLoan(ctx, l.LoanID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", after.Details[1].ApprovalStatus)
	require.NotNil(t, after.Details[1].Note)
	assert.Equal(t, NoteNotApprovedInTime, *after.Details[1].Note)
	assert.Equal(t, "partial", after.ApprovalStatus)
	assert.Equal(t, "borrowed", after.Status)

	copyB, err := f.copies.Get(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "available", copyB.Status)
}

func TestGetBorrow_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.borrows.GetBorrow(context.Background(), id.NewID32())
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	_, err = f.borrows.GetBorrowByCode(context.Background(), "no-such-code")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

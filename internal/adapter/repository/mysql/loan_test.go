package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-circulation/internal/domain/bookcopy"
	domain "library-circulation/internal/domain/loan"
	"library-circulation/internal/testutil/testdb"
	"library-circulation/pkg/id"

	"gorm.io/gorm"
)

func makeLoan(t *testing.T, db *gorm.DB, userID string, due time.Time, copies ...string) *domain.Loan {
	t.Helper()
	copyRepo := NewBookCopyRepository(db)
	now := time.Now().UTC()
	l := &domain.Loan{
		LoanID:          id.NewID32(),
		UserID:          userID,
		LoanDate:        now,
		DueDate:         due,
		Status:          domain.StatusPending,
		ApprovalStatus:  domain.ApprovalPending,
		StatusUpdatedAt: now,
	}
	for _, code := range copies {
		c := seedCopy(t, copyRepo, code, bookcopy.StatusAvailable)
		l.Details = append(l.Details, domain.Detail{
			DetailID:       id.NewID32(),
			BookCopyID:     c.ID,
			ApprovalStatus: domain.DetailPending,
		})
	}
	return l
}

func TestLoan_CreateAndGetWithDetails(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	user := id.NewID32()
	l := makeLoan(t, db, user, time.Now().UTC().AddDate(0, 0, 7), "A", "B")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 || l.Details[0].LoanID != l.ID {
		t.Fatalf("Create did not link details: %+v", l)
	}

	got, err := repo.GetByLoanID(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.UserID != user || len(got.Details) != 2 {
		t.Errorf("unexpected loan: %+v", got)
	}

	locked, err := repo.GetByLoanIDForUpdate(ctx, l.LoanID)
	if err != nil || len(locked.Details) != 2 {
		t.Fatalf("GetByLoanIDForUpdate: %v", err)
	}
	byPK, err := repo.GetByIDForUpdate(ctx, l.ID)
	if err != nil || byPK.LoanID != l.LoanID {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}

	d, err := repo.GetDetailByDetailID(ctx, l.Details[1].DetailID)
	if err != nil || d.LoanID != l.ID {
		t.Fatalf("GetDetailByDetailID: %+v, %v", d, err)
	}
}

func TestLoan_SaveDetailAndStatus(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(t, db, id.NewID32(), time.Now().UTC().AddDate(0, 0, 7), "A")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	note := "scratched"
	l.Details[0].ApprovalStatus = domain.DetailRejected
	l.Details[0].Note = &note
	if err := repo.SaveDetail(ctx, &l.Details[0]); err != nil {
		t.Fatalf("SaveDetail: %v", err)
	}
	l.Recompute(time.Now().UTC())
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.Status != domain.StatusRejected || got.ApprovalStatus != domain.ApprovalRejected {
		t.Fatalf("got %s/%s", got.Status, got.ApprovalStatus)
	}
	if got.Details[0].Note == nil || *got.Details[0].Note != note {
		t.Fatalf("note not stored: %+v", got.Details[0])
	}
}

func TestLoan_NotFound(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByLoanID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetDetailByDetailID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"); !errors.Is(err, domain.ErrDetailNotFound) {
		t.Fatalf("expected ErrDetailNotFound, got %v", err)
	}
}

func TestLoan_ListByUserAndDue(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	user := id.NewID32()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	early := makeLoan(t, db, user, base, "A")
	early.Status = domain.StatusBorrowed
	late := makeLoan(t, db, user, base.AddDate(0, 0, 10), "B")
	late.Status = domain.StatusBorrowed
	pending := makeLoan(t, db, id.NewID32(), base, "C")
	for _, l := range []*domain.Loan{early, late, pending} {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, err := repo.ListByUserID(ctx, user)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListByUserID: %d, %v", len(mine), err)
	}
	for _, l := range mine {
		if len(l.Details) != 1 {
			t.Fatalf("details not loaded for %s", l.LoanID)
		}
	}

	due, err := repo.ListDueOnOrBefore(ctx, base.AddDate(0, 0, 1), []domain.Status{domain.StatusBorrowed, domain.StatusChecking})
	if err != nil {
		t.Fatalf("ListDueOnOrBefore: %v", err)
	}
	if len(due) != 1 || due[0].LoanID != early.LoanID {
		t.Fatalf("unexpected due loans: %+v", due)
	}
}

func TestTx_Rollback(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(t, db, id.NewID32(), time.Now().UTC(), "A")
	wantErr := errors.New("boom")

	err := repo.Tx(ctx, func(r domain.Repository) error {
		if err := r.Create(ctx, l); err != nil {
			return err
		}
		return wantErr // force rollback
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Tx err = %v", err)
	}
	if _, err := repo.GetByLoanID(ctx, l.LoanID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after rollback, got %v", err)
	}
}

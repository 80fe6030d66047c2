package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/testutil/testdb"
	"library-circulation/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func seedBorrow(t *testing.T, db *gorm.DB) *borrow.Borrow {
	t.Helper()
	ctx := context.Background()
	l := makeLoan(t, db, id.NewID32(), time.Now().UTC().AddDate(0, 0, 3), "A", "B")
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	b := &borrow.Borrow{
		BorrowID:   id.NewID32(),
		LoanID:     l.ID,
		BorrowCode: id.NewBorrowCode(),
		BorrowDate: time.Now().UTC(),
		ReturnDate: l.DueDate,
		Status:     borrow.StatusOpen,
	}
	for _, d := range l.Details {
		b.Details = append(b.Details, borrow.Detail{DetailID: id.NewID32(), BookCopyID: d.BookCopyID, Status: borrow.DetailBorrowed})
	}
	if err := NewBorrowRepository(db).Create(ctx, b); err != nil {
		t.Fatalf("seed borrow: %v", err)
	}
	return b
}

func TestBorrow_Lookups(t *testing.T) {
	db := testdb.Open(t)
	repo := NewBorrowRepository(db)
	ctx := context.Background()
	b := seedBorrow(t, db)

	for name, get := range map[string]func() (*borrow.Borrow, error){
		"borrow_id":  func() (*borrow.Borrow, error) { return repo.GetByBorrowID(ctx, b.BorrowID) },
		"for_update": func() (*borrow.Borrow, error) { return repo.GetByBorrowIDForUpdate(ctx, b.BorrowID) },
		"code":       func() (*borrow.Borrow, error) { return repo.GetByCode(ctx, b.BorrowCode) },
		"loan":       func() (*borrow.Borrow, error) { return repo.GetByLoanID(ctx, b.LoanID) },
		"pk":         func() (*borrow.Borrow, error) { return repo.GetByID(ctx, b.ID) },
	} {
		got, err := get()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.BorrowID != b.BorrowID || len(got.Details) != 2 {
			t.Fatalf("%s: unexpected borrow %+v", name, got)
		}
	}
	if _, err := repo.GetByCode(ctx, "nope"); !errors.Is(err, borrow.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestBorrow_SaveDetailAndClose(t *testing.T) {
	db := testdb.Open(t)
	repo := NewBorrowRepository(db)
	ctx := context.Background()
	b := seedBorrow(t, db)
	at := time.Now().UTC()

	for i := range b.Details {
		if err := b.Details[i].MarkReturned(at); err != nil {
			t.Fatal(err)
		}
		if err := repo.SaveDetail(ctx, &b.Details[i]); err != nil {
			t.Fatalf("SaveDetail: %v", err)
		}
	}
	if !b.CloseIfComplete(at) {
		t.Fatal("expected borrow to close")
	}
	if err := repo.Save(ctx, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByBorrowID(ctx, b.BorrowID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != borrow.StatusClose || got.ClosedAt == nil {
		t.Fatalf("borrow not closed: %+v", got)
	}
	d, err := repo.GetDetailByDetailID(ctx, b.Details[0].DetailID)
	if err != nil || d.Status != borrow.DetailReturned || d.ReturnedAt == nil {
		t.Fatalf("detail: %+v, %v", d, err)
	}
}

func TestFineAndFineType(t *testing.T) {
	db := testdb.Open(t)
	fines := NewFineRepository(db)
	types := NewFineTypeRepository(db)
	ctx := context.Background()
	b := seedBorrow(t, db)

	late2 := &fine.FineType{FineTypeID: id.NewID32(), Name: "Late (alt)", Type: fine.KindLate, Amount: decimal.NewFromInt(2000)}
	late1 := &fine.FineType{FineTypeID: id.NewID32(), Name: "Late", Type: fine.KindLate, Amount: decimal.NewFromInt(1000)}
	if err := types.Create(ctx, late2); err != nil {
		t.Fatal(err)
	}
	if err := types.Create(ctx, late1); err != nil {
		t.Fatal(err)
	}

	first, err := types.FirstByKind(ctx, fine.KindLate)
	if err != nil || first.FineTypeID != late2.FineTypeID {
		t.Fatalf("FirstByKind must return lowest id: %+v, %v", first, err)
	}
	if _, err := types.FirstByKind(ctx, fine.KindLost); !errors.Is(err, fine.ErrTypeNotFound) {
		t.Fatalf("want ErrTypeNotFound, got %v", err)
	}

	f := &fine.Fine{
		FineID:         id.NewID32(),
		LoanID:         b.LoanID,
		BorrowID:       b.ID,
		BorrowDetailID: b.Details[0].ID,
		FineTypeID:     late2.ID,
		Amount:         decimal.RequireFromString("4000.50"),
		Status:         fine.StatusUnpaid,
	}
	if err := fines.Create(ctx, f); err != nil {
		t.Fatalf("Create fine: %v", err)
	}
	got, err := fines.GetByFineIDForUpdate(ctx, f.FineID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("4000.5")) {
		t.Fatalf("amount = %s", got.Amount)
	}

	n, err := fines.CountByFineType(ctx, late2.ID)
	if err != nil || n != 1 {
		t.Fatalf("CountByFineType = %d, %v", n, err)
	}
	list, err := fines.ListByBorrowID(ctx, b.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByBorrowID = %d, %v", len(list), err)
	}

	if err := fines.Delete(ctx, f.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := fines.Delete(ctx, f.ID); !errors.Is(err, fine.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if err := types.Delete(ctx, late1.ID); err != nil {
		t.Fatalf("type delete: %v", err)
	}
	all, err := types.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("List = %d, %v", len(all), err)
	}
}

package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/domain/loan"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/testutil/bookcopymock"
	"library-circulation/internal/testutil/loanmock"
	"library-circulation/internal/testutil/uowmock"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/logger"
)

func pendingLoan() *loan.Loan {
	return &loan.Loan{
		ID:             7,
		LoanID:         "0123456789abcdef0123456789abcdef",
		Status:         loan.StatusPending,
		ApprovalStatus: loan.ApprovalPending,
		Details: []loan.Detail{
			{ID: 1, DetailID: "d1", LoanID: 7, BookCopyID: 11, ApprovalStatus: loan.DetailPending},
			{ID: 2, DetailID: "d2", LoanID: 7, BookCopyID: 12, ApprovalStatus: loan.DetailPending},
		},
	}
}

func TestApproveLoan_Mocked(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")

	tests := []struct {
		name      string
		cas       func(ctx context.Context, id uint64, from []bookcopy.Status, to bookcopy.Status) error
		wantCode  apperr.Code
		wantErr   bool
		wantAgg   loan.ApprovalStatus
		wantSaved int
		wantClash int
	}{
		{
			name:      "all reserved",
			cas:       func(context.Context, uint64, []bookcopy.Status, bookcopy.Status) error { return nil },
			wantAgg:   loan.ApprovalApproved,
			wantSaved: 2,
		},
		{
			name: "second copy taken",
			cas: func(_ context.Context, id uint64, _ []bookcopy.Status, _ bookcopy.Status) error {
				if id == 12 {
					return bookcopy.ErrStatusMismatch
				}
				return nil
			},
			wantAgg:   loan.ApprovalPartial,
			wantSaved: 2,
			wantClash: 1,
		},
		{
			name:     "storage failure aborts",
			cas:      func(context.Context, uint64, []bookcopy.Status, bookcopy.Status) error { return boom },
			wantErr:  true,
			wantCode: apperr.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := pendingLoan()
			saved := 0
			loans := &loanmock.Repo{
				GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) { return l, nil },
				SaveDetailFn: func(context.Context, *loan.Detail) error {
					saved++
					return nil
				},
			}
			copies := &bookcopymock.Repo{
				CompareAndSwapStatusFn: tt.cas,
				GetByIDForUpdateFn: func(_ context.Context, id uint64) (*bookcopy.BookCopy, error) {
					return &bookcopy.BookCopy{ID: id, CopyID: "copy", Status: bookcopy.StatusBorrowed}, nil
				},
				ListByIDsFn: func(context.Context, []uint64) ([]bookcopy.BookCopy, error) { return nil, nil },
			}
			u := NewUsecase(uowmock.Passthrough(uow.Repos{Loans: loans, Copies: copies}), logger.Nop(), nil)
			u.now = func() time.Time { return fixedNow }

			res, err := u.ApproveLoan(ctx, l.LoanID)
			if tt.wantErr {
				if err == nil || apperr.CodeOf(err) != tt.wantCode {
					t.Fatalf("want %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got := loan.ApprovalStatus(res.Loan.ApprovalStatus); got != tt.wantAgg {
				t.Fatalf("approval status = %s, want %s", got, tt.wantAgg)
			}
			if res.Loan.Status != string(loan.StatusWaiting) {
				t.Fatalf("status = %s, want waiting", res.Loan.Status)
			}
			if saved != tt.wantSaved {
				t.Fatalf("saved details = %d, want %d", saved, tt.wantSaved)
			}
			if len(res.Conflicts) != tt.wantClash {
				t.Fatalf("conflicts = %d, want %d", len(res.Conflicts), tt.wantClash)
			}
		})
	}
}

func TestApproveLoan_NotPreBorrow(t *testing.T) {
	l := pendingLoan()
	l.Status = loan.StatusBorrowed
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) { return l, nil },
		SaveDetailFn: func(context.Context, *loan.Detail) error {
			t.Fatal("detail must not be saved")
			return nil
		},
	}
	u := NewUsecase(uowmock.Passthrough(uow.Repos{Loans: loans, Copies: &bookcopymock.Repo{}}), logger.Nop(), nil)

	_, err := u.ApproveLoan(context.Background(), l.LoanID)
	if !apperr.HasCode(err, apperr.CodeInvalidState) {
		t.Fatalf("want INVALID_STATE, got %v", err)
	}
}

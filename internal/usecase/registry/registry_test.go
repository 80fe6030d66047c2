package registry

import (
	"context"
	"errors"
	"testing"

	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/testutil/bookcopymock"
	"library-circulation/pkg/apperr"
)

func TestApply(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")

	tests := []struct {
		name     string
		repo     *bookcopymock.Repo
		wantCode apperr.Code
		wantOK   bool
	}{
		{
			name:   "swap succeeds",
			repo:   &bookcopymock.Repo{},
			wantOK: true,
		},
		{
			name: "compare fails on existing copy",
			repo: &bookcopymock.Repo{
				CompareAndSwapStatusFn: func(context.Context, uint64, []bookcopy.Status, bookcopy.Status) error {
					return bookcopy.ErrStatusMismatch
				},
				GetByIDForUpdateFn: func(context.Context, uint64) (*bookcopy.BookCopy, error) {
					return &bookcopy.BookCopy{ID: 1, CopyID: "c1", Status: bookcopy.StatusBorrowed}, nil
				},
			},
			wantCode: apperr.CodeConflict,
		},
		{
			name: "compare fails on missing copy",
			repo: &bookcopymock.Repo{
				CompareAndSwapStatusFn: func(context.Context, uint64, []bookcopy.Status, bookcopy.Status) error {
					return bookcopy.ErrStatusMismatch
				},
				GetByIDForUpdateFn: func(context.Context, uint64) (*bookcopy.BookCopy, error) {
					return nil, bookcopy.ErrNotFound
				},
			},
			wantCode: apperr.CodeNotFound,
		},
		{
			name: "storage error",
			repo: &bookcopymock.Repo{
				CompareAndSwapStatusFn: func(context.Context, uint64, []bookcopy.Status, bookcopy.Status) error {
					return boom
				},
			},
			wantCode: apperr.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reserve(ctx, tt.repo, 1)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if got := apperr.CodeOf(err); got != tt.wantCode {
				t.Fatalf("code = %s, want %s (err=%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestApply_ConflictDetails(t *testing.T) {
	repo := &bookcopymock.Repo{
		CompareAndSwapStatusFn: func(_ context.Context, _ uint64, from []bookcopy.Status, to bookcopy.Status) error {
			if to != bookcopy.StatusAvailable || len(from) != 1 || from[0] != bookcopy.StatusBorrowed {
				t.Fatalf("release must swap borrowed -> available, got %v -> %s", from, to)
			}
			return bookcopy.ErrStatusMismatch
		},
		GetByIDForUpdateFn: func(context.Context, uint64) (*bookcopy.BookCopy, error) {
			return &bookcopy.BookCopy{CopyID: "c9", Status: bookcopy.StatusLost}, nil
		},
	}
	err := Release(context.Background(), repo, 9)
	typed := apperr.As(err)
	if typed == nil {
		t.Fatalf("want typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["book_copy_id"] != "c9" || details["status"] != bookcopy.StatusLost {
		t.Fatalf("details = %#v", typed.Details())
	}
	if s, ok := FoundStatus(err); !ok || s != bookcopy.StatusLost {
		t.Fatalf("FoundStatus = %q, %v", s, ok)
	}
	if _, ok := FoundStatus(errors.New("plain")); ok {
		t.Fatal("plain error must carry no status")
	}
}

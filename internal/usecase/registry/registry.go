package registry

import (
	"context"
	"errors"

	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/pkg/apperr"
)

// Reserve claims an available copy for an approved loan detail.
func Reserve(ctx context.Context, repo bookcopy.Repository, copyID uint64) error {
	return Apply(ctx, repo, copyID, bookcopy.OpReserve)
}

func Release(ctx context.Context, repo bookcopy.Repository, copyID uint64) error {
	return Apply(ctx, repo, copyID, bookcopy.OpRelease)
}

func MarkLost(ctx context.Context, repo bookcopy.Repository, copyID uint64) error {
	return Apply(ctx, repo, copyID, bookcopy.OpMarkLost)
}

func MarkDamaged(ctx context.Context, repo bookcopy.Repository, copyID uint64) error {
	return Apply(ctx, repo, copyID, bookcopy.OpMarkDamaged)
}

// Apply runs op as a single compare-and-swap on the copy row. A failed compare
// is a CONFLICT naming the copy and the status it was found in; a missing copy is NOT_FOUND.
// The found status comes from a locking read so it is the committed one.
func Apply(ctx context.Context, repo bookcopy.Repository, copyID uint64, op bookcopy.Op) error {
	err := repo.CompareAndSwapStatus(ctx, copyID, op.From, op.To)
	if err == nil {
		return nil
	}
	if !errors.Is(err, bookcopy.ErrStatusMismatch) {
		return errmap.From(err)
	}
	c, getErr := repo.GetByIDForUpdate(ctx, copyID)
	if getErr != nil {
		return errmap.From(getErr)
	}
	return apperr.Conflict("book copy %s is %s, cannot %s", c.CopyID, c.Status, op.Name).
		WithDetails(map[string]any{"book_copy_id": c.CopyID, "status": c.Status, "operation": op.Name})
}

// FoundStatus extracts the copy status carried by a CONFLICT returned from Apply.
func FoundStatus(err error) (bookcopy.Status, bool) {
	details, ok := apperr.As(err).Details().(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := details["status"].(bookcopy.Status)
	return s, ok
}

package registry

import (
	"context"
	"errors"
	"strings"

	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/id"
	"library-circulation/pkg/logger"

	"gorm.io/gorm"
)

type Usecase struct {
	uow     uow.UnitOfWork
	log     *logger.Logger
	metrics *metrics.Circulation
}

func NewUsecase(tx uow.UnitOfWork, log *logger.Logger, m *metrics.Circulation) *Usecase {
	return &Usecase{uow: tx, log: log, metrics: m}
}

func (u *Usecase) Register(ctx context.Context, in RegisterCopyInput) (*CopyDTO, error) {
	bookID := strings.TrimSpace(in.BookID)
	code := strings.TrimSpace(in.CopyCode)
	if bookID == "" || code == "" {
		return nil, apperr.Validation("book_id and copy_code are required")
	}

	c := &bookcopy.BookCopy{
		CopyID:   id.NewID32(),
		BookID:   bookID,
		CopyCode: code,
		Status:   bookcopy.StatusAvailable,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Copies.Create(ctx, c); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("copy code %s already exists for book %s", code, bookID).
					WithDetails(map[string]any{"book_id": bookID, "copy_code": code})
			}
			return err
		}
		return nil
	})
	u.metrics.Observe("register_copy", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithField(ctx, "book_copy_id", c.CopyID), "book copy registered")
	return toDTO(c), nil
}

func (u *Usecase) Get(ctx context.Context, copyID string) (*CopyDTO, error) {
	var out *CopyDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Copies.GetByCopyID(ctx, copyID)
		if err != nil {
			return err
		}
		out = toDTO(c)
		return nil
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

// MarkDamaged takes a copy out of circulation outside any borrow, e.g. found damaged on the shelf.
func (u *Usecase) MarkDamaged(ctx context.Context, copyID string) (*CopyDTO, error) {
	return u.transition(ctx, copyID, bookcopy.OpMarkDamaged)
}

// Reset returns a lost or damaged copy to the shelf.
func (u *Usecase) Reset(ctx context.Context, copyID string) (*CopyDTO, error) {
	return u.transition(ctx, copyID, bookcopy.OpReset)
}

func (u *Usecase) transition(ctx context.Context, copyID string, op bookcopy.Op) (*CopyDTO, error) {
	var out *CopyDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Copies.GetByCopyID(ctx, copyID)
		if err != nil {
			return err
		}
		if !op.Allows(c.Status) {
			return apperr.InvalidState("book copy %s is %s, cannot %s", c.CopyID, c.Status, op.Name).
				WithDetails(map[string]any{"book_copy_id": c.CopyID, "status": c.Status})
		}
		if err := Apply(ctx, r.Copies, c.ID, op); err != nil {
			return err
		}
		c.Status = op.To
		out = toDTO(c)
		return nil
	})
	u.metrics.Observe(op.Name, err)
	if err != nil {
		return nil, errmap.From(err)
	}
	u.log.Info(u.log.WithFields(ctx, map[string]any{"book_copy_id": copyID, "status": op.To}), "book copy status changed")
	return out, nil
}

func toDTO(c *bookcopy.BookCopy) *CopyDTO {
	return &CopyDTO{
		CopyID:    c.CopyID,
		BookID:    c.BookID,
		CopyCode:  c.CopyCode,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

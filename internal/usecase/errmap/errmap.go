// Package errmap turns repository and domain failures into apperr codes.
package errmap

import (
	"errors"

	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/loan"
	"library-circulation/pkg/apperr"

	"gorm.io/gorm"
)

var notFound = []error{
	bookcopy.ErrNotFound,
	loan.ErrNotFound,
	loan.ErrDetailNotFound,
	borrow.ErrNotFound,
	borrow.ErrDetailNotFound,
	fine.ErrNotFound,
	fine.ErrTypeNotFound,
}

var invalidState = []error{
	loan.ErrInvalidTransition,
	borrow.ErrInvalidTransition,
	fine.ErrInvalidTransition,
}

// From returns err unchanged when it already carries a code.
func From(err error) error {
	if err == nil {
		return nil
	}
	if apperr.As(err) != nil {
		return err
	}
	for _, s := range notFound {
		if errors.Is(err, s) {
			return apperr.Wrap(apperr.CodeNotFound, err, s.Error())
		}
	}
	for _, s := range invalidState {
		if errors.Is(err, s) {
			return apperr.Wrap(apperr.CodeInvalidState, err, err.Error())
		}
	}
	switch {
	case errors.Is(err, bookcopy.ErrStatusMismatch):
		return apperr.Wrap(apperr.CodeConflict, err, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.CodeNotFound, err, "resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.CodeConflict, err, "duplicate record")
	}
	return apperr.Wrap(apperr.CodeInternal, err, "internal error")
}

package returns

import (
	"library-circulation/internal/usecase/borrow"
	"library-circulation/internal/usecase/fine"
)

type ReturnInput struct {
	BorrowID         string   `json:"-"`
	DetailIDs        []string `json:"borrow_detail_ids" validate:"required,min=1,dive,hex32"`
	DamagedDetailIDs []string `json:"damaged_detail_ids" validate:"omitempty,dive,hex32"`
}

type LostInput struct {
	BorrowID   string `json:"-"`
	BookCopyID string `json:"book_copy_id" validate:"required,hex32"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// ResultDTO is the borrow after the operation plus the fines it raised.
type ResultDTO struct {
	Borrow borrow.BorrowDTO `json:"borrow"`
	Fines  []fine.FineDTO   `json:"fines"`
}

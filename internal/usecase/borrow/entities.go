package borrow

import "time"

type BorrowDetailDTO struct {
	DetailID   string     `json:"detail_id"`
	BookCopyID string     `json:"book_copy_id"`
	Status     string     `json:"status"`
	Note       *string    `json:"note,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

type BorrowDTO struct {
	BorrowID   string            `json:"borrow_id"`
	LoanID     string            `json:"loan_id"`
	LoanStatus string            `json:"loan_status"`
	BorrowCode string            `json:"borrow_code"`
	BorrowDate time.Time         `json:"borrow_date"`
	ReturnDate string            `json:"return_date"`
	Status     string            `json:"status"`
	ClosedAt   *time.Time        `json:"closed_at,omitempty"`
	Details    []BorrowDetailDTO `json:"details"`
}

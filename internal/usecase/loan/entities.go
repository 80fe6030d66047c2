package loan

import (
	"time"
)

const DateLayout = "2006-01-02"

type CreateLoanInput struct {
	UserID      string   `json:"-"`
	BookCopyIDs []string `json:"book_copy_ids" validate:"required,min=1,dive,hex32"`
	DueDate     string   `json:"due_date" validate:"required,date"`
}

type RejectLoanInput struct {
	LoanID          string `json:"-"`
	RejectionReason string `json:"rejection_reason" validate:"max=1000"`
}

type RejectDetailInput struct {
	DetailID string `json:"-"`
	Note     string `json:"note" validate:"max=1000"`
}

type LoanDetailDTO struct {
	DetailID       string  `json:"detail_id"`
	BookCopyID     string  `json:"book_copy_id"`
	ApprovalStatus string  `json:"approval_status"`
	Note           *string `json:"note,omitempty"`
}

type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	UserID          string          `json:"user_id"`
	LoanDate        string          `json:"loan_date"`
	DueDate         string          `json:"due_date"`
	Status          string          `json:"status"`
	ApprovalStatus  string          `json:"approval_status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
	Details         []LoanDetailDTO `json:"details"`
}

// ReservationConflict is a detail rejected because its copy was taken by another loan.
type ReservationConflict struct {
	DetailID   string `json:"detail_id"`
	BookCopyID string `json:"book_copy_id"`
	Note       string `json:"note"`
}

type ApprovalResultDTO struct {
	Loan      LoanDTO               `json:"loan"`
	Conflicts []ReservationConflict `json:"conflicts"`
}

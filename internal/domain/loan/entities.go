package loan

import (
	"errors"
	"fmt"
	"time"

	"library-circulation/internal/domain/enum"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrDetailNotFound    = errors.New("loan detail not found")
	ErrInvalidTransition = errors.New("invalid loan transition")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusWaiting  Status = "waiting"
	StatusBorrowed Status = "borrowed"
	StatusChecking Status = "checking"
	StatusReturned Status = "returned"
	StatusRejected Status = "rejected"
	StatusLate     Status = "late"
)

var validStatuses = []Status{
	StatusPending, StatusWaiting, StatusBorrowed, StatusChecking,
	StatusReturned, StatusRejected, StatusLate,
}

func (s Status) IsValid() bool { return enum.Contains(validStatuses, s) }

func ParseStatus(v string) (Status, error) { return enum.Parse(v, Status.IsValid, "loan status") }

func (s *Status) Scan(src any) error { return enum.Scan(s, src, ParseStatus) }

// IsPreBorrow reports whether details may still be approved or rejected.
func (s Status) IsPreBorrow() bool { return s == StatusPending || s == StatusWaiting }

// IsCirculating reports whether the loan has an open borrow behind it.
func (s Status) IsCirculating() bool {
	return s == StatusBorrowed || s == StatusChecking || s == StatusLate
}

type ApprovalStatus string

const (
	ApprovalPending    ApprovalStatus = "pending"
	ApprovalProcessing ApprovalStatus = "processing"
	ApprovalApproved   ApprovalStatus = "approved"
	ApprovalRejected   ApprovalStatus = "rejected"
	ApprovalPartial    ApprovalStatus = "partial"
)

var approvalStatuses = []ApprovalStatus{ApprovalPending, ApprovalProcessing, ApprovalApproved, ApprovalRejected, ApprovalPartial}

func (s ApprovalStatus) IsValid() bool { return enum.Contains(approvalStatuses, s) }

func ParseApprovalStatus(v string) (ApprovalStatus, error) {
	return enum.Parse(v, ApprovalStatus.IsValid, "loan approval status")
}

func (s *ApprovalStatus) Scan(src any) error { return enum.Scan(s, src, ParseApprovalStatus) }

type DetailApproval string

const (
	DetailPending  DetailApproval = "pending"
	DetailApproved DetailApproval = "approved"
	DetailRejected DetailApproval = "rejected"
)

var detailApprovals = []DetailApproval{DetailPending, DetailApproved, DetailRejected}

func (s DetailApproval) IsValid() bool { return enum.Contains(detailApprovals, s) }

func ParseDetailApproval(v string) (DetailApproval, error) {
	return enum.Parse(v, DetailApproval.IsValid, "loan detail approval")
}

func (s *DetailApproval) Scan(src any) error { return enum.Scan(s, src, ParseDetailApproval) }

// Table: loans
type Loan struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string         `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	UserID          string         `gorm:"column:user_id;size:32;not null;index:idx_loans_user" json:"user_id"`
	LoanDate        time.Time      `gorm:"column:loan_date;not null" json:"loan_date"`
	DueDate         time.Time      `gorm:"column:due_date;not null;index:idx_loans_status_due,priority:2" json:"due_date"`
	Status          Status         `gorm:"column:status;size:16;not null;default:pending;index:idx_loans_status_due,priority:1" json:"status"`
	ApprovalStatus  ApprovalStatus `gorm:"column:approval_status;size:16;not null;default:pending" json:"approval_status"`
	RejectionReason *string        `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	StatusUpdatedAt time.Time      `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Details []Detail `gorm:"-" json:"details"`
}

func (Loan) TableName() string { return "loans" }

// Table: loan_details
type Detail struct {
	ID             uint64         `gorm:"primaryKey;column:id" json:"-"`
	DetailID       string         `gorm:"column:detail_id;size:32;not null;uniqueIndex:ux_loan_details_detail_id" json:"detail_id"`
	LoanID         uint64         `gorm:"column:loan_id;not null;uniqueIndex:ux_loan_details_loan_copy,priority:1" json:"-"`
	BookCopyID     uint64         `gorm:"column:book_copy_id;not null;uniqueIndex:ux_loan_details_loan_copy,priority:2;index" json:"-"`
	ApprovalStatus DetailApproval `gorm:"column:approval_status;size:16;not null;default:pending" json:"approval_status"`
	Note           *string        `gorm:"column:note;type:text" json:"note,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Detail) TableName() string { return "loan_details" }

func (d *Detail) Approve() error {
	if d.ApprovalStatus != DetailPending {
		return fmt.Errorf("%w: detail %s is %s, only pending details can be approved", ErrInvalidTransition, d.DetailID, d.ApprovalStatus)
	}
	d.ApprovalStatus = DetailApproved
	d.Note = nil
	return nil
}

// Reject moves a pending or approved detail to rejected. The caller releases the copy of an approved one.
func (d *Detail) Reject(note string) error {
	if d.ApprovalStatus == DetailRejected {
		return fmt.Errorf("%w: detail %s is already rejected", ErrInvalidTransition, d.DetailID)
	}
	d.ApprovalStatus = DetailRejected
	if note != "" {
		d.Note = &note
	}
	return nil
}

// IsOverdue reports whether now falls after the whole due day.
func (l *Loan) IsOverdue(now time.Time) bool {
	return !now.Before(l.DueDate.AddDate(0, 0, 1))
}

func (l *Loan) SetStatus(s Status, at time.Time) {
	if l.Status == s {
		return
	}
	l.Status = s
	l.StatusUpdatedAt = at
}

package borrow

import (
	"errors"
	"fmt"
	"time"

	"library-circulation/internal/domain/enum"
	"library-circulation/internal/domain/loan"
)

var (
	ErrNotFound          = errors.New("borrow not found")
	ErrDetailNotFound    = errors.New("borrow detail not found")
	ErrInvalidTransition = errors.New("invalid borrow transition")
)

type Status string

const (
	StatusOpen  Status = "open"
	StatusClose Status = "close"
)

var statuses = []Status{StatusOpen, StatusClose}

func (s Status) IsValid() bool { return enum.Contains(statuses, s) }

func ParseStatus(v string) (Status, error) { return enum.Parse(v, Status.IsValid, "borrow status") }

func (s *Status) Scan(src any) error { return enum.Scan(s, src, ParseStatus) }

type DetailStatus string

const (
	DetailBorrowed DetailStatus = "borrowed"
	DetailReturned DetailStatus = "returned"
	DetailLost     DetailStatus = "lost"
)

func (s DetailStatus) IsTerminal() bool { return s == DetailReturned || s == DetailLost }

var detailStatuses = []DetailStatus{DetailBorrowed, DetailReturned, DetailLost}

func (s DetailStatus) IsValid() bool { return enum.Contains(detailStatuses, s) }

func ParseDetailStatus(v string) (DetailStatus, error) {
	return enum.Parse(v, DetailStatus.IsValid, "borrow detail status")
}

func (s *DetailStatus) Scan(src any) error { return enum.Scan(s, src, ParseDetailStatus) }

// Table: borrows
type Borrow struct {
	ID         uint64     `gorm:"primaryKey;column:id" json:"-"`
	BorrowID   string     `gorm:"column:borrow_id;size:32;not null;uniqueIndex:ux_borrows_borrow_id" json:"borrow_id"`
	LoanID     uint64     `gorm:"column:loan_id;not null;uniqueIndex:ux_borrows_loan_id" json:"-"`
	BorrowCode string     `gorm:"column:borrow_code;size:36;not null;uniqueIndex:ux_borrows_borrow_code" json:"borrow_code"`
	BorrowDate time.Time  `gorm:"column:borrow_date;not null" json:"borrow_date"`
	ReturnDate time.Time  `gorm:"column:return_date;not null" json:"return_date"`
	Status     Status     `gorm:"column:status;size:8;not null;default:open" json:"status"`
	ClosedAt   *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Details []Detail `gorm:"-" json:"details"`
}

func (Borrow) TableName() string { return "borrows" }

// Table: borrow_details
type Detail struct {
	ID         uint64       `gorm:"primaryKey;column:id" json:"-"`
	DetailID   string       `gorm:"column:detail_id;size:32;not null;uniqueIndex:ux_borrow_details_detail_id" json:"detail_id"`
	BorrowID   uint64       `gorm:"column:borrow_id;not null;index" json:"-"`
	BookCopyID uint64       `gorm:"column:book_copy_id;not null;index" json:"-"`
	Status     DetailStatus `gorm:"column:status;size:16;not null;default:borrowed" json:"status"`
	Note       *string      `gorm:"column:note;type:text" json:"note,omitempty"`
	ReturnedAt *time.Time   `gorm:"column:returned_at" json:"returned_at,omitempty"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Detail) TableName() string { return "borrow_details" }

func (d *Detail) MarkReturned(at time.Time) error {
	if d.Status != DetailBorrowed {
		return fmt.Errorf("%w: detail %s is %s", ErrInvalidTransition, d.DetailID, d.Status)
	}
	d.Status = DetailReturned
	d.ReturnedAt = &at
	return nil
}

func (d *Detail) MarkLost(note string) error {
	if d.Status != DetailBorrowed {
		return fmt.Errorf("%w: detail %s is %s", ErrInvalidTransition, d.DetailID, d.Status)
	}
	d.Status = DetailLost
	if note != "" {
		d.Note = &note
	}
	return nil
}

// Progress counts terminal details. allReturned is true only when every detail came back.
func Progress(details []Detail) (terminal, total int, allReturned bool) {
	total = len(details)
	allReturned = total > 0
	for _, d := range details {
		if d.Status.IsTerminal() {
			terminal++
		}
		if d.Status != DetailReturned {
			allReturned = false
		}
	}
	return terminal, total, allReturned
}

// CloseIfComplete closes the borrow once every detail is terminal. Reports whether it closed.
func (b *Borrow) CloseIfComplete(at time.Time) bool {
	if b.Status == StatusClose {
		return false
	}
	terminal, total, _ := Progress(b.Details)
	if total == 0 || terminal < total {
		return false
	}
	b.Status = StatusClose
	b.ClosedAt = &at
	return true
}

// DeriveLoanStatus gives the loan's coarse status from the borrow's details. Only a borrow whose
// copies all came back makes the loan returned; one settled with a loss stays checking, or late
// when it already was, and the lost-copy fine carries the outcome.
func DeriveLoanStatus(current loan.Status, details []Detail) loan.Status {
	terminal, total, allReturned := Progress(details)
	switch {
	case allReturned:
		return loan.StatusReturned
	case terminal == total && total > 0 && current == loan.StatusLate:
		return loan.StatusLate
	case terminal > 0:
		return loan.StatusChecking
	case current == loan.StatusLate:
		return loan.StatusLate
	default:
		return loan.StatusBorrowed
	}
}

// DaysOverdue counts calendar days (UTC) between the return date and at. Zero when on time.
func DaysOverdue(returnDate, at time.Time) int {
	due := truncateDay(returnDate)
	day := truncateDay(at)
	if !day.After(due) {
		return 0
	}
	return int(day.Sub(due).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (b *Borrow) DetailByDetailID(detailID string) *Detail {
	for i := range b.Details {
		if b.Details[i].DetailID == detailID {
			return &b.Details[i]
		}
	}
	return nil
}

func (b *Borrow) DetailByCopy(bookCopyID uint64) *Detail {
	for i := range b.Details {
		if b.Details[i].BookCopyID == bookCopyID {
			return &b.Details[i]
		}
	}
	return nil
}

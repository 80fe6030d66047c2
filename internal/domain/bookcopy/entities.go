package bookcopy

import (
	"errors"
	"time"

	"library-circulation/internal/domain/enum"
)

var (
	ErrNotFound = errors.New("book copy not found")
	// ErrStatusMismatch is returned by a compare-and-swap write whose expected status no longer holds.
	ErrStatusMismatch = errors.New("book copy status changed")
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBorrowed  Status = "borrowed"
	StatusLost      Status = "lost"
	StatusDamaged   Status = "damaged"
)

var validStatuses = []Status{StatusAvailable, StatusBorrowed, StatusLost, StatusDamaged}

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool { return enum.Contains(validStatuses, s) }

func ParseStatus(v string) (Status, error) { return enum.Parse(v, Status.IsValid, "book copy status") }

func (s *Status) Scan(src any) error { return enum.Scan(s, src, ParseStatus) }

// Op is a registry mutation: the statuses it may start from and the one it writes.
type Op struct {
	Name string
	From []Status
	To   Status
}

var (
	OpReserve     = Op{Name: "reserve", From: []Status{StatusAvailable}, To: StatusBorrowed}
	OpRelease     = Op{Name: "release", From: []Status{StatusBorrowed}, To: StatusAvailable}
	OpMarkLost    = Op{Name: "mark_lost", From: []Status{StatusAvailable, StatusBorrowed}, To: StatusLost}
	OpMarkDamaged = Op{Name: "mark_damaged", From: []Status{StatusAvailable, StatusBorrowed}, To: StatusDamaged}
	OpReset       = Op{Name: "reset", From: []Status{StatusLost, StatusDamaged}, To: StatusAvailable}
)

func (o Op) Allows(s Status) bool {
	for _, f := range o.From {
		if f == s {
			return true
		}
	}
	return false
}

// Table: book_copies
type BookCopy struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	CopyID    string    `gorm:"column:copy_id;size:32;not null;uniqueIndex:ux_book_copies_copy_id" json:"copy_id"`
	BookID    string    `gorm:"column:book_id;size:64;not null;uniqueIndex:ux_book_copies_book_code" json:"book_id"`
	CopyCode  string    `gorm:"column:copy_code;size:64;not null;uniqueIndex:ux_book_copies_book_code" json:"copy_code"`
	Status    Status    `gorm:"column:status;size:16;not null;default:available;index" json:"status"`
	Version   uint64    `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BookCopy) TableName() string { return "book_copies" }

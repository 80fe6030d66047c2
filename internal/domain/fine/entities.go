package fine

import (
	"errors"
	"fmt"
	"time"

	"library-circulation/internal/domain/enum"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("fine not found")
	ErrTypeNotFound      = errors.New("fine type not found")
	ErrInvalidTransition = errors.New("invalid fine transition")
)

// Kind is what a fine is charged for.
type Kind string

const (
	KindLost    Kind = "lost"
	KindDamaged Kind = "damaged"
	KindLate    Kind = "late"
)

var kinds = []Kind{KindLost, KindDamaged, KindLate}

func (k Kind) IsValid() bool { return enum.Contains(kinds, k) }

func ParseKind(v string) (Kind, error) { return enum.Parse(v, Kind.IsValid, "fine type") }

func (k *Kind) Scan(src any) error { return enum.Scan(k, src, ParseKind) }

type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
	StatusWaived Status = "waived"
)

var statuses = []Status{StatusUnpaid, StatusPaid, StatusWaived}

func (s Status) IsValid() bool { return enum.Contains(statuses, s) }

func ParseStatus(v string) (Status, error) { return enum.Parse(v, Status.IsValid, "fine status") }

func (s *Status) Scan(src any) error { return enum.Scan(s, src, ParseStatus) }

// Table: fine_types
type FineType struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	FineTypeID  string          `gorm:"column:fine_type_id;size:32;not null;uniqueIndex:ux_fine_types_fine_type_id" json:"fine_type_id"`
	Name        string          `gorm:"column:name;size:128;not null" json:"name"`
	Type        Kind            `gorm:"column:type;size:16;not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Description *string         `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FineType) TableName() string { return "fine_types" }

// AmountFor is the charge for this type. Late types are a per-day rate.
func (t FineType) AmountFor(daysLate int) decimal.Decimal {
	if t.Type != KindLate {
		return t.Amount
	}
	if daysLate < 1 {
		daysLate = 1
	}
	return t.Amount.Mul(decimal.NewFromInt(int64(daysLate)))
}

// Table: fines
type Fine struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	FineID         string          `gorm:"column:fine_id;size:32;not null;uniqueIndex:ux_fines_fine_id" json:"fine_id"`
	LoanID         uint64          `gorm:"column:loan_id;not null;index" json:"-"`
	BorrowID       uint64          `gorm:"column:borrow_id;not null;index" json:"-"`
	BorrowDetailID uint64          `gorm:"column:borrow_detail_id;not null;index" json:"-"`
	FineTypeID     uint64          `gorm:"column:fine_type_id;not null;index" json:"-"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Status         Status          `gorm:"column:status;size:16;not null;default:unpaid" json:"status"`
	PaidAt         *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	WaivedAt       *time.Time      `gorm:"column:waived_at" json:"waived_at,omitempty"`
	Note           *string         `gorm:"column:note;type:text" json:"note,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Fine) TableName() string { return "fines" }

func (f *Fine) Pay(at time.Time) error {
	if f.Status != StatusUnpaid {
		return fmt.Errorf("%w: fine %s is %s", ErrInvalidTransition, f.FineID, f.Status)
	}
	f.Status = StatusPaid
	f.PaidAt = &at
	return nil
}

func (f *Fine) Waive(at time.Time) error {
	if f.Status != StatusUnpaid {
		return fmt.Errorf("%w: fine %s is %s", ErrInvalidTransition, f.FineID, f.Status)
	}
	f.Status = StatusWaived
	f.WaivedAt = &at
	return nil
}

func (f *Fine) CanDelete() bool { return f.Status == StatusUnpaid }

package fine

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssessInput struct {
	BorrowDetailID string `json:"borrow_detail_id" validate:"required,hex32"`
	FineTypeID     string `json:"fine_type_id" validate:"required,hex32"`
	// Amount overrides the catalog amount when set.
	Amount *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,gte=0,dec2"`
	Note   string           `json:"note" validate:"max=1000"`
}

type FineTypeInput struct {
	Name        string          `json:"name" validate:"required,max=128"`
	Type        string          `json:"type" validate:"required,oneof=lost damaged late"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0,dec2"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type FineDTO struct {
	FineID         string          `json:"fine_id"`
	LoanID         string          `json:"loan_id"`
	BorrowID       string          `json:"borrow_id"`
	BorrowDetailID string          `json:"borrow_detail_id"`
	FineTypeID     string          `json:"fine_type_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	WaivedAt       *time.Time      `json:"waived_at,omitempty"`
	Note           *string         `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type FineTypeDTO struct {
	FineTypeID  string          `json:"fine_type_id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

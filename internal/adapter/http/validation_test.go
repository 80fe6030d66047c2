package http

import (
	"errors"
	"strings"
	"testing"

	"library-circulation/pkg/id"

	"github.com/shopspring/decimal"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHex32Validation(t *testing.T) {
	type P struct {
		CopyID string `json:"book_copy_id" validate:"hex32"`
	}
	cv := NewValidator()

	for _, s := range []string{strings.Repeat("a", 32), id.NewID32()} {
		if err := cv.Validate(P{CopyID: s}); err != nil {
			t.Fatalf("expected valid hex32 for %q, got err: %v", s, err)
		}
	}

	for _, s := range []string{
		"",
		strings.Repeat("A", 32),
		"deadbeef",
		strings.Repeat("g", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x",
	} {
		err := cv.Validate(P{CopyID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "book_copy_id", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestDateValidation(t *testing.T) {
	type P struct {
		Due string `json:"due_date" validate:"date"`
	}
	cv := NewValidator()

	for _, v := range []string{"2025-01-31", "2024-02-29"} {
		if err := cv.Validate(P{Due: v}); err != nil {
			t.Fatalf("expected date OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"", "2025-02-30", "31/01/2025", "2025-01-31T00:00:00Z"} {
		err := cv.Validate(P{Due: v})
		if err == nil {
			t.Fatalf("expected date error for %q", v)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "due_date", "YYYY-MM-DD") {
			t.Fatalf("expected date message for %q, got %+v", v, fe)
		}
	}
}

func TestDecimalAmountValidation(t *testing.T) {
	type P struct {
		Amount   decimal.Decimal  `json:"amount" validate:"gte=0,dec2"`
		Override *decimal.Decimal `json:"override,omitempty" validate:"omitempty,gte=0,dec2"`
	}
	cv := NewValidator()

	for _, v := range []string{"0", "1.29", "2.00", "150.5"} {
		if err := cv.Validate(P{Amount: decimal.RequireFromString(v)}); err != nil {
			t.Fatalf("expected amount OK for %s, got %v", v, err)
		}
	}

	err := cv.Validate(P{Amount: decimal.RequireFromString("1.234")})
	if err == nil || !containsFieldMsg(ToFieldErrors(err), "amount", "at most 2 decimal places") {
		t.Fatalf("expected dec2 error, got %v", err)
	}
	err = cv.Validate(P{Amount: decimal.RequireFromString("-1")})
	if err == nil || !containsFieldMsg(ToFieldErrors(err), "amount", "greater than or equal to 0") {
		t.Fatalf("expected gte error, got %v", err)
	}
	neg := decimal.RequireFromString("-0.5")
	err = cv.Validate(P{Override: &neg})
	if err == nil || !containsFieldMsg(ToFieldErrors(err), "override", "greater than or equal to 0") {
		t.Fatalf("expected gte error on override, got %v", err)
	}
}

func TestRequiredAndListMapping(t *testing.T) {
	type P struct {
		IDs  []string `json:"book_copy_ids" validate:"required,min=1,dive,hex32"`
		Kind string   `json:"type" validate:"required,oneof=lost damaged late"`
		Note string   `validate:"max=3"`
	}
	cv := NewValidator()

	err := cv.Validate(P{IDs: nil, Kind: "overdue", Note: "toolong"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "book_copy_ids", "is required") {
		t.Fatalf("missing required for book_copy_ids: %+v", fe)
	}
	if !containsFieldMsg(fe, "type", "one of lost damaged late") {
		t.Fatalf("missing oneof for type: %+v", fe)
	}
	if !containsFieldMsg(fe, "Note", "at most 3") {
		t.Fatalf("missing max for Note: %+v", fe)
	}

	err = cv.Validate(P{IDs: []string{"nope"}, Kind: "late"})
	if err == nil || !containsFieldMsg(ToFieldErrors(err), "book_copy_ids[0]", "32-char lowercase hex") {
		t.Fatalf("expected dive error, got %v", err)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}

package id

import (
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	if !IsID32(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsID32_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880",
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
	} {
		if IsID32(s) {
			t.Fatalf("IsID32 should reject %q", s)
		}
	}
}

func TestNewBorrowCode_IsUUID(t *testing.T) {
	code := NewBorrowCode()
	if _, err := uuid.Parse(code); err != nil {
		t.Fatalf("borrow code %q is not a uuid: %v", code, err)
	}
	if code == NewBorrowCode() {
		t.Fatalf("borrow codes must differ")
	}
}

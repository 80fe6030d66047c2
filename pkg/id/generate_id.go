package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsID32 reports whether s has the NewID32 shape.
func IsID32(s string) bool { return reHex32.MatchString(s) }

// NewBorrowCode returns the external, QR-bound code printed on a borrow slip.
func NewBorrowCode() string { return uuid.NewString() }

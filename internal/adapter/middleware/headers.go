package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"library-circulation/pkg/id"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderRequestAt = "X-Request-At"
	HeaderUserID    = "X-User-Id"

	// Allowed client/server clock skew for X-Request-At.
	maxClockSkew = 10 * time.Minute
)

// requestMeta is the identity of a mutating request as declared by its headers.
type requestMeta struct {
	RequestID string
	RequestAt time.Time
	UserID    string
}

type headerError struct {
	code string
	msg  string
}

func (e *headerError) Error() string { return e.msg }

func missingHeader(name string) *headerError {
	return &headerError{code: "MISSING_HEADER", msg: "missing " + name}
}

func invalidHeader(msg string) *headerError {
	return &headerError{code: "INVALID_HEADER", msg: msg}
}

func parseRequestMeta(h http.Header, now time.Time) (requestMeta, *headerError) {
	var meta requestMeta

	meta.RequestID = strings.ToLower(strings.TrimSpace(h.Get(HeaderRequestID)))
	if meta.RequestID == "" {
		return meta, missingHeader(HeaderRequestID)
	}
	if !validRequestID(meta.RequestID) {
		return meta, invalidHeader("invalid " + HeaderRequestID + " format")
	}

	raw := strings.TrimSpace(h.Get(HeaderRequestAt))
	if raw == "" {
		return meta, missingHeader(HeaderRequestAt)
	}
	at, ok := parseRequestAt(raw)
	if !ok {
		return meta, invalidHeader(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return meta, invalidHeader(HeaderRequestAt + " too skewed")
	}
	meta.RequestAt = at

	meta.UserID = strings.TrimSpace(h.Get(HeaderUserID))
	if meta.UserID == "" {
		return meta, missingHeader(HeaderUserID)
	}
	if !id.IsID32(meta.UserID) {
		return meta, invalidHeader("invalid " + HeaderUserID)
	}
	return meta, nil
}

// validRequestID accepts a 32-hex id or a canonical RFC 4122 UUID (versions 1-5).
func validRequestID(v string) bool {
	if id.IsID32(v) {
		return true
	}
	if len(v) != 36 {
		return false
	}
	u, err := uuid.Parse(v)
	if err != nil || u.Variant() != uuid.RFC4122 {
		return false
	}
	return u.Version() >= 1 && u.Version() <= 5
}

// parseRequestAt reads epoch seconds, epoch milliseconds, or RFC3339 with a zone.
// Timestamps without a zone are rejected.
func parseRequestAt(raw string) (time.Time, bool) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

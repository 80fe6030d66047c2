package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "circulation:idempotency"

type entryState string

const (
	stateInProgress entryState = "in_progress"
	stateCompleted  entryState = "completed"
)

// entry is the stored outcome of one mutating request.
type entry struct {
	State       entryState `json:"state"`
	Fingerprint string     `json:"fingerprint"`
	Status      int        `json:"status,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Body        []byte     `json:"body,omitempty"`
	RequestAt   time.Time  `json:"request_at"`
	StoredAt    time.Time  `json:"stored_at"`
}

func (e entry) replayable() bool { return e.State == stateCompleted && e.Status != 0 }

// requestKey scopes a request id to the user and the route template it was sent to.
type requestKey struct {
	UserID    string
	Route     string
	RequestID string
}

func newRequestKey(meta requestMeta, method, routePath string) requestKey {
	return requestKey{UserID: meta.UserID, Route: strings.ToUpper(method) + " " + routePath, RequestID: meta.RequestID}
}

func (k requestKey) String() string {
	return keyPrefix + ":" + k.UserID + ":" + k.Route + ":" + k.RequestID
}

// fingerprint identifies a request body so a reused request id with another payload is caught.
func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type entryStore struct {
	rdb     redis.Cmdable
	lockTTL time.Duration
	ttl     time.Duration
}

// claim stores an in-progress entry unless the key already exists.
func (s entryStore) claim(ctx context.Context, key requestKey, e entry) (bool, error) {
	e.State = stateInProgress
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key.String(), payload, s.lockTTL).Result()
}

func (s entryStore) load(ctx context.Context, key requestKey) (entry, error) {
	var e entry
	raw, err := s.rdb.Get(ctx, key.String()).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("decode idempotency entry %s: %w", key, err)
	}
	return e, nil
}

func (s entryStore) complete(ctx context.Context, key requestKey, e entry) error {
	e.State = stateCompleted
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key.String(), payload, s.ttl).Err()
}

func (s entryStore) release(ctx context.Context, key requestKey) error {
	return s.rdb.Del(ctx, key.String()).Err()
}

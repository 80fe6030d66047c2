package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"library-circulation/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// How long an in-progress claim survives if the handler never finishes.
	provisionalLockTTL = 60 * time.Second
	storeTimeout       = 2 * time.Second
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func reject(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, errorBody{Error: msg, Code: code})
}

func replay(c echo.Context, e entry) error {
	c.Response().Header().Set("Idempotent-Replayed", "true")
	if len(e.Body) == 0 {
		return c.NoContent(e.Status)
	}
	contentType := e.ContentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(e.Status, contentType, e.Body)
}

// Idempotency replays the stored response of a mutating request. The key is the user, the route
// template and the request id. Server errors are not stored so the client may retry with the same id.
func Idempotency(rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) echo.MiddlewareFunc {
	store := entryStore{rdb: rdb, lockTTL: provisionalLockTTL, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			meta, herr := parseRequestMeta(req.Header, time.Now().UTC())
			if herr != nil {
				return reject(c, http.StatusBadRequest, herr.code, herr.msg)
			}

			ctx := log.WithUserID(log.WithRequestID(req.Context(), meta.RequestID), meta.UserID)
			req = req.WithContext(ctx)
			var payload []byte
			if req.Body != nil {
				payload, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(payload))
			c.SetRequest(req)

			key := newRequestKey(meta, req.Method, c.Path())
			claim := entry{Fingerprint: fingerprint(payload), RequestAt: meta.RequestAt, StoredAt: time.Now().UTC()}

			sctx, cancel := context.WithTimeout(ctx, storeTimeout)
			defer cancel()
			claimed, err := store.claim(sctx, key, claim)
			if err != nil {
				log.Error(ctx, "idempotency store unavailable", err)
				return reject(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "idempotency store unavailable")
			}
			if !claimed {
				cur, err := store.load(sctx, key)
				switch {
				case errors.Is(err, redis.Nil):
					log.Warn(log.WithField(ctx, "key", key.String()), "idempotency entry expired during lookup")
				case err != nil:
					log.Error(ctx, "idempotency entry unreadable", err)
				case cur.Fingerprint != claim.Fingerprint:
					return reject(c, http.StatusConflict, "IDEMPOTENCY_MISMATCH", HeaderRequestID+" reused with different body")
				case cur.replayable():
					return replay(c, cur)
				}
				return reject(c, http.StatusConflict, "IN_PROGRESS", "request is already in progress")
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the handler is done; the store write must not inherit its cancellation
			fctx, fcancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
			defer fcancel()
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(fctx, key); err != nil {
					log.Error(ctx, "idempotency release failed", err)
				}
				return nil
			}
			done := claim
			done.Status = rec.code
			done.ContentType = rec.Header().Get(echo.HeaderContentType)
			done.Body = rec.buf.Bytes()
			done.StoredAt = time.Now().UTC()
			if err := store.complete(fctx, key, done); err != nil {
				log.Error(ctx, "idempotency save failed", err)
			}
			return nil
		}
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"library-circulation/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Format: "json", Output: &buf})

	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/loans/:loan_id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "resource not found"})
	})

	req := httptest.NewRequest(http.MethodGet, "/loans/abc", nil)
	req.Header.Set(HeaderRequestID, testReqID)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line not json: %v (%q)", err, buf.String())
	}
	want := map[string]any{
		"level":      "warn",
		"method":     "GET",
		"route":      "/loans/:loan_id",
		"uri":        "/loans/abc",
		"request_id": testReqID,
		"message":    "request",
	}
	for k, v := range want {
		if line[k] != v {
			t.Fatalf("%s = %v, want %v (line %v)", k, line[k], v, line)
		}
	}
	if line["status"] != float64(http.StatusNotFound) {
		t.Fatalf("status = %v", line["status"])
	}
}

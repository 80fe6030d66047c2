package middleware

import (
	"library-circulation/pkg/logger"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger writes one access line per request through the service logger.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		LogHeaders:   []string{HeaderRequestID, HeaderUserID},
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			zl := log.Zerolog()
			var ev *zerolog.Event
			switch {
			case v.Status >= 500:
				ev = zl.Error().Err(v.Error)
			case v.Status >= 400:
				ev = zl.Warn()
			default:
				ev = zl.Info()
			}
			if ids := v.Headers[HeaderRequestID]; len(ids) > 0 {
				ev = ev.Str("request_id", ids[0])
			}
			if ids := v.Headers[HeaderUserID]; len(ids) > 0 {
				ev = ev.Str("user_id", ids[0])
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

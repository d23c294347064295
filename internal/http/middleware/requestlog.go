package middleware

import (
	"time"

	"github.com/jmehdipour/wifi-billing/internal/logger"
	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request to logger.Log.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo's error handler settle the status before logging
				c.Error(err)
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.String("remote_ip", c.RealIP()),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("bytes_out", c.Response().Size),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			switch s := c.Response().Status; {
			case s >= 500:
				logger.Log.Error("http request", fields...)
			case s >= 400:
				logger.Log.Warn("http request", fields...)
			default:
				logger.Log.Info("http request", fields...)
			}
			return nil
		}
	}
}

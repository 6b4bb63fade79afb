package server

import (
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// requestLogger logs one line per request through logrus
func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			entry := logger.WithFields(log.Fields{
				"method":   req.Method,
				"path":     c.Path(),
				"status":   c.Response().Status,
				"duration": time.Since(start).String(),
			})
			if err != nil {
				entry.WithError(err).Warn("request")
				return nil
			}
			entry.Debug("request")
			return nil
		}
	}
}

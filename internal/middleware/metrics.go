package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/metrics"
)

// Metrics records request counts and latencies by route pattern. It must
// wrap RequestLogger so that errors have already been rendered when the
// status is read; an unhandled error is rendered here.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil && !c.Response().Committed {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			metrics.ObserveHTTP(c.Request().Method, path, c.Response().Status, time.Since(start))
			return err
		}
	}
}

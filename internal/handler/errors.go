package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/repository"
)

// ErrorHandler renders every error as {"success": false, "message": ...}
// and logs it with the request id. Only *apperror.Error messages and
// echo's own HTTP errors reach the client; anything else becomes a
// generic 500.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := "Internal Server Error"

		var ae *apperror.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status, msg = ae.Status(), ae.Message
		case errors.As(err, &he):
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(he.Code)
			}
		}

		entry := log.WithFields(logrus.Fields{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"method":     c.Request().Method,
			"path":       c.Path(),
			"status":     status,
		}).WithError(err)
		if status >= http.StatusInternalServerError {
			entry.Error("request error")
		} else {
			entry.Info("request error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, echo.Map{"success": false, "message": msg})
	}
}

// storageError converts an unexpected repository error into an
// Unavailable or Internal application error.
func storageError(err error) error {
	if repository.IsUnavailable(err) {
		return apperror.Unavailable(err)
	}
	return apperror.Internal(err)
}

// normalizer is implemented by request bodies that trim or lower-case
// fields before validation.
type normalizer interface{ normalize() }

// bind decodes the request body, normalizes and validates it. Malformed
// JSON is a validation failure.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperror.Wrap(apperror.KindValidation, "invalid request body", err)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := c.Validate(dst); err != nil {
		return err
	}
	return nil
}

// success writes {"success": true, "message": msg} merged with fields.
func success(c echo.Context, status int, msg string, fields echo.Map) error {
	body := echo.Map{"success": true, "message": msg}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}

func paramID(c echo.Context, name string) (uint64, error) {
	// ids are INT UNSIGNED columns
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid " + name)
	}
	return id, nil
}

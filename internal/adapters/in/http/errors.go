package http

import (
	"errors"
	"log/slog"
	"net/http"

	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps an error kind to its HTTP status code.
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrObjectConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &httpErr):
		return httpErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an Error body. Internal failures are logged and
// their details are not sent to the client.
func writeError(ctx echo.Context, logger *slog.Logger, err error) error {
	code := statusFor(err)
	message := err.Error()

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && code == httpErr.Code {
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"status", code,
			"error", err)
		if code == http.StatusInternalServerError {
			message = http.StatusText(code)
		}
	}

	return ctx.JSON(code, Error{Code: code, Message: message})
}

// ErrorHandler is installed as echo's HTTPErrorHandler so that routing errors
// (unknown path, wrong method) share the Error body.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}
		if werr := writeError(ctx, logger, err); werr != nil {
			logger.Error("failed to write error response", "error", werr)
		}
	}
}

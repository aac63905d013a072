package echoServer

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kp7829294-create/libzone/util/apperr"
)

// ErrorHandler renders every failure as {"error": msg}. Unexpected errors are
// logged and answered with a generic message.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"err", err,
				"status", status,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"path", c.Path(),
				"method", c.Request().Method,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"error": msg})
		}
		if err != nil {
			log.Error("write error response", "err", err)
		}
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok && m != "" {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		return http.StatusInternalServerError, "Internal server error"
	}
	status := apperr.Status(kind)
	return status, apperr.Message(err, http.StatusText(status))
}

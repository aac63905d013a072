package controller

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Bind decodes req from the request and runs the echo validator on it.
func Bind(c echo.Context, log *slog.Logger, req any) error {
	if err := c.Bind(req); err != nil {
		log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", "path", c.Path(), "err", err)
		return err
	}
	return nil
}

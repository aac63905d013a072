package stats

import (
	"net/http"

	"github.com/labstack/echo/v4"

	statssvc "github.com/kp7829294-create/libzone/service/stats"
)

type Controller struct {
	Svc statssvc.Service
}

// Get dashboard counters (admin)
// @Summary      Stats
// @Description  Books, students, active loans and overdue loans
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.Stats
// @Failure      401  {object}  map[string]any
// @Router       /api/stats [get]
func (h *Controller) Get(c echo.Context) error {
	s, err := h.Svc.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

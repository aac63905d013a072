// app/echoServer/controller/userController.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kp7829294-create/libzone/app/echoServer/jwtx"
	"github.com/kp7829294-create/libzone/model"
	authsvc "github.com/kp7829294-create/libzone/service/auth"
)

type UserController struct {
	s   authsvc.Service
	log *slog.Logger
}

func NewUserController(s authsvc.Service, log *slog.Logger) *UserController {
	return &UserController{s: s, log: log}
}

// UpdateMe edits the caller's profile
// @Summary      Update profile
// @Description  Change name or avatar; the password changes only when currentPassword matches
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.ProfileUpdateReq  true  "Profile fields"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any "wrong current password"
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/users/me [patch]
func (ct *UserController) UpdateMe(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req model.ProfileUpdateReq
	if err := Bind(c, ct.log, &req); err != nil {
		return err
	}

	u, err := ct.s.UpdateProfile(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

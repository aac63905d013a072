package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kp7829294-create/libzone/app/echoServer/controller"
	"github.com/kp7829294-create/libzone/app/echoServer/jwtx"
	"github.com/kp7829294-create/libzone/model"
	authsvc "github.com/kp7829294-create/libzone/service/auth"
	jwtutil "github.com/kp7829294-create/libzone/util/jwt"
)

type Controller struct {
	Svc authsvc.Service
	Log *slog.Logger

	// Cookie is the session cookie name; Secure marks it HTTPS-only.
	Cookie string
	Secure bool
}

func (ct *Controller) setSession(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     ct.Cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwtutil.TTL / time.Second),
		HttpOnly: true,
		Secure:   ct.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SendOTP mails a signup code
// @Summary      Send signup code
// @Description  Mails a 6-digit code valid for 10 minutes to an unregistered email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.SendOTPReq  true  "Email"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any "invalid or already registered"
// @Failure      503  {object}  map[string]any "mail delivery failed"
// @Router       /api/auth/send-otp [post]
func (ct *Controller) SendOTP(c echo.Context) error {
	var req model.SendOTPReq
	if err := controller.Bind(c, ct.Log, &req); err != nil {
		return err
	}
	if err := ct.Svc.SendOTP(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to email"})
}

// Signup creates a student account
// @Summary      Sign up
// @Description  Verifies the emailed code, creates a student and starts a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.SignupReq  true  "Signup payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /api/auth/signup [post]
func (ct *Controller) Signup(c echo.Context) error {
	var req model.SignupReq
	if err := controller.Bind(c, ct.Log, &req); err != nil {
		return err
	}

	u, token, err := ct.Svc.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}

	ct.setSession(c, token)
	return c.JSON(http.StatusCreated, echo.Map{"user": u, "token": token})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT and sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /api/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := controller.Bind(c, ct.Log, &req); err != nil {
		return err
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	ct.setSession(c, token)
	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}

// Logout
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/auth/logout [post]
func (ct *Controller) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     ct.Cookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ct.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the session's account, or null when there is none
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/auth/me [get]
func (ct *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"user": nil})
	}
	u, err := ct.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		if !errors.Is(err, authsvc.ErrUserNotFound) {
			ct.Log.Warn("me lookup failed", "user_id", uid, "err", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"user": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

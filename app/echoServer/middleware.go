// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kp7829294-create/libzone/app/echoServer/jwtx"
	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/util/apperr"
	jwtutil "github.com/kp7829294-create/libzone/util/jwt"
)

// CookieName carries the session token for browser clients.
const CookieName = "libzone-token"

// BodyLimit covers the largest upload (a 20 MB PDF) plus multipart overhead.
const BodyLimit = "21M"

var (
	ErrUnauthenticated = apperr.New(apperr.Unauthorized, "UNAUTHENTICATED", "Unauthorized")
	ErrForbidden       = apperr.New(apperr.Unauthorized, "FORBIDDEN", "Unauthorized")
)

func RegisterMiddlewares(e *echo.Echo, log *slog.Logger) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog(log))

	e.Use(middleware.BodyLimit(BodyLimit))
}

func Slog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status below is final.
				c.Error(err)
			}
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			log.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return nil
		}
	}
}

func jwtConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    jwtx.ContextKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(jwtutil.Claims) },
		TokenLookup:   "header:Authorization:Bearer ,cookie:" + CookieName,
	}
}

// JWTAuth rejects requests without a valid session.
func JWTAuth(secret string) echo.MiddlewareFunc {
	cfg := jwtConfig(secret)
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return ErrUnauthenticated.Wrap(err)
	}
	return echojwt.WithConfig(cfg)
}

// OptionalJWT attaches the session when one is present and valid, and
// otherwise lets the request through anonymously.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	cfg := jwtConfig(secret)
	cfg.ContinueOnIgnoredError = true
	cfg.ErrorHandler = func(c echo.Context, err error) error { return nil }
	return echojwt.WithConfig(cfg)
}

// RequireRole must run after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := jwtx.CallerFromContext(c)
			if err != nil {
				return ErrUnauthenticated.Wrap(err)
			}
			if !slices.Contains(roles, caller.Role) {
				return ErrForbidden
			}
			return next(c)
		}
	}
}

// Package jwtx reads the verified session claims echo-jwt stores on the context.
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/kp7829294-create/libzone/model"
	jwtutil "github.com/kp7829294-create/libzone/util/jwt"
)

// ContextKey is where echo-jwt puts the parsed token.
const ContextKey = "user"

func claims(c echo.Context) (*jwtutil.Claims, error) {
	tok, ok := c.Get(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, errors.New("no jwt token in context")
	}
	cl, ok := tok.Claims.(*jwtutil.Claims)
	if !ok {
		return nil, errors.New("invalid jwt claims")
	}
	if cl.Subject == "" {
		return nil, errors.New("sub missing in claims")
	}
	return cl, nil
}

func CallerFromContext(c echo.Context) (model.Caller, error) {
	cl, err := claims(c)
	if err != nil {
		return model.Caller{}, err
	}
	return model.Caller{ID: cl.Subject, Role: model.Role(cl.Role)}, nil
}

func UserIDFromContext(c echo.Context) (string, error) {
	cl, err := claims(c)
	if err != nil {
		return "", err
	}
	return cl.Subject, nil
}

package echoServer

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/kp7829294-create/libzone/app/echoServer/controller"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/auth"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/book"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/loan"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/stats"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/upload"
	"github.com/kp7829294-create/libzone/app/echoServer/validation"
	"github.com/kp7829294-create/libzone/model"
)

type C struct {
	Auth      *auth.Controller
	User      *controller.UserController
	Book      *book.Controller
	Loan      *loan.Controller
	Stats     *stats.Controller
	Upload    *upload.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	api := e.Group("/api")
	authn := JWTAuth(c.JWTSecret)
	admin := RequireRole(model.RoleAdmin)
	student := RequireRole(model.RoleStudent)

	// Public
	api.POST("/auth/send-otp", c.Auth.SendOTP)
	api.POST("/auth/signup", c.Auth.Signup)
	api.POST("/auth/login", c.Auth.Login)
	api.POST("/auth/logout", c.Auth.Logout)
	api.GET("/auth/me", c.Auth.Me, OptionalJWT(c.JWTSecret))

	api.GET("/books", c.Book.Search)
	api.GET("/books/:id", c.Book.Detail)

	// Admin
	api.POST("/books", c.Book.Create, authn, admin)
	api.PUT("/books/:id", c.Book.Update, authn, admin)
	api.DELETE("/books/:id", c.Book.Delete, authn, admin)
	api.GET("/stats", c.Stats.Get, authn, admin)
	api.POST("/upload", c.Upload.Image, authn, admin)
	api.POST("/upload/pdf", c.Upload.PDF, authn, admin)

	// Any signed-in account
	api.GET("/borrows", c.Loan.List, authn)
	api.PATCH("/users/me", c.User.UpdateMe, authn)

	// Students
	api.POST("/borrows", c.Loan.Issue, authn, student)
	api.POST("/borrows/return", c.Loan.Return, authn, student)
	api.GET("/borrows/read/:borrowId", c.Loan.Read, authn, student)
}

// New builds the echo instance with the shared error handler, serializer,
// validator and middleware stack.
func New(log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(log)
	e.JSONSerializer = JSONSerializer{}
	e.Validator = validation.New()
	RegisterMiddlewares(e, log)
	return e
}

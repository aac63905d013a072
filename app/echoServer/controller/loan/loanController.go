package loan

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kp7829294-create/libzone/app/echoServer/controller"
	"github.com/kp7829294-create/libzone/app/echoServer/jwtx"
	"github.com/kp7829294-create/libzone/model"
	loansvc "github.com/kp7829294-create/libzone/service/loan"
)

type Controller struct {
	Svc loansvc.Service
	Log *slog.Logger
}

func unauthorized() error { return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized") }

// List the caller's active loans
// @Summary      My borrows
// @Tags         borrows
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Loan
// @Failure      401  {object}  map[string]any
// @Router       /api/borrows [get]
func (h *Controller) List(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return unauthorized()
	}
	loans, err := h.Svc.ActiveLoans(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	return c.JSON(http.StatusOK, loans)
}

// Issue a loan (student)
// @Summary      Borrow book
// @Description  Takes one available copy; due in 14 days
// @Tags         borrows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  IssueReq  true  "Book to borrow"
// @Success      200  {object}  model.Loan
// @Failure      400  {object}  map[string]any "out of stock or already borrowed"
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/borrows [post]
func (h *Controller) Issue(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return unauthorized()
	}
	var req IssueReq
	if err := controller.Bind(c, h.Log, &req); err != nil {
		return err
	}

	l, err := h.Svc.Issue(c.Request().Context(), caller, req.BookID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

// Return a loan (student)
// @Summary      Return book
// @Tags         borrows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  ReturnReq  true  "Borrow to close"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/borrows/return [post]
func (h *Controller) Return(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return unauthorized()
	}
	var req ReturnReq
	if err := controller.Bind(c, h.Log, &req); err != nil {
		return err
	}

	if err := h.Svc.Return(c.Request().Context(), caller, req.BorrowID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Read a borrowed PDF (student)
// @Summary      Read book
// @Description  Redirects to a short-lived link; json=1 returns it, stream=1 relays the bytes
// @Tags         borrows
// @Produce      json
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        borrowId  path   string  true   "Borrow id"
// @Param        stream    query  string  false  "1 to stream"
// @Param        json      query  string  false  "1 for JSON"
// @Success      200  {object}  loansvc.Content
// @Success      307
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      502  {object}  map[string]any
// @Router       /api/borrows/read/{borrowId} [get]
func (h *Controller) Read(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return unauthorized()
	}
	var q ReadQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	ctx := c.Request().Context()
	loanID := c.Param("borrowId")

	if q.Stream == "1" {
		body, err := h.Svc.StreamContent(ctx, caller, loanID)
		if err != nil {
			return err
		}
		defer body.Close()

		hdr := c.Response().Header()
		hdr.Set(echo.HeaderContentDisposition, `inline; filename="book.pdf"`)
		hdr.Set("Cache-Control", "no-store")
		return c.Stream(http.StatusOK, "application/pdf", body)
	}

	content, err := h.Svc.OpenContent(ctx, caller, loanID)
	if err != nil {
		return err
	}
	if q.JSON == "1" {
		return c.JSON(http.StatusOK, content)
	}
	return c.Redirect(http.StatusTemporaryRedirect, content.URL)
}

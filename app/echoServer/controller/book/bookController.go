package book

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kp7829294-create/libzone/app/echoServer/controller"
	"github.com/kp7829294-create/libzone/model"
	booksvc "github.com/kp7829294-create/libzone/service/book"
)

type Controller struct {
	Svc booksvc.Service
	Log *slog.Logger
}

// Search the catalog
// @Summary      Search books
// @Description  Case-insensitive match on title or author, optional exact category; newest first
// @Tags         books
// @Produce      json
// @Param        q         query  string  false  "Title or author text"
// @Param        category  query  string  false  "Category"
// @Success      200  {array}   model.Book
// @Failure      500  {object}  map[string]any
// @Router       /api/books [get]
func (h *Controller) Search(c echo.Context) error {
	var q SearchQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	rows, err := h.Svc.Search(c.Request().Context(), q.Filter())
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []model.Book{}
	}
	return c.JSON(http.StatusOK, rows)
}

// Detail
// @Summary      Get book
// @Tags         books
// @Produce      json
// @Param        id   path  string  true  "Book id"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	b, err := h.Svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// Create (admin)
// @Summary      Create book
// @Description  total defaults to 1 and available to total; both are clamped to valid stock
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.CreateBookReq  true  "Book"
// @Success      201  {object}  model.Book
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /api/books [post]
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateBookReq
	if err := controller.Bind(c, h.Log, &req); err != nil {
		return err
	}
	b, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

// Update (admin)
// @Summary      Update book
// @Description  Partial edit. Stock values are an administrative override and are clamped
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string           true  "Book id"
// @Param        payload  body  model.BookPatch  true  "Fields to change"
// @Success      200  {object}  model.Book
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [put]
func (h *Controller) Update(c echo.Context) error {
	var p model.BookPatch
	if err := controller.Bind(c, h.Log, &p); err != nil {
		return err
	}
	b, err := h.Svc.Update(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// Delete (admin)
// @Summary      Delete book
// @Description  Refused while any loan of the book is active
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Book id"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any "book has active loans"
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

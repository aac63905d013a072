package upload

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	uploadsvc "github.com/kp7829294-create/libzone/service/upload"
)

type Controller struct {
	Svc uploadsvc.Service
	Log *slog.Logger
}

// part opens the "file" form field. A missing field yields an empty File so
// the service reports it.
func (h *Controller) part(c echo.Context) (uploadsvc.File, func(), error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return uploadsvc.File{}, func() {}, nil
	}
	if err != nil {
		h.Log.Warn("multipart parse failed", "path", c.Path(), "err", err)
		return uploadsvc.File{}, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart body")
	}
	f, err := fh.Open()
	if err != nil {
		return uploadsvc.File{}, nil, err
	}
	return uploadsvc.File{Name: fh.Filename, Size: fh.Size, Body: f}, func() { f.Close() }, nil
}

// Image uploads a cover (admin)
// @Summary      Upload cover image
// @Description  jpeg, png, webp or gif up to 5 MB; returns a public URL
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file    formData  file    true   "Image"
// @Param        folder  formData  string  false  "Target folder"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /api/upload [post]
func (h *Controller) Image(c echo.Context) error {
	f, done, err := h.part(c)
	if err != nil {
		return err
	}
	defer done()

	url, err := h.Svc.Image(c.Request().Context(), f, c.FormValue("folder"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// PDF uploads a book file (admin)
// @Summary      Upload book PDF
// @Description  application/pdf up to 20 MB, stored privately; returns a preview link and the key to save on the book
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file    formData  file    true   "PDF"
// @Param        folder  formData  string  false  "Target folder"
// @Success      200  {object}  uploadsvc.PDF
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /api/upload/pdf [post]
func (h *Controller) PDF(c echo.Context) error {
	f, done, err := h.part(c)
	if err != nil {
		return err
	}
	defer done()

	out, err := h.Svc.PDF(c.Request().Context(), f, c.FormValue("folder"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	h "techconnect/internal/delivery/http/helpers"
	"techconnect/internal/domain"
)

type UploadController struct {
	Logger *slog.Logger
	Store  domain.BlobStore
}

func NewUploadController(logger *slog.Logger, store domain.BlobStore) *UploadController {
	return &UploadController{
		Logger: logger,
		Store:  store,
	}
}

// Upload godoc
// @Summary Upload an event image
// @Description Upload an image (multipart form field "image", max 5 MB). Returns the public URL to reference from an event.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} helpers.APIResponse "data contains the image URL"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 413 {object} helpers.APIResponse "error.code: bad_request (file too large)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /upload [post]
func (c *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	// One extra byte so an exactly-at-limit upload is distinguishable from an
	// oversize one.
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxBlobSize+1)

	file, header, err := r.FormFile("image")
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, `multipart field "image" is required`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, domain.MaxBlobSize+1))
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "could not read upload")
		return
	}

	url, err := c.Store.Store(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBlobTooLarge):
			h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodeBadRequest, "image exceeds the 5 MB limit")
		case errors.Is(err, domain.ErrBlobNotAnImage):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "file is not an image")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not store upload")
		}
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, map[string]string{"url": url})
}

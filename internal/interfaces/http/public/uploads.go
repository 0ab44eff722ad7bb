package public

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
)

const (
	uploadField = "image"
	// room for multipart headers and boundaries around the file itself
	multipartOverhead = 64 << 10
)

// uploadHandler accepts a single multipart image and returns its hosted URL.
func (h *Handler) uploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := h.images.MaxBytes()
		r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes)+multipartOverhead)

		if err := r.ParseMultipartForm(int64(maxBytes)); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				common.WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("image: file exceeds %d bytes", maxBytes))
				return
			}
			common.WriteError(h.logger, w, http.StatusBadRequest, "request must be multipart/form-data")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(uploadField)
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "image: file is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, int64(maxBytes)+1))
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "image: could not read file")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		uploaded, err := h.images.Upload(ctx, application.ImageUpload{Filename: header.Filename, Data: data})
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to upload image")
			return
		}

		h.logger.Infow("image uploaded", "publicId", uploaded.PublicID, "contentType", uploaded.ContentType, "size", uploaded.Size)
		common.WriteData(h.logger, w, http.StatusCreated, uploadResponse{
			URL:         uploaded.URL,
			PublicID:    uploaded.PublicID,
			ContentType: uploaded.ContentType,
			Size:        uploaded.Size,
		})
	}
}

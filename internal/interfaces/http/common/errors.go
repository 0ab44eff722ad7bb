package common

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
	"github.com/campuseats/dining-reviews/api/internal/ingest"
)

// WriteServiceError maps application errors to status codes. Anything unrecognised
// is logged and answered with a generic 500 carrying fallback.
func WriteServiceError(logger *zap.SugaredLogger, w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(logger, w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteError(logger, w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrDuplicate):
		WriteError(logger, w, http.StatusConflict, "resource already exists")
	case errors.Is(err, ingest.ErrBufferFull), errors.Is(err, ingest.ErrClosed), errors.Is(err, ingest.ErrWaitTimeout):
		w.Header().Set("Retry-After", RetryAfterSeconds)
		WriteError(logger, w, http.StatusServiceUnavailable, "review intake is busy, please retry")
	case errors.Is(err, application.ErrUploadUnavailable):
		WriteError(logger, w, http.StatusServiceUnavailable, "image upload is not available")
	default:
		if logger != nil {
			logger.Errorw(fallback, "method", r.Method, "path", r.URL.Path, "error", err)
		}
		WriteError(logger, w, http.StatusInternalServerError, fallback)
	}
}

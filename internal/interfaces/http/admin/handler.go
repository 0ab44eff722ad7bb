package admin

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger         *zap.SugaredLogger
	reviewCommands application.ReviewCommandService
	failedReviews  application.FailedReviewQueryService
	allowClear     bool
}

// Config provides dependencies for Handler. AllowBulkClear is only set in development.
type Config struct {
	Logger         *zap.SugaredLogger
	ReviewCommands application.ReviewCommandService
	FailedReviews  application.FailedReviewQueryService
	AllowBulkClear bool
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		logger:         logger,
		reviewCommands: cfg.ReviewCommands,
		failedReviews:  cfg.FailedReviews,
		allowClear:     cfg.AllowBulkClear,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Delete("/reviews", h.reviewClearHandler())
	r.Get("/reviews/failed", h.failedReviewListHandler())
}

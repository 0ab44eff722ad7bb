package public

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *zap.SugaredLogger
	reviewQueries  application.ReviewQueryService
	reviewCommands application.ReviewCommandService
	foodItems      application.FoodItemQueryService
	stations       application.StationService
	images         application.ImageUploadService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *zap.SugaredLogger
	ReviewQueries  application.ReviewQueryService
	ReviewCommands application.ReviewCommandService
	FoodItems      application.FoodItemQueryService
	Stations       application.StationService
	Images         application.ImageUploadService
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		logger:         logger,
		reviewQueries:  cfg.ReviewQueries,
		reviewCommands: cfg.ReviewCommands,
		foodItems:      cfg.FoodItems,
		stations:       cfg.Stations,
		images:         cfg.Images,
	}
}

// Register mounts all public routes onto the router. optionalAuth attaches the
// user when a valid token is present and never rejects the request.
func (h *Handler) Register(r chi.Router, authMiddleware, optionalAuth func(http.Handler) http.Handler) {
	r.Get("/reviews", h.reviewListHandler())
	r.With(optionalAuth).Post("/reviews", h.reviewCreateHandler())
	r.Get("/reviews/{id}", h.reviewDetailHandler())
	r.Delete("/reviews/{id}", h.reviewDeleteHandler())
	r.Get("/food-items", h.foodItemListHandler())
	r.Get("/stations", h.stationListHandler())
	r.Post("/stations", h.stationCreateHandler())
	r.Post("/uploads", h.uploadHandler())
	r.With(authMiddleware).Get("/auth/verify", h.authVerifyHandler())
}

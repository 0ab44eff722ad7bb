package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
)

// reviewCreateHandler accepts anonymous submissions. A signed-in user without an
// explicit reviewer name is credited under their display name.
func (h *Handler) reviewCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReviewRequest
		if err := common.ReadJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}
		if err := common.ValidateStruct(req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		reviewer := strings.TrimSpace(req.Reviewer)
		if reviewer == "" {
			if user, ok := common.UserFromContext(r.Context()); ok {
				reviewer = user.DisplayName()
			}
		}

		// buffered writes may wait for a flush, so this outlives the read timeout
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		review, err := h.reviewCommands.Submit(ctx, application.SubmitReviewCommand{
			FoodItem: req.FoodItem,
			Station:  req.Station,
			Rating:   req.Rating,
			Comment:  req.Comment,
			Reviewer: reviewer,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to save review")
			return
		}

		h.logger.Infow("review submitted", "id", review.ID, "foodItem", review.FoodItem, "station", review.Station, "rating", review.Rating)
		common.WriteData(h.logger, w, http.StatusCreated, toReviewResponse(*review))
	}
}

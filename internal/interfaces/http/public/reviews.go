package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
)

// reviewListHandler lists active reviews, newest first.
func (h *Handler) reviewListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		filter := application.ReviewFilter{
			FoodItem: strings.TrimSpace(query.Get("foodItem")),
			Station:  strings.TrimSpace(query.Get("station")),
		}
		page, limit := common.ParsePaging(query)

		reviews, total, err := h.reviewQueries.List(ctx, filter, application.Paging{Page: page, Limit: limit})
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to list reviews")
			return
		}

		items := make([]reviewResponse, 0, len(reviews))
		for _, review := range reviews {
			items = append(items, toReviewResponse(review))
		}
		common.WriteData(h.logger, w, http.StatusOK, reviewListResponse{
			Items: items,
			Page:  page,
			Limit: limit,
			Total: total,
		})
	}
}

// reviewDetailHandler looks a review up by ID, soft-deleted ones included.
func (h *Handler) reviewDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		review, err := h.reviewQueries.Detail(ctx, chi.URLParam(r, "id"))
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to load review")
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, toReviewResponse(*review))
	}
}

func (h *Handler) reviewDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := chi.URLParam(r, "id")
		if err := h.reviewCommands.Delete(ctx, id); err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to delete review")
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, map[string]any{
			"id":      id,
			"deleted": true,
		})
	}
}

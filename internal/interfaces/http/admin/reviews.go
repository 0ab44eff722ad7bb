package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
	"github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
)

// reviewClearHandler hard-deletes every review. It is refused outside development.
func (h *Handler) reviewClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.allowClear {
			common.WriteError(h.logger, w, http.StatusForbidden, "bulk clear is only available in development")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		deleted, err := h.reviewCommands.Clear(ctx)
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to clear reviews")
			return
		}

		actor := ""
		if user, ok := common.UserFromContext(r.Context()); ok {
			actor = user.ID
		}
		h.logger.Warnw("all reviews cleared", "deleted", deleted, "actor", actor)
		common.WriteData(h.logger, w, http.StatusOK, clearReviewsResponse{Deleted: deleted})
	}
}

func (h *Handler) failedReviewListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		page, limit := common.ParsePaging(r.URL.Query())
		batches, err := h.failedReviews.List(ctx, application.Paging{Page: page, Limit: limit})
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to list failed reviews")
			return
		}

		items := make([]failedBatchResponse, 0, len(batches))
		for _, batch := range batches {
			items = append(items, toFailedBatchResponse(batch))
		}
		common.WriteData(h.logger, w, http.StatusOK, failedBatchListResponse{Items: items, Page: page, Limit: limit})
	}
}

func toFailedBatchResponse(batch domain.FailedReview) failedBatchResponse {
	reviews := make([]failedReviewItem, 0, len(batch.Reviews))
	for _, review := range batch.Reviews {
		reviews = append(reviews, failedReviewItem{
			FoodItem:  review.FoodItem,
			Station:   review.Station,
			Rating:    review.Rating,
			Comment:   review.Comment,
			Reviewer:  review.Reviewer,
			ImageURL:  review.ImageURL,
			CreatedAt: review.CreatedAt,
		})
	}
	return failedBatchResponse{
		ID:       batch.ID,
		Error:    batch.Error,
		Status:   batch.Status,
		FailedAt: batch.FailedAt,
		Reviews:  reviews,
	}
}

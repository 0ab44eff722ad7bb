package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
)

// foodItemListHandler serves cached aggregates. refresh=true reads through to storage.
func (h *Handler) foodItemListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		station := strings.TrimSpace(query.Get("station"))
		refresh := common.ParseBool(query.Get("refresh"))

		items, err := h.foodItems.List(ctx, station, refresh)
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to list food items")
			return
		}

		resp := make([]foodItemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, toFoodItemResponse(item))
		}
		common.WriteData(h.logger, w, http.StatusOK, resp)
	}
}

package public

import (
	"context"
	"net/http"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
)

func (h *Handler) stationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stations, err := h.stations.List(ctx)
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to list stations")
			return
		}

		resp := make([]stationResponse, 0, len(stations))
		for _, station := range stations {
			resp = append(resp, toStationResponse(station))
		}
		common.WriteData(h.logger, w, http.StatusOK, resp)
	}
}

func (h *Handler) stationCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createStationRequest
		if err := common.ReadJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}
		if err := common.ValidateStruct(req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		station, err := h.stations.Create(ctx, req.Name)
		if err != nil {
			common.WriteServiceError(h.logger, w, r, err, "failed to create station")
			return
		}
		common.WriteData(h.logger, w, http.StatusCreated, toStationResponse(*station))
	}
}

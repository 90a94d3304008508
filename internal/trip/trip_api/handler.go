package trip_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-station/internal/apperr"
	"ms-station/internal/logger"
	"ms-station/internal/models"
	"ms-station/internal/trip"
	"ms-station/internal/utils"
)

type Handler struct {
	TripService *trip.TripService
	Logger      *logger.Logger
}

func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.TripService.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTrips: %v", err))
		utils.WriteError(w, err)
		return
	}

	views := make([]TripListView, 0, len(trips))
	for _, t := range trips {
		views = append(views, toListView(t))
	}
	utils.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		utils.WriteError(w, apperr.NotFound("trip"))
		return
	}

	tripRow, err := h.TripService.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toDetailView(*tripRow))
}

func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req models.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	created, err := h.TripService.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTrip: %v", err))
		utils.WriteError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateTrip: created trip %d (%s -> %s)", created.ID, created.Source, created.Destination))
	utils.WriteJSON(w, http.StatusCreated, toWriteView(*created))
}

func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		utils.WriteError(w, apperr.NotFound("trip"))
		return
	}

	var req models.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	updated, err := h.TripService.Update(r.Context(), id, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTrip: trip %d: %v", id, err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toWriteView(*updated))
}

func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		utils.WriteError(w, apperr.NotFound("trip"))
		return
	}

	if err := h.TripService.Delete(r.Context(), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteTrip: trip %d: %v", id, err))
		utils.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func tripID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "tripId"), 10, 64)
}

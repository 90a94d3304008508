package facility_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-station/internal/facility"
	"ms-station/internal/logger"
	"ms-station/internal/utils"
)

type Handler struct {
	FacilityService *facility.FacilityService
	Logger          *logger.Logger
}

func (h *Handler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.FacilityService.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListFacilities: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, facilities)
}

func (h *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	created, err := h.FacilityService.Create(r.Context(), req.Name)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateFacility: %v", err))
		utils.WriteError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateFacility: created facility %d (%s)", created.ID, created.Name))
	utils.WriteJSON(w, http.StatusCreated, created)
}

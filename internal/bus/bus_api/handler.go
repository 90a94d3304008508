package bus_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ms-station/internal/apperr"
	"ms-station/internal/bus"
	"ms-station/internal/logger"
	"ms-station/internal/models"
	"ms-station/internal/utils"
)

const maxImageBytes = 10 << 20 // 10 MiB

type Handler struct {
	BusService *bus.BusService
	Logger     *logger.Logger
}

// paramsToInts turns "2,5" into []int64{2, 5}.
func paramsToInts(qs string) ([]int64, error) {
	parts := strings.Split(qs, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) ListBuses(w http.ResponseWriter, r *http.Request) {
	var facilityIDs []int64
	if raw := r.URL.Query().Get("facilities"); raw != "" {
		ids, err := paramsToInts(raw)
		if err != nil {
			utils.WriteError(w, apperr.NewValidation("facilities", "must be a comma-separated list of ids"))
			return
		}
		facilityIDs = ids
	}

	buses, err := h.BusService.List(r.Context(), facilityIDs)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListBuses: %v", err))
		utils.WriteError(w, err)
		return
	}

	views := make([]BusListView, 0, len(buses))
	for _, b := range buses {
		views = append(views, toListView(b))
	}
	utils.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) GetBus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "busId"), 10, 64)
	if err != nil {
		utils.WriteError(w, apperr.NotFound("bus"))
		return
	}

	busRow, err := h.BusService.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toDetailView(*busRow))
}

func (h *Handler) CreateBus(w http.ResponseWriter, r *http.Request) {
	var req models.BusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	created, err := h.BusService.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBus: %v", err))
		utils.WriteError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateBus: created bus %d with %d seats", created.ID, created.NumSeats))
	utils.WriteJSON(w, http.StatusCreated, toWriteView(*created))
}

// UploadImage handles the multipart upload-image sub-action. The route
// sits behind a staff-only check stricter than the collection policy.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "busId"), 10, 64)
	if err != nil {
		utils.WriteError(w, apperr.NotFound("bus"))
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		utils.WriteError(w, apperr.NewValidation("image", "invalid multipart payload"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteError(w, apperr.NewValidation("image", "this field is required"))
		return
	}
	defer file.Close()

	updated, err := h.BusService.UploadImage(r.Context(), id, header.Filename, file)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UploadImage: bus %d: %v", id, err))
		utils.WriteError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UploadImage: attached image to bus %d", id))
	utils.WriteJSON(w, http.StatusOK, toDetailView(*updated))
}

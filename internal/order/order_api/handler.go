package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-station/internal/apperr"
	"ms-station/internal/auth"
	"ms-station/internal/logger"
	"ms-station/internal/models"
	"ms-station/internal/order"
	"ms-station/internal/utils"
)

const (
	defaultPageSize = 5
	maxPageSize     = 50
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.NotAuthenticated())
		return
	}

	page, pageSize := pagination(r)
	orders, count, err := h.OrderService.List(r.Context(), id, page, pageSize)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOrders: user %s: %v", id.UserID, err))
		utils.WriteError(w, err)
		return
	}

	resp := PaginatedOrders{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  make([]OrderListView, 0, len(orders)),
	}
	for _, o := range orders {
		resp.Results = append(resp.Results, toListView(o))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.NotAuthenticated())
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		utils.WriteError(w, apperr.NotFound("order"))
		return
	}

	orderRow, err := h.OrderService.Get(r.Context(), id, orderID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toDetailView(*orderRow))
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.NotAuthenticated())
		return
	}

	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	created, err := h.OrderService.PlaceOrder(r.Context(), id, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: user %s: %v", id.UserID, err))
		utils.WriteError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("PlaceOrder: order %d created for user %s", created.ID, id.UserID))
	utils.WriteJSON(w, http.StatusCreated, toWriteView(*created))
}

// pagination reads page / page_size query params, clamping page_size
// to the ceiling. Bad values fall back to the defaults.
func pagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
			if pageSize > maxPageSize {
				pageSize = maxPageSize
			}
		}
	}
	return page, pageSize
}

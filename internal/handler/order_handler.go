package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/service"
)

// OrderHandler serves the order workflow endpoints.
type OrderHandler struct {
	orderService *service.OrderService
	logger       zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.orderService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": summaries})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// UpdateStatus handles POST /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
		return
	}

	var status string
	if r.Header.Get("Content-Type") == "application/json" {
		var req struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		status = req.Status
	} else {
		status = r.PostFormValue("status")
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(status)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// Delete handles POST /orders/{id}/delete.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Stats handles GET /orders/stats.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orderService.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/service"
)

// ReportHandler serves the inventory dashboard endpoints.
type ReportHandler struct {
	reportService *service.ReportService
	logger        zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger.With().Str("handler", "report").Logger(),
	}
}

// Inventory handles GET /reports/inventory: the complete dashboard
// payload in one call.
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Report(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// LowStock handles GET /reports/low-stock.
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.reportService.LowStock(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": viewsOf(products)})
}

// TopValue handles GET /reports/top-value.
func (h *ReportHandler) TopValue(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.reportService.TopValue(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": viewsOf(products)})
}

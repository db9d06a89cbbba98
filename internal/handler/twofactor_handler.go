package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/service"
)

// TwoFactorHandler serves second-factor enrollment endpoints.
type TwoFactorHandler struct {
	twoFactorService *service.TwoFactorService
	logger           zerolog.Logger
}

// NewTwoFactorHandler creates a new TwoFactorHandler.
func NewTwoFactorHandler(twoFactorService *service.TwoFactorService, logger zerolog.Logger) *TwoFactorHandler {
	return &TwoFactorHandler{
		twoFactorService: twoFactorService,
		logger:           logger.With().Str("handler", "twofactor").Logger(),
	}
}

// Setup handles POST /settings/twofactor/setup.
func (h *TwoFactorHandler) Setup(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	out, err := h.twoFactorService.Setup(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret":         out.Secret,
		"enrollment_uri": out.EnrollmentURI,
		"state":          out.State,
	})
}

// Enable handles POST /settings/twofactor/enable.
func (h *TwoFactorHandler) Enable(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var code string
	if r.Header.Get("Content-Type") == "application/json" {
		var req struct {
			Code string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		code = req.Code
	} else {
		code = r.PostFormValue("code")
	}

	if err := h.twoFactorService.Enable(r.Context(), sess.UserID, code); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

// Disable handles POST /settings/twofactor/disable.
func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var password string
	if r.Header.Get("Content-Type") == "application/json" {
		var req struct {
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		password = req.Password
	} else {
		password = r.PostFormValue("password")
	}

	if err := h.twoFactorService.Disable(r.Context(), sess.UserID, password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}

// Regenerate handles POST /settings/twofactor/regenerate.
func (h *TwoFactorHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	out, err := h.twoFactorService.Regenerate(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret":         out.Secret,
		"enrollment_uri": out.EnrollmentURI,
		"state":          out.State,
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
	"github.com/prn-tf/meridian-backoffice/internal/service"
	"github.com/prn-tf/meridian-backoffice/internal/session"
)

// adminPageSize is the page size for the user management list.
const adminPageSize = 20

// AdminHandler serves user management endpoints. Privilege checks live
// in the service; the handler only shapes requests and responses.
type AdminHandler struct {
	userAdminService *service.UserAdminService
	logger           zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userAdminService *service.UserAdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		userAdminService: userAdminService,
		logger:           logger.With().Str("handler", "admin").Logger(),
	}
}

// actorFrom reconstructs the acting user from session state.
func actorFrom(sess *session.Session) *domain.User {
	return &domain.User{
		ID:      sess.UserID,
		Account: sess.Account,
		Name:    sess.Name,
		IsAdmin: sess.IsAdmin,
	}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	result, err := h.userAdminService.ListUsers(r.Context(), actorFrom(sess), repository.ListOptions{
		Offset: (page - 1) * adminPageSize,
		Limit:  adminPageSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": result.Items,
		"total": result.Total,
		"page":  page,
	})
}

// CreateUser handles POST /admin/users.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req struct {
		Account  string `json:"account"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if r.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(r.Body).Decode(&req)
	} else {
		req.Account = r.PostFormValue("account")
		req.Username = r.PostFormValue("username")
		req.Name = r.PostFormValue("name")
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
		req.IsAdmin = r.PostFormValue("is_admin") == "1"
	}

	user, err := h.userAdminService.CreateUser(r.Context(), actorFrom(sess), service.CreateUserInput{
		Account:  req.Account,
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// DeleteUser handles POST /admin/users/{id}/delete.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	if err := h.userAdminService.DeleteUser(r.Context(), actorFrom(sess), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AuthLogs handles GET /admin/auth-logs.
func (h *AdminHandler) AuthLogs(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.userAdminService.RecentAuthLogs(r.Context(), actorFrom(sess), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

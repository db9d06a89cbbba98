package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/service"
	"github.com/prn-tf/meridian-backoffice/internal/session"
)

// AuthHandler serves login, registration, logout and account settings.
type AuthHandler struct {
	authService  *service.AuthService
	sessions     *session.Manager
	cookieName   string
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, cookieName string, cookieSecure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessions:     sessions,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// clientIP strips the port from the remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loginRequest accepts both JSON and form submissions.
type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

func decodeLogin(r *http.Request) loginRequest {
	if r.Header.Get("Content-Type") == "application/json" {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		return req
	}
	return loginRequest{
		Account:  r.PostFormValue("account"),
		Password: r.PostFormValue("password"),
	}
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req := decodeLogin(r)

	out, err := h.authService.Login(r.Context(), service.LoginInput{
		Account:   req.Account,
		Password:  req.Password,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    out.Session.Token,
		Path:     "/",
		Expires:  out.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"user": out.User,
	})
}

// registerRequest accepts both JSON and form submissions.
type registerRequest struct {
	Account         string `json:"account"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func decodeRegister(r *http.Request) registerRequest {
	if r.Header.Get("Content-Type") == "application/json" {
		var req registerRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		return req
	}
	return registerRequest{
		Account:         r.PostFormValue("account"),
		Username:        r.PostFormValue("username"),
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req := decodeRegister(r)

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Account:         req.Account,
		Username:        req.Username,
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": user,
	})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	if err := h.authService.Logout(r.Context(), sess.Token, sess.Account, clientIP(r), r.UserAgent()); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// CSRFToken handles GET /csrf: it returns the session's token for
// clients about to render a form, minting one on first use.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	token, err := h.sessions.CSRFToken(r.Context(), sess)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue csrf token")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

// UpdateProfile handles POST /settings/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Email    string `json:"email"`
	}
	if r.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(r.Body).Decode(&req)
	} else {
		req.Username = r.PostFormValue("username")
		req.Name = r.PostFormValue("name")
		req.Email = r.PostFormValue("email")
	}

	user, err := h.authService.UpdateProfile(r.Context(), service.UpdateProfileInput{
		UserID:   sess.UserID,
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// ChangePassword handles POST /settings/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if r.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(r.Body).Decode(&req)
	} else {
		req.CurrentPassword = r.PostFormValue("current_password")
		req.NewPassword = r.PostFormValue("new_password")
		req.ConfirmPassword = r.PostFormValue("confirm_password")
	}

	err := h.authService.ChangePassword(r.Context(), service.ChangePasswordInput{
		UserID:          sess.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

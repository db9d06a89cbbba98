package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/metrics"
	"github.com/prn-tf/meridian-backoffice/internal/session"
)

// CSRFHeader is the request header carrying the CSRF token for JSON
// clients; form clients post it as CSRFField instead.
const (
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "csrf_token"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the session injected by the auth
// middleware, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs every request and records the HTTP metrics.
func RequestLogger(logger zerolog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}

			m.ObserveRequest(r.Method, route, rec.status, elapsed)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", elapsed).
				Str("remote", r.RemoteAddr).
				Msg("request")
		})
	}
}

// sessionToken extracts the session token from the request cookie.
func sessionToken(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireSessionPage guards page-style routes: requests without a live
// session are redirected to the login page.
func RequireSessionPage(sessions *session.Manager, cookieName string) func(http.Handler) http.Handler {
	return requireSession(sessions, cookieName, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// RequireSessionAPI guards API routes: requests without a live session
// get a 401 JSON body.
func RequireSessionAPI(sessions *session.Manager, cookieName string) func(http.Handler) http.Handler {
	return requireSession(sessions, cookieName, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
	})
}

func requireSession(sessions *session.Manager, cookieName string, reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Resolve(r.Context(), sessionToken(r, cookieName))
			if err != nil {
				reject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VerifyCSRF guards mutating routes. The presented token must match the
// session's stored token exactly; a mismatch rejects the request with
// no side effects, and verification never issues a token.
func VerifyCSRF(sessions *session.Manager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			sess := SessionFromContext(r.Context())

			presented := r.Header.Get(CSRFHeader)
			if presented == "" {
				presented = r.PostFormValue(CSRFField)
			}

			if !sessions.VerifyCSRF(sess, presented) {
				m.CSRFRejections.Inc()
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "csrf token rejected"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

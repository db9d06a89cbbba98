package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/metrics"
	"github.com/prn-tf/meridian-backoffice/internal/session"
)

const testCookie = "meridian_session"

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()

	store := session.NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })
	return session.NewManager(store, time.Hour, zerolog.Nop())
}

// okHandler marks that the middleware let the request through.
func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func loggedInRequest(t *testing.T, sessions *session.Manager, method, target string, body string) (*http.Request, *session.Session) {
	t.Helper()

	sess, err := sessions.Issue(context.Background(), &domain.User{ID: 1, Account: "alice"})
	require.NoError(t, err)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(&http.Cookie{Name: testCookie, Value: sess.Token})
	return req, sess
}

func TestRequireSessionPage(t *testing.T) {
	sessions := newSessionManager(t)

	t.Run("no session redirects to login", func(t *testing.T) {
		var called bool
		mw := RequireSessionPage(sessions, testCookie)(okHandler(&called))

		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
		require.False(t, called)
	})

	t.Run("live session passes and lands in context", func(t *testing.T) {
		var gotSession *session.Session
		mw := RequireSessionPage(sessions, testCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSession = SessionFromContext(r.Context())
		}))

		req, sess := loggedInRequest(t, sessions, http.MethodGet, "/products", "")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		require.NotNil(t, gotSession)
		require.Equal(t, sess.UserID, gotSession.UserID)
	})

	t.Run("stale cookie redirects", func(t *testing.T) {
		var called bool
		mw := RequireSessionPage(sessions, testCookie)(okHandler(&called))

		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "gone"})
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.False(t, called)
	})
}

func TestRequireSessionAPI(t *testing.T) {
	sessions := newSessionManager(t)

	t.Run("no session gets 401 json", func(t *testing.T) {
		var called bool
		mw := RequireSessionAPI(sessions, testCookie)(okHandler(&called))

		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "not authenticated")
		require.False(t, called)
	})

	t.Run("live session passes", func(t *testing.T) {
		var called bool
		mw := RequireSessionAPI(sessions, testCookie)(okHandler(&called))

		req, _ := loggedInRequest(t, sessions, http.MethodGet, "/api/products", "")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		require.True(t, called)
	})
}

func TestVerifyCSRF(t *testing.T) {
	sessions := newSessionManager(t)
	m := metrics.New()

	// Chain the session middleware in front so the CSRF check sees the
	// session, mirroring the real router.
	protect := func(next http.Handler) http.Handler {
		return RequireSessionPage(sessions, testCookie)(VerifyCSRF(sessions, m)(next))
	}

	t.Run("safe methods skip verification", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
			var called bool
			req, _ := loggedInRequest(t, sessions, method, "/products", "")
			rec := httptest.NewRecorder()
			protect(okHandler(&called)).ServeHTTP(rec, req)

			require.True(t, called, "method %s should skip csrf", method)
		}
	})

	t.Run("post without token rejected", func(t *testing.T) {
		var called bool
		req, _ := loggedInRequest(t, sessions, http.MethodPost, "/products", "")
		rec := httptest.NewRecorder()
		protect(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "csrf token rejected")
		require.False(t, called)
	})

	t.Run("header token accepted", func(t *testing.T) {
		var called bool
		req, sess := loggedInRequest(t, sessions, http.MethodPost, "/products", "")
		token, err := sessions.CSRFToken(context.Background(), sess)
		require.NoError(t, err)
		req.Header.Set(CSRFHeader, token)

		rec := httptest.NewRecorder()
		protect(okHandler(&called)).ServeHTTP(rec, req)

		require.True(t, called)
	})

	t.Run("form field token accepted", func(t *testing.T) {
		var called bool

		sess, err := sessions.Issue(context.Background(), &domain.User{ID: 1, Account: "alice"})
		require.NoError(t, err)
		token, err := sessions.CSRFToken(context.Background(), sess)
		require.NoError(t, err)

		form := url.Values{CSRFField: {token}, "name": {"Desk Lamp"}}
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sess.Token})

		rec := httptest.NewRecorder()
		protect(okHandler(&called)).ServeHTTP(rec, req)

		require.True(t, called)
	})

	t.Run("token from another session rejected", func(t *testing.T) {
		var called bool

		otherSess, err := sessions.Issue(context.Background(), &domain.User{ID: 2, Account: "bob"})
		require.NoError(t, err)
		otherToken, err := sessions.CSRFToken(context.Background(), otherSess)
		require.NoError(t, err)

		req, _ := loggedInRequest(t, sessions, http.MethodPost, "/products", "")
		req.Header.Set(CSRFHeader, otherToken)

		rec := httptest.NewRecorder()
		protect(okHandler(&called)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.False(t, called)
	})
}

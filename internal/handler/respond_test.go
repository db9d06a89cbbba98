package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/imagestore"
	"github.com/prn-tf/meridian-backoffice/internal/service"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound, "product not found"},
		{"order not found", domain.ErrOrderNotFound, http.StatusNotFound, "order not found"},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "not authenticated"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "insufficient privilege"},
		{"self deletion", domain.ErrSelfDeletion, http.StatusForbidden, "cannot delete your own account"},
		{"csrf rejected", domain.ErrCSRFRejected, http.StatusForbidden, "csrf token rejected"},
		{
			"invalid order status keeps context",
			fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, "refunded"),
			http.StatusUnprocessableEntity,
			`invalid order status: "refunded"`,
		},
		{"unsupported image type", imagestore.ErrUnsupportedType, http.StatusUnprocessableEntity, "unsupported image type: must be jpeg, png, gif or webp"},
		{"image too large", imagestore.ErrTooLarge, http.StatusUnprocessableEntity, "image too large"},
		{"store failure stays generic", service.ErrStoreFailure, http.StatusInternalServerError, "internal error"},
		{"unknown error stays generic", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestWriteError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domain.NewValidationError([]string{"name is required", "price must not be negative"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "validation failed", resp.Error)
	require.Equal(t, []string{"name is required", "price must not be negative"}, resp.Messages)
}

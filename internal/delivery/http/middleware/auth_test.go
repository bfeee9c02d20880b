package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/domain"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	principal *domain.Principal
	err       error
	lastToken string
}

func (f *fakeTokenVerifier) Verify(token string) (*domain.Principal, error) {
	f.lastToken = token
	if f.err != nil {
		return nil, f.err
	}
	return f.principal, nil
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := &fakeTokenVerifier{principal: &domain.Principal{UserID: "user-123", Email: "a@b.co"}}

	tests := []struct {
		name       string
		authHeader string
		verifier   *fakeTokenVerifier
		wantStatus int
		nextCalled bool
		wantToken  string
	}{
		{"valid token sets principal", "Bearer valid-token", valid, http.StatusOK, true, "valid-token"},
		{"missing authorization header", "", valid, http.StatusUnauthorized, false, ""},
		{"basic scheme", "Basic abc", valid, http.StatusUnauthorized, false, ""},
		{"empty token after Bearer", "Bearer   ", valid, http.StatusUnauthorized, false, ""},
		{"verifier rejects", "Bearer expired", &fakeTokenVerifier{err: errors.Join(domain.ErrUnauthorized, errors.New("token is expired"))}, http.StatusUnauthorized, false, "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verifier.lastToken = ""
			nextCalled := false
			var captured *domain.Principal
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				captured, _ = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}
			handler := RequireAuth(tt.verifier, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/api/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.nextCalled, nextCalled)
			assert.Equal(t, tt.wantToken, tt.verifier.lastToken)
			if tt.nextCalled {
				require.NotNil(t, captured)
				assert.Equal(t, "user-123", captured.UserID)
				return
			}
			var env helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
			assert.False(t, env.Success)
			assert.Equal(t, helpers.MsgUnauthorized, env.Message)
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)

	ctx := SetPrincipal(req.Context(), &domain.Principal{UserID: "u1"})
	id, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id)
}

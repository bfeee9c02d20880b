package controllers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatplanner/internal/domain"
)

func TestAuthController_Register(t *testing.T) {
	user := &domain.User{ID: "u1", Email: "ana@example.com", DisplayName: "Ana", CreatedAt: time.Now()}

	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantStatus  int
		wantMessage string
		wantFields  []string
	}{
		{
			name:        "created",
			body:        `{"email":"Ana@Example.com","password":"longenough","display_name":"Ana"}`,
			wantStatus:  http.StatusCreated,
			wantMessage: "User registered successfully",
		},
		{
			name:        "validation lists every field",
			body:        `{"email":"nope","password":"short","display_name":""}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "validation failed",
			wantFields:  []string{"email", "password", "display_name"},
		},
		{
			name:        "unknown field",
			body:        `{"email":"a@b.co","password":"longenough","display_name":"A","role":"admin"}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "duplicate email",
			body:        `{"email":"a@b.co","password":"longenough","display_name":"A"}`,
			serviceErr:  domain.ErrDuplicateEmail,
			wantStatus:  http.StatusBadRequest,
			wantMessage: domain.ErrDuplicateEmail.Error(),
		},
		{
			name:        "store failure is hidden",
			body:        `{"email":"a@b.co","password":"longenough","display_name":"A"}`,
			serviceErr:  errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{result: &domain.AuthResult{User: user, Token: "tok"}, err: tt.serviceErr}
			c := NewAuthController(discardLogger(), svc)

			rr, env := serve(t, "POST /api/auth/register", c.Register, http.MethodPost, "/api/auth/register", tt.body, "")

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus < 400, env.Success)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, env.Message)
			}
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, fieldNames(env.Errors))
			}
			if tt.wantStatus == http.StatusCreated {
				var got AuthResponse
				decodeData(t, env, &got)
				assert.Equal(t, "tok", got.Token)
				assert.Equal(t, "Bearer", got.TokenType)
				assert.Equal(t, "u1", got.User.ID)
				assert.Equal(t, "Ana@Example.com", svc.lastInput.Email)
			}
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	svc := &fakeAuthService{err: domain.ErrInvalidCredentials}
	c := NewAuthController(discardLogger(), svc)

	rr, env := serve(t, "POST /api/auth/login", c.Login, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid credentials", env.Message)

	rr, env = serve(t, "POST /api/auth/login", c.Login, http.MethodPost, "/api/auth/login", "", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "request body is required", env.Message)

	svc.err = nil
	svc.result = &domain.AuthResult{User: &domain.User{ID: "u1"}, Token: "tok"}
	rr, env = serve(t, "POST /api/auth/login", c.Login, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"longenough"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "a@b.co", svc.lastEmail)
}

func TestAuthController_Me(t *testing.T) {
	svc := &fakeAuthService{user: &domain.User{ID: testUserID, Email: "a@b.co"}}
	c := NewAuthController(discardLogger(), svc)

	rr, _ := serve(t, "GET /api/auth/me", c.Me, http.MethodGet, "/api/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, env := serve(t, "GET /api/auth/me", c.Me, http.MethodGet, "/api/auth/me", "", testUserID)
	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.User
	decodeData(t, env, &got)
	assert.Equal(t, "a@b.co", got.Email)
	assert.Equal(t, testUserID, svc.lastID)
	assert.NotContains(t, string(env.Data), "password")
}

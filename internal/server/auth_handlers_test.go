package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"buddyup/internal/config"
	"buddyup/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func newAuthApp(mockRepo *MockUserRepository) (*fiber.App, *Server) {
	s := &Server{
		userRepo: mockRepo,
		config:   &config.Config{JWTSecret: testJWTSecret},
	}
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)
	return app, s
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("PUT", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{
			name: "missing fields",
			body: map[string]string{"username": "alice"},
		},
		{
			name: "invalid username",
			body: map[string]string{"username": "a", "email": "alice@example.com", "password": "Str0ng!Passw0rd"},
		},
		{
			name: "invalid email",
			body: map[string]string{"username": "alice", "email": "not-an-email", "password": "Str0ng!Passw0rd"},
		},
		{
			name: "weak password",
			body: map[string]string{"username": "alice", "email": "alice@example.com", "password": "short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			app, _ := newAuthApp(mockRepo)

			resp := postJSON(t, app, "/api/auth/signup", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			mockRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestSignup_ExistingEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: 1, Email: "alice@example.com"}, nil)
	app, _ := newAuthApp(mockRepo)

	resp := postJSON(t, app, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Str0ng!Passw0rd",
	})

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestSignup_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*models.User)
			user.ID = 42
		}).
		Return(nil)
	app, _ := newAuthApp(mockRepo)

	resp := postJSON(t, app, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Str0ng!Passw0rd",
	})

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), user["id"])
	assert.Equal(t, float64(models.DefaultMaxTravelKm), user["max_travel_km"])
	assert.Nil(t, user["password"], "password hash must never be serialized")
	mockRepo.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!Passw0rd"), bcrypt.MinCost)
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: 1, Email: "alice@example.com", Password: string(hash)}, nil)
	app, _ := newAuthApp(mockRepo)

	t.Run("unknown email", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", map[string]string{
			"email": "ghost@example.com", "password": "whatever",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", map[string]string{
			"email": "alice@example.com", "password": "wrong-password",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!Passw0rd"), bcrypt.MinCost)
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: string(hash)}, nil)
	app, _ := newAuthApp(mockRepo)

	resp := postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "Str0ng!Passw0rd",
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
}

func TestAuthRequired(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: testJWTSecret}}
	app := fiber.New()
	app.Get("/whoami", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": currentUserID(c)})
	})

	validToken, err := s.generateToken(7, "alice")
	require.NoError(t, err)

	other := &Server{config: &config.Config{JWTSecret: "another-secret-another-secret-ab"}}
	foreignToken, err := other.generateToken(7, "alice")
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no token", "", fiber.StatusUnauthorized},
		{"malformed header", "Token abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", fiber.StatusUnauthorized},
		{"wrong signing key", "Bearer " + foreignToken, fiber.StatusUnauthorized},
		{"valid token", "Bearer " + validToken, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusOK {
				body := decodeBody(t, resp)
				assert.Equal(t, float64(7), body["user_id"])
			}
		})
	}
}

func TestAuthRequired_QueryToken(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: testJWTSecret}}
	app := fiber.New()
	app.Get("/whoami", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	token, err := s.generateToken(3, "bob")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami?token="+token, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

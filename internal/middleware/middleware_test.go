package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"guide-exam/internal/config"
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/middleware"
	"guide-exam/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Env: "test", Level: "debug"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeValidator struct {
	validate func(ctx context.Context, token string) (*dto.AuthClaims, error)
}

func (f fakeValidator) ValidateJWT(ctx context.Context, token string) (*dto.AuthClaims, error) {
	return f.validate(ctx, token)
}

func acceptOnly(valid string) fakeValidator {
	return fakeValidator{validate: func(ctx context.Context, token string) (*dto.AuthClaims, error) {
		switch token {
		case valid:
			return &dto.AuthClaims{UserID: "user-1"}, nil
		case "revoked":
			return nil, service.ErrRevokedJWTToken
		case "store-down":
			return nil, errors.New("redis: connection refused")
		}
		return nil, service.ErrInvalidJWTToken
	}}
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

func decode(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.NewNotFoundError("missing"), 404, "NOT_FOUND"},
		{"session not found", domain.NewSessionNotFoundError("x"), 404, "SESSION_NOT_FOUND"},
		{"invalid input", domain.NewInvalidInputError("bad"), 400, "INVALID_INPUT"},
		{"invalid option", domain.NewTransitionError(fmt.Errorf("%w: %q", domain.ErrInvalidOption, "E")), 400, "INVALID_OPTION"},
		{"invalid transition", domain.NewTransitionError(domain.ErrNotSubmitted), 409, "INVALID_TRANSITION"},
		{"conflict", domain.NewConflictError("taken"), 409, "CONFLICT"},
		{"unauthorized", domain.NewUnauthorizedError("no"), 401, "UNAUTHORIZED"},
		{"llm", domain.NewLLMServiceError(errors.New("timeout")), 503, "LLM_SERVICE_ERROR"},
		{"internal", domain.NewInternalError("boom", errors.New("db")), 500, "INTERNAL_ERROR"},
		{"wrapped", fmt.Errorf("handler: %w", domain.NewNotFoundError("x")), 404, "NOT_FOUND"},
		{"fiber", fiber.ErrMethodNotAllowed, 405, "HTTP_ERROR"},
		{"unknown", errors.New("plain"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body middleware.ErrorResponse
			decode(t, resp.Body, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.status, body.Status)
		})
	}
}

func TestErrorHandler_TooManyRequestsSetsRetryAfter(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.NewTooManyRequestsError("Please wait 42 seconds before requesting a new code", 42)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, "42", resp.Header.Get("Retry-After"))

	var body middleware.ErrorResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, float64(42), body.Details["retry_after"])
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("key"), domain.NewInvalidFormatError("email", "x")}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, domain.CodeMissingField, body.Errors[0].Code)
}

func TestProtected(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"valid token", "Bearer good", 200, ""},
		{"missing header", "", 401, "MISSING_AUTH_HEADER"},
		{"wrong scheme", "Basic abc", 401, "INVALID_AUTH_SCHEME"},
		{"invalid token", "Bearer bad", 401, "INVALID_TOKEN"},
		{"revoked token", "Bearer revoked", 401, "TOKEN_REVOKED"},
		{"revocation store down", "Bearer store-down", 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", middleware.Protected(acceptOnly("good")), func(c *fiber.Ctx) error {
				return c.SendString(middleware.UserID(c))
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == 200 {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "user-1", string(body))
				return
			}
			var body middleware.ErrorResponse
			decode(t, resp.Body, &body)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		userID string
	}{
		{"no header", "", ""},
		{"valid token", "Bearer good", "user-1"},
		{"invalid token", "Bearer bad", ""},
		{"wrong scheme", "Token good", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", middleware.OptionalAuth(acceptOnly("good")), func(c *fiber.Ctx) error {
				if middleware.Claims(c) == nil && middleware.UserID(c) != "" {
					return errors.New("claims missing")
				}
				return c.SendString(middleware.UserID(c))
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.userID, string(body))
		})
	}
}

func TestResolveOwner(t *testing.T) {
	app := newApp()
	app.Get("/", middleware.OptionalAuth(acceptOnly("good")), func(c *fiber.Ctx) error {
		owner, err := middleware.ResolveOwner(c)
		if err != nil {
			return err
		}
		return c.SendString(owner.Key())
	})

	tests := []struct {
		name   string
		token  string
		device string
		status int
		key    string
	}{
		{"user wins over device", "good", "d1", 200, "user:user-1"},
		{"device only", "", "d1", 200, "device:d1"},
		{"neither", "", "", 400, ""},
		{"device too long", "", strings.Repeat("d", 65), 400, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.device != "" {
				req.Header.Set("X-Device-ID", tt.device)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == 200 {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.key, string(body))
			}
		})
	}
}

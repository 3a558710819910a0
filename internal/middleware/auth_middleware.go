package middleware

import (
	"context"
	"errors"
	"strings"

	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	DeviceIDHeader      = "X-Device-ID"
	UserIDKey           = "userID"     // Key for storing UserID in fiber.Ctx locals
	ClaimsKey           = "authClaims" // Key for storing *dto.AuthClaims in fiber.Ctx locals

	maxDeviceIDLength = 64
)

// TokenValidator is the part of service.AuthService the middleware needs.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

// Protected is a middleware function that protects routes by requiring a valid JWT.
func Protected(auth TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_AUTH_HEADER",
				Message: "Authorization header is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_AUTH_SCHEME",
				Message: "Authorization scheme is not Bearer",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "EMPTY_TOKEN",
				Message: "Token is empty",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := auth.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			code := "INVALID_TOKEN"
			message := "Token is invalid or expired"
			switch {
			case errors.Is(err, service.ErrRevokedJWTToken):
				code = "TOKEN_REVOKED"
				message = "Token has been revoked"
			case !errors.Is(err, service.ErrInvalidJWTToken):
				// revocation store unavailable
				logger.Get().Error("Token validation failed", zap.Error(err))
				return domain.NewInternalError("Failed to validate token", err)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    code,
				Message: message,
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(ClaimsKey, claims)

		return c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and otherwise lets
// the request through as anonymous.
func OptionalAuth(auth TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Next()
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			logger.Get().Debug("OptionalAuth: Authorization scheme is not Bearer, proceeding as anonymous.")
			return c.Next()
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return c.Next()
		}

		claims, err := auth.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			logger.Get().Debug("OptionalAuth: JWT validation failed, proceeding as anonymous.", zap.Error(err))
			return c.Next()
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(ClaimsKey, claims)

		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// Claims returns the validated token claims, or nil for anonymous requests.
func Claims(c *fiber.Ctx) *dto.AuthClaims {
	claims, _ := c.Locals(ClaimsKey).(*dto.AuthClaims)
	return claims
}

// ResolveOwner identifies who a session or preference belongs to: the
// authenticated user if any, otherwise the device named by X-Device-ID.
func ResolveOwner(c *fiber.Ctx) (domain.Owner, error) {
	if userID := UserID(c); userID != "" {
		return domain.Owner{UserID: userID}, nil
	}
	deviceID := strings.TrimSpace(c.Get(DeviceIDHeader))
	if deviceID == "" {
		return domain.Owner{}, domain.ValidationErrors{domain.NewMissingFieldError(DeviceIDHeader)}
	}
	if len(deviceID) > maxDeviceIDLength {
		return domain.Owner{}, domain.ValidationErrors{domain.NewInvalidFormatError(DeviceIDHeader, deviceID)}
	}
	return domain.Owner{DeviceID: deviceID}, nil
}

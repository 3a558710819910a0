package handler

import (
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/middleware"
	"guide-exam/internal/service"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	validator   *validation.Validator
}

func NewAuthHandler(authService service.AuthService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
	}
}

// SendVerificationCode godoc
// @Summary Send a registration code
// @Description Emails a 6-digit code. Another code can be requested after the resend cooldown.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SendCodeRequest true "Email"
// @Success 200 {object} dto.SendCodeResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 429 {object} middleware.ErrorResponse "Cooldown active, see details.retry_after"
// @Router /auth/verification-code [post]
func (h *AuthHandler) SendVerificationCode(c *fiber.Ctx) error {
	var req dto.SendCodeRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.authService.SendVerificationCode(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Register godoc
// @Summary Register an account
// @Description Creates an account with a verified email and returns an access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration"
// @Success 201 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout godoc
// @Summary Log out
// @Description Revokes the presented access token.
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return domain.NewUnauthorizedError("User is not authenticated")
	}
	if err := h.authService.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out"})
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"guide-exam/internal/cache"
	"guide-exam/internal/config"
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	verificationCodeDigits = 6
	defaultMaxCodeAttempts = 5
	tokenTypeBearer        = "Bearer"
)

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
	ErrRevokedJWTToken = errors.New("jwt token has been revoked")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	SendVerificationCode(ctx context.Context, email string) (*dto.SendCodeResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	CreateJWT(ctx context.Context, user *domain.User) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	Logout(ctx context.Context, claims *dto.AuthClaims) error
}

type authServiceImpl struct {
	userRepo domain.UserRepository
	cache    domain.Cache
	sender   CodeSender
	cfg      config.AuthConfig
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, cache domain.Cache, sender CodeSender, cfg config.AuthConfig) (AuthService, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, errors.New("auth secret key is not configured")
	}
	if sender == nil {
		sender = NewLogCodeSender()
	}
	if cfg.MaxCodeAttempts <= 0 {
		cfg.MaxCodeAttempts = defaultMaxCodeAttempts
	}
	return &authServiceImpl{
		userRepo: userRepo,
		cache:    cache,
		sender:   sender,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

func codeKey(email string) string {
	return cache.GenerateCacheKey(cache.ServiceAuth, cache.TypeCode, email)
}

func cooldownKey(email string) string {
	return cache.GenerateCacheKey(cache.ServiceAuth, cache.TypeCooldown, email)
}

func attemptsKey(email string) string {
	return cache.GenerateCacheKey(cache.ServiceAuth, cache.TypeAttempts, email)
}

func revokedKey(jti string) string {
	return cache.GenerateCacheKey(cache.ServiceAuth, cache.TypeRevokedToken, jti)
}

// SendVerificationCode issues a fresh code unless one was sent within the resend cooldown.
func (s *authServiceImpl) SendVerificationCode(ctx context.Context, email string) (*dto.SendCodeResponse, error) {
	email = domain.NormalizeEmail(email)
	if !domain.IsValidEmail(email) {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("email", email)}
	}

	acquired, err := s.cache.SetNX(ctx, cooldownKey(email), "1", s.cfg.ResendCooldown)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check resend cooldown", err)
	}
	if !acquired {
		remaining, err := s.cache.TTL(ctx, cooldownKey(email))
		if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewInternalError("Failed to check resend cooldown", err)
		}
		seconds := retryAfterSeconds(remaining)
		return nil, domain.NewTooManyRequestsError(fmt.Sprintf("Please wait %d seconds before requesting a new code", seconds), seconds)
	}

	code, err := generateVerificationCode()
	if err != nil {
		_ = s.cache.Delete(ctx, cooldownKey(email))
		return nil, domain.NewInternalError("Failed to generate verification code", err)
	}
	if err := s.cache.Set(ctx, codeKey(email), code, s.cfg.VerificationCodeTTL); err != nil {
		_ = s.cache.Delete(ctx, cooldownKey(email))
		return nil, domain.NewInternalError("Failed to store verification code", err)
	}
	if err := s.cache.Delete(ctx, attemptsKey(email)); err != nil {
		logger.Get().Warn("Failed to reset verification attempts", zap.String("email", email), zap.Error(err))
	}
	if err := s.sender.Send(ctx, email, code); err != nil {
		_ = s.cache.Delete(ctx, codeKey(email))
		_ = s.cache.Delete(ctx, cooldownKey(email))
		return nil, domain.NewInternalError("Failed to send verification code", err)
	}

	return &dto.SendCodeResponse{
		Message:    "Verification code sent",
		RetryAfter: retryAfterSeconds(s.cfg.ResendCooldown),
	}, nil
}

// retryAfterSeconds rounds up so clients never retry too early. Never less than 1.
func retryAfterSeconds(d time.Duration) int {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

func generateVerificationCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < verificationCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", verificationCodeDigits, n.Int64()), nil
}

// Register creates an account after checking the emailed verification code.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	appLogger := logger.Get()
	email := domain.NormalizeEmail(req.Email)

	var verrs domain.ValidationErrors
	if !domain.IsValidEmail(email) {
		verrs = append(verrs, domain.NewInvalidFormatError("email", req.Email))
	}
	if !domain.IsValidPassword(req.Password) {
		verrs = append(verrs, domain.NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters and contain a digit", domain.MinPasswordLength)))
	}
	if req.ConfirmPassword != req.Password {
		verrs = append(verrs, domain.NewValidationError("confirm_password", "passwords do not match"))
	}
	if req.Code == "" {
		verrs = append(verrs, domain.NewMissingFieldError("code"))
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	stored, err := s.cache.Get(ctx, codeKey(email))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewInvalidInputError("Verification code is invalid or expired")
		}
		return nil, domain.NewInternalError("Failed to read verification code", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return nil, s.rejectCode(ctx, email)
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up user", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("Failed to hash password", err)
	}
	user := domain.NewUser(util.NewULID(), email, string(hash))
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to create user", err)
	}
	if err := s.cache.Delete(ctx, codeKey(email)); err != nil {
		appLogger.Warn("Failed to delete used verification code", zap.String("email", email), zap.Error(err))
	}
	if err := s.cache.Delete(ctx, attemptsKey(email)); err != nil {
		appLogger.Warn("Failed to reset verification attempts", zap.String("email", email), zap.Error(err))
	}

	appLogger.Info("New user registered", zap.String("userID", user.ID), zap.String("email", user.Email))
	return s.tokenResponse(ctx, user)
}

// rejectCode counts a wrong guess. Once the limit is reached the code is dropped
// and the caller has to request a new one.
func (s *authServiceImpl) rejectCode(ctx context.Context, email string) error {
	attempts, err := s.cache.Incr(ctx, attemptsKey(email), s.cfg.VerificationCodeTTL)
	if err != nil {
		return domain.NewInternalError("Failed to count verification attempts", err)
	}
	if attempts < int64(s.cfg.MaxCodeAttempts) {
		return domain.NewInvalidInputError("Verification code is invalid or expired")
	}

	logger.Get().Warn("Verification code locked after failed attempts",
		zap.String("email", email), zap.Int64("attempts", attempts))
	if err := s.cache.Delete(ctx, codeKey(email)); err != nil {
		return domain.NewInternalError("Failed to invalidate verification code", err)
	}
	_ = s.cache.Delete(ctx, attemptsKey(email))

	wait, err := s.cache.TTL(ctx, cooldownKey(email))
	if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		wait = s.cfg.ResendCooldown
	}
	seconds := retryAfterSeconds(wait)
	return domain.NewTooManyRequestsError(
		fmt.Sprintf("Too many wrong codes, request a new code in %d seconds", seconds), seconds)
}

// Login checks email and password. Both failure cases share one message.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Get().Info("Login rejected", zap.String("userID", user.ID))
		return nil, domain.NewUnauthorizedError("Invalid email or password")
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return s.tokenResponse(ctx, user)
}

func (s *authServiceImpl) tokenResponse(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	token, err := s.CreateJWT(ctx, user)
	if err != nil {
		return nil, domain.NewInternalError("Failed to create access token", err)
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.cfg.TokenTTL / time.Second),
		User:        *toUserProfileResponse(user),
	}, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *domain.User) (string, error) {
	now := s.now()
	claims := dto.AuthClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        util.NewULID(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SecretKey))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ValidateJWT rejects malformed, expired and revoked tokens.
func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	appLogger := logger.Get()
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			appLogger.Warn("JWT token expired",
				zap.Error(err),
				zap.String("token_snippet", tokenString[:min(len(tokenString), 20)]+"..."))
		} else {
			appLogger.Warn("JWT validation failed",
				zap.Error(err),
				zap.String("token_snippet", tokenString[:min(len(tokenString), 20)]+"..."))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidJWTToken
	}

	if claims.ID != "" {
		_, err := s.cache.Get(ctx, revokedKey(claims.ID))
		switch {
		case err == nil:
			return nil, ErrRevokedJWTToken
		case !errors.Is(err, domain.ErrCacheMiss):
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *authServiceImpl) Logout(ctx context.Context, claims *dto.AuthClaims) error {
	if claims == nil || claims.ID == "" {
		return domain.NewUnauthorizedError("Token cannot be revoked")
	}
	remaining := time.Duration(0)
	if claims.ExpiresAt != nil {
		remaining = claims.ExpiresAt.Time.Sub(s.now())
	}
	if remaining <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedKey(claims.ID), "1", remaining); err != nil {
		return domain.NewInternalError("Failed to revoke token", err)
	}
	logger.Get().Info("User logged out", zap.String("userID", claims.UserID))
	return nil
}

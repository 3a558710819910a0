package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SendCodeRequest asks for an email verification code.
// @Description Request body for sending a verification code
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// SendCodeResponse reports how long to wait before the next code may be requested.
type SendCodeResponse struct {
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// RegisterRequest creates an account.
// @Description Request body for registration
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72,containsany=0123456789"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Code            string `json:"code" validate:"required,len=6,numeric"`
}

// LoginRequest authenticates with email and password.
// @Description Request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserProfileResponse defines the structure for a user's profile information.
type UserProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse represents the response containing the access token.
// @Description Response body for authentication tokens
type TokenResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	ExpiresIn   int64               `json:"expires_in"`
	User        UserProfileResponse `json:"user"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}

// Pagination defines parameters for paginated requests.
type Pagination struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// PaginationInfo defines pagination details for responses.
type PaginationInfo struct {
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
}

// NewPaginationInfo derives page numbers from limit/offset.
func NewPaginationInfo(total int64, limit, offset int) PaginationInfo {
	info := PaginationInfo{TotalItems: total, Limit: limit, Offset: offset}
	if limit > 0 {
		info.CurrentPage = offset/limit + 1
		info.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return info
}

// WrongAnswerItem is one entry of the wrong-answer book.
type WrongAnswerItem struct {
	Question      QuestionDetailResponse `json:"question"`
	LastSelection []string               `json:"last_selection"`
	WrongCount    int                    `json:"wrong_count"`
	LastWrongAt   time.Time              `json:"last_wrong_at"`
}

// WrongAnswersResponse is the response for listing the wrong-answer book.
type WrongAnswersResponse struct {
	Items          []WrongAnswerItem `json:"items"`
	PaginationInfo PaginationInfo    `json:"pagination_info"`
}

// StudyDayResponse summarises one day of practice.
type StudyDayResponse struct {
	Date     string `json:"date"`
	Minutes  int    `json:"minutes"`
	Answered int    `json:"answered"`
	Correct  int    `json:"correct"`
	Accuracy int    `json:"accuracy"`
}

// StudyWeekResponse covers the three days before and after a date.
type StudyWeekResponse struct {
	Days          []StudyDayResponse `json:"days"`
	TotalMinutes  int                `json:"total_minutes"`
	TotalAnswered int                `json:"total_answered"`
}

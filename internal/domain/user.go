package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User represents a registered candidate
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User instance. The username defaults to the email.
func NewUser(id, email, passwordHash string) *User {
	now := time.Now()
	email = NormalizeEmail(email)
	return &User{
		ID:           id,
		Email:        email,
		Username:     email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.ID == "" {
		errs = append(errs, NewMissingFieldError("id"))
	}
	if !IsValidEmail(u.Email) {
		errs = append(errs, NewInvalidFormatError("email", u.Email))
	}
	if u.PasswordHash == "" {
		errs = append(errs, NewMissingFieldError("password_hash"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword requires at least MinPasswordLength characters including a digit.
func IsValidPassword(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}
	for _, r := range password {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// WrongAnswer is an entry of a user's wrong-answer book.
type WrongAnswer struct {
	UserID        string    `json:"user_id"`
	QuestionID    int64     `json:"question_id"`
	SubjectID     string    `json:"subject_id"`
	LastSelection []string  `json:"last_selection"`
	WrongCount    int       `json:"wrong_count"`
	LastWrongAt   time.Time `json:"last_wrong_at"`
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

package user

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.Validation("email is required")
	ErrFullNameRequired   = apperror.Validation("full name is required")
	ErrPasswordTooShort   = apperror.Validation("password must be at least 6 characters")
)

// User represents a registered guest or administrator.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         auth.Role
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

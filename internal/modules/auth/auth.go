package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, username, password string) (Token, error)
	// Verify parses a bearer token and returns its claims.
	Verify(token string) (*Claims, error)
}

// Authenticator checks staff credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (domain.Staff, error)
}

// Claims identifies the staff member behind a request.
type Claims struct {
	Role     domain.StaffRole `json:"role"`
	Username string           `json:"username"`
	jwt.RegisteredClaims
}

// StaffID returns the subject as a UUID.
func (c *Claims) StaffID() uuid.UUID {
	id, _ := uuid.Parse(c.Subject)
	return id
}

// Token is the login response.
type Token struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Staff     domain.Staff `json:"staff"`
}

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/georgemunganga/tablepos/internal/domain"
)

const issuer = "tablepos"

var ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)

type service struct {
	staff  Authenticator
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(staff Authenticator, secret string, ttl time.Duration) Service {
	return &service{staff: staff, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *service) Login(ctx context.Context, username, password string) (Token, error) {
	st, err := s.staff.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Role:     st.Role,
		Username: st.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   st.ID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Token: tokenString, ExpiresAt: expiresAt.UTC(), Staff: st}, nil
}

func (s *service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

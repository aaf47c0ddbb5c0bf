package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyClient is returned when a token is requested without a client name.
var ErrEmptyClient = errors.New("client name is required")

// Generator defines the interface for API access token generation.
type Generator interface {
	// GenerateToken creates a signed token for the named API client.
	GenerateToken(client string) (string, error)
}

var _ Generator = (*generator)(nil)

type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed HS256 token whose subject is the client name.
func (g *generator) GenerateToken(client string) (string, error) {
	if client == "" {
		return "", ErrEmptyClient
	}
	now := g.now()
	claims := jwt.RegisteredClaims{
		Subject:   client,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

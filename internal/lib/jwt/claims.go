// Package jwt implements issuing and verification of the signed access
// and refresh tokens. Access and refresh tokens are signed with distinct
// secrets and are never interchangeable.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims carries the token subject (user id) and email claim on
// top of the registered JWT claims.
type CustomClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Maker issues and parses access and refresh tokens.
type Maker interface {
	// GenerateAccessToken issues a short-lived access token for the user.
	GenerateAccessToken(userID int64, email string) (string, error)
	// GenerateRefreshToken issues a longer-lived refresh token.
	GenerateRefreshToken(userID int64, email string) (string, error)
	// ParseAccessToken validates an access token against the access secret.
	ParseAccessToken(tokenStr string) (*CustomClaims, error)
	// Refresh validates a refresh token and, on success, issues a new
	// access token with the shorter exchange TTL.
	Refresh(refreshToken string) (string, error)
}

// MakerImpl implements Maker with two HMAC secrets and three TTLs.
type MakerImpl struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration // initial login access token lifetime
	refreshTTL    time.Duration
	exchangeTTL   time.Duration // access token lifetime on the refresh path
}

// New builds a MakerImpl.
func New(accessSecret, refreshSecret string, accessTTL, refreshTTL, exchangeTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		exchangeTTL:   exchangeTTL,
	}
}

package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func (m *MakerImpl) generate(userID int64, email, secret string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(tokenStr, secret string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GenerateAccessToken issues an access token signed with the access secret.
func (m *MakerImpl) GenerateAccessToken(userID int64, email string) (string, error) {
	const op = "jwt.GenerateAccessToken"
	token, err := m.generate(userID, email, m.accessSecret, m.accessTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// GenerateRefreshToken issues a refresh token signed with the refresh secret.
func (m *MakerImpl) GenerateRefreshToken(userID int64, email string) (string, error) {
	const op = "jwt.GenerateRefreshToken"
	token, err := m.generate(userID, email, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ParseAccessToken validates tokenStr against the access secret and
// returns its claims.
func (m *MakerImpl) ParseAccessToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseAccessToken"
	claims, err := parse(tokenStr, m.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// Refresh validates refreshToken against the refresh secret and issues a
// new access token with the exchange TTL. The exchange TTL is shorter
// than the login TTL: refreshed sessions rotate faster.
func (m *MakerImpl) Refresh(refreshToken string) (string, error) {
	const op = "jwt.Refresh"
	claims, err := parse(refreshToken, m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%s: invalid subject: %w", op, err)
	}
	token, err := m.generate(userID, claims.Email, m.accessSecret, m.exchangeTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// UserID extracts the numeric subject of the claims.
func (c *CustomClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

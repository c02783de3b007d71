package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

// TokenManager issues and verifies HMAC-SHA256 signed access tokens.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
	timeFunc   func() time.Time
}

type tokenClaims struct {
	models.UserClaims
	jwt.RegisteredClaims
}

// NewTokenManager creates a TokenManager. A non-positive ttl falls back to 24h.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{signingKey: []byte(secret), ttl: ttl, timeFunc: time.Now}
}

// ExpiresIn renders the validity window the way clients expect it, e.g. "24h".
func (m *TokenManager) ExpiresIn() string {
	if m.ttl%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(m.ttl/time.Hour))
	}
	return m.ttl.String()
}

// Issue signs a token carrying claims and valid for the configured window.
func (m *TokenManager) Issue(claims models.UserClaims) (string, error) {
	now := m.timeFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserClaims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(claims.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Every failure wraps utils.ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (*models.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug().Msg("token expired")
		} else {
			log.Debug().Err(err).Msg("token rejected")
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, utils.ErrInvalidToken
	}
	return &claims.UserClaims, nil
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

// Context keys set by JWTMiddleware.
const (
	ContextUserID = "user_id"
	ContextClaims = "user_claims"
)

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	Verify(token string) (*models.UserClaims, error)
}

// JWTMiddleware guards routes behind a Bearer token.
type JWTMiddleware struct {
	tokens TokenVerifier
}

// NewJWTMiddleware creates a JWTMiddleware.
func NewJWTMiddleware(tokens TokenVerifier) *JWTMiddleware {
	return &JWTMiddleware{tokens: tokens}
}

// Handle rejects requests without a valid token: 401 when the header is missing,
// 400 when it is not a Bearer header and 403 when the token does not verify.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorFrom(c, utils.ErrUnauthenticated, "Access token required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			utils.ErrorFrom(c, utils.ErrMalformedAuthHeader, "Authorization header must use the Bearer scheme")
			c.Abort()
			return
		}

		claims, err := m.tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			utils.ErrorFrom(c, utils.ErrInvalidToken, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.ID)
		c.Set(ContextClaims, *claims)
		c.Next()
	}
}

// ClaimsFrom returns the identity stored by JWTMiddleware.
func ClaimsFrom(c *gin.Context) (models.UserClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return models.UserClaims{}, false
	}
	claims, ok := v.(models.UserClaims)
	return claims, ok
}

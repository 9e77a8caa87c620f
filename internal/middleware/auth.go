package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/brickmart/booking-api/pkg/errors"
	"github.com/brickmart/booking-api/pkg/httputil"
)

const (
	// ContextAdminSubject is the context key for the authenticated admin identity
	ContextAdminSubject = "AdminSubject"

	roleAdmin = "admin"
)

type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

// RequireAdmin verifies the Bearer token and checks for the admin role claim
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("missing authorization header")))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("invalid authorization format")))
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)
		if role != roleAdmin {
			httputil.RespondWithError(c, apperrors.Forbidden("admin access required"))
			c.Abort()
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set(ContextAdminSubject, sub)
		}
		c.Next()
	}
}

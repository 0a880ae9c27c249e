package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/interfaces/http/response"
	"parcelhub.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// AccountIDKey is the context key for the signed-in account id
	AccountIDKey = "accountId"
	// ClaimsKey is the context key for the verified session claims
	ClaimsKey = "sessionClaims"
)

// Authenticator verifies a session token
type Authenticator interface {
	Authenticate(token string) (*entities.SessionClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer session
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			logger.Debug(c.Request.Context(), "Missing bearer token", zap.String("path", c.Request.URL.Path))
			response.Abort(c, domainerrors.Unauthorized("Authorization header is required. Use: Bearer <token>"))
			return
		}

		claims, err := auth.Authenticate(token)
		if err != nil {
			logger.Debug(c.Request.Context(), "Session rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.Abort(c, err)
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(ClaimsKey, claims)
		ctx := context.WithValue(c.Request.Context(), logger.AccountIDKey, claims.AccountID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// BearerToken extracts the token from an Authorization: Bearer header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// GetAccountID gets the account ID from context
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(AccountIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// GetClaims gets the verified session claims from context
func GetClaims(c *gin.Context) (*entities.SessionClaims, bool) {
	val, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*entities.SessionClaims)
	return claims, ok && claims != nil
}

// RequireRole creates a middleware that requires one of roles
func RequireRole(roles ...entities.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := GetClaims(c)
		if !exists {
			response.Abort(c, domainerrors.Unauthorized("Authentication required"))
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.Abort(c, domainerrors.Forbidden("Insufficient permissions"))
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.RoleAdmin)
}

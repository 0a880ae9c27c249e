package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/pkg/logger"
)

type authenticatorFunc func(token string) (*entities.SessionClaims, error)

func (f authenticatorFunc) Authenticate(token string) (*entities.SessionClaims, error) {
	return f(token)
}

func stubAuthenticator() Authenticator {
	return authenticatorFunc(func(token string) (*entities.SessionClaims, error) {
		switch token {
		case "user-token":
			return &entities.SessionClaims{AccountID: testAccountID, Role: entities.RoleUser}, nil
		case "admin-token":
			return &entities.SessionClaims{AccountID: testAccountID, Role: entities.RoleAdmin}, nil
		case "expired-token":
			return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeTokenExpired, "Session expired, please sign in again", domainerrors.ErrUnauthorized)
		}
		return nil, domainerrors.Unauthorized("Invalid session token")
	})
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthorizationHeader, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_BearerFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(stubAuthenticator()))
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetAccountID(c)
		require.True(t, ok)
		require.Equal(t, testAccountID, id)
		require.Equal(t, testAccountID.String(), c.Request.Context().Value(logger.AccountIDKey))
		c.Status(http.StatusNoContent)
	})

	t.Run("missing token", func(t *testing.T) {
		w := get(r, "/me", "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, "Basic dXNlcjpwdw==")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := get(r, "/me", "garbage")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), domainerrors.CodeUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		w := get(r, "/me", "expired-token")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), domainerrors.CodeTokenExpired)
	})

	t.Run("valid token", func(t *testing.T) {
		w := get(r, "/me", "user-token")
		require.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	admin := r.Group("/admin", AuthMiddleware(stubAuthenticator()), RequireAdmin())
	admin.GET("/x", func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		require.Equal(t, entities.RoleAdmin, claims.Role)
		c.Status(http.StatusNoContent)
	})

	require.Equal(t, http.StatusUnauthorized, get(r, "/open", "").Code)
	require.Equal(t, http.StatusForbidden, get(r, "/admin/x", "user-token").Code)
	require.Equal(t, http.StatusNoContent, get(r, "/admin/x", "admin-token").Code)
}

func TestGetAccountID_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetAccountID(c)
	require.False(t, ok)
	_, ok = GetClaims(c)
	require.False(t, ok)
}

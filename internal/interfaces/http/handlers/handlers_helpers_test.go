package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"parcelhub.backend/internal/domain/entities"
	"parcelhub.backend/internal/interfaces/http/middleware"
)

var (
	testAccountID = uuid.MustParse("0190a1b2-0000-7000-8000-0000000000aa")
	testUser      = &entities.SessionClaims{AccountID: testAccountID, Email: "a@x.com", Username: "alice", Role: entities.RoleUser}
	testAdmin     = &entities.SessionClaims{AccountID: uuid.MustParse("0190a1b2-0000-7000-8000-0000000000ad"), Role: entities.RoleAdmin}
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())
	return gin.New()
}

// signedIn stands in for AuthMiddleware
func signedIn(claims *entities.SessionClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountIDKey, claims.AccountID)
		c.Set(middleware.ClaimsKey, claims)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyward-io/keyward/internal/infrastructure/auth"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

const testSecret = "adminauth-test-secret"

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mw := NewAdminAuthMiddleware(auth.NewJWTService(testSecret, 60), logger.NewLogger())
	r := gin.New()
	r.GET("/guarded", mw.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func signToken(t *testing.T, expiresAt time.Time, tokenType auth.TokenType) string {
	t.Helper()
	claims := &auth.Claims{
		Username:  "admin",
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func errorType(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Type
}

func TestAdminAuthMiddleware(t *testing.T) {
	r := newAuthRouter(t)

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token passes", func(t *testing.T) {
		token := signToken(t, time.Now().Add(time.Hour), auth.TokenTypeAccess)
		w := do("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		w := do("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token reports token_expired", func(t *testing.T) {
		token := signToken(t, time.Now().Add(-time.Hour), auth.TokenTypeAccess)
		w := do("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token_expired", errorType(t, w.Body.Bytes()))
	})

	t.Run("garbage token reports token_invalid", func(t *testing.T) {
		w := do("Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token_invalid", errorType(t, w.Body.Bytes()))
	})

	t.Run("wrong token type is rejected", func(t *testing.T) {
		token := signToken(t, time.Now().Add(time.Hour), auth.TokenType("refresh"))
		w := do("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token_invalid", errorType(t, w.Body.Bytes()))
	})
}

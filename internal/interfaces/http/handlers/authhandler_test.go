package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyward-io/keyward/internal/infrastructure/auth"
	"github.com/keyward-io/keyward/internal/interfaces/http/handlers"
	sharedConfig "github.com/keyward-io/keyward/internal/shared/config"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

func newLoginRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := auth.NewBcryptPasswordHasher(0).Hash("correct horse")
	require.NoError(t, err)

	cfg := sharedConfig.AdminAuthConfig{
		Username:     "admin",
		PasswordHash: hash,
	}
	h := handlers.NewAuthHandler(cfg, auth.NewJWTService("login-test-secret", 60), logger.NewLogger())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	return r
}

func postLogin(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	r := newLoginRouter(t)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		w := postLogin(t, r, "admin", "correct horse")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				AccessToken string `json:"accessToken"`
				ExpiresIn   int64  `json:"expiresIn"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Data.AccessToken)
		assert.Equal(t, int64(3600), resp.Data.ExpiresIn)
	})

	t.Run("wrong password reports invalid_credentials", func(t *testing.T) {
		w := postLogin(t, r, "admin", "wrong")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_credentials", resp.Error.Type)
		// The response must not reveal which field was wrong.
		assert.Equal(t, "invalid credentials", resp.Error.Message)
	})

	t.Run("unknown username reports the same error", func(t *testing.T) {
		w := postLogin(t, r, "root", "correct horse")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		w := postLogin(t, r, "admin", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

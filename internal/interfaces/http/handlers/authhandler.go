package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keyward-io/keyward/internal/infrastructure/auth"
	sharedConfig "github.com/keyward-io/keyward/internal/shared/config"
	apperrors "github.com/keyward-io/keyward/internal/shared/errors"
	"github.com/keyward-io/keyward/internal/shared/logger"
	"github.com/keyward-io/keyward/internal/shared/utils"
)

// AuthHandler issues admin API access tokens. There is a single admin
// account configured at deploy time; its password is stored as a bcrypt
// hash.
type AuthHandler struct {
	cfg        sharedConfig.AdminAuthConfig
	jwtService *auth.JWTService
	hasher     *auth.BcryptPasswordHasher
	logger     logger.Interface
}

func NewAuthHandler(cfg sharedConfig.AdminAuthConfig, jwtService *auth.JWTService, logger logger.Interface) *AuthHandler {
	return &AuthHandler{
		cfg:        cfg,
		jwtService: jwtService,
		hasher:     auth.NewBcryptPasswordHasher(0),
		logger:     logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username != h.cfg.Username || h.hasher.Verify(req.Password, h.cfg.PasswordHash) != nil {
		h.logger.Warnw("admin login failed", "username", req.Username, "client_ip", c.ClientIP())
		utils.ErrorResponseWithError(c, apperrors.NewInvalidCredentialsError())
		return
	}

	token, expiresIn, err := h.jwtService.Generate(req.Username)
	if err != nil {
		h.logger.Errorw("failed to issue admin token", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", LoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
	})
}

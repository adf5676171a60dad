package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/keyward-io/keyward/internal/infrastructure/auth"
	"github.com/keyward-io/keyward/internal/shared/constants"
	apperrors "github.com/keyward-io/keyward/internal/shared/errors"
	"github.com/keyward-io/keyward/internal/shared/logger"
	"github.com/keyward-io/keyward/internal/shared/utils"
)

// AdminAuthMiddleware guards the admin API with bearer tokens issued by the
// login endpoint.
type AdminAuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAdminAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

func (m *AdminAuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				utils.ErrorResponseWithError(c, apperrors.NewTokenExpiredError())
				c.Abort()
				return
			}
			m.logger.Warnw("failed to verify admin token", "error", err)
			utils.ErrorResponseWithError(c, apperrors.NewTokenInvalidError())
			c.Abort()
			return
		}

		if claims.TokenType != auth.TokenTypeAccess {
			utils.ErrorResponseWithError(c, apperrors.NewTokenInvalidError("wrong token type"))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAdminUser, claims.Username)

		c.Next()
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/keyward-io/keyward/internal/interfaces/http/handlers"
)

// ClientRouteConfig holds dependencies for the client verification routes.
type ClientRouteConfig struct {
	VerificationHandler *handlers.VerificationHandler
}

// SetupClientRoutes configures the SDK-facing verification endpoints. These
// carry no authentication middleware; the license key inside the request is
// the credential, and the gate pipeline decides each call.
func SetupClientRoutes(engine *gin.Engine, cfg *ClientRouteConfig) {
	verification := engine.Group("/v1/client/teams/:teamId/verification")
	{
		verification.POST("/verify", cfg.VerificationHandler.Verify)
		verification.POST("/heartbeat", cfg.VerificationHandler.Heartbeat)
		verification.GET("/classloader", cfg.VerificationHandler.Classloader)
	}
}

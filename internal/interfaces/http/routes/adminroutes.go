package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/keyward-io/keyward/internal/interfaces/http/handlers"
	"github.com/keyward-io/keyward/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for the admin API routes.
type AdminRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	LicenseHandler *handlers.LicenseHandler
	ProductHandler *handlers.ProductHandler
	AuthMiddleware *middleware.AdminAuthMiddleware
	CORS           gin.HandlerFunc
}

// SetupAdminRoutes configures the admin management API.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/v1/admin")
	if cfg.CORS != nil {
		admin.Use(cfg.CORS)
	}

	admin.POST("/auth/login", cfg.AuthHandler.Login)

	protected := admin.Group("")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		teams := protected.Group("/teams/:teamId")

		licenses := teams.Group("/licenses")
		{
			licenses.POST("", cfg.LicenseHandler.Issue)
			licenses.GET("", cfg.LicenseHandler.List)
			licenses.GET("/:licenseId", cfg.LicenseHandler.Get)
			licenses.DELETE("/:licenseId", cfg.LicenseHandler.Delete)
			licenses.POST("/:licenseId/suspend", cfg.LicenseHandler.Suspend)
			licenses.POST("/:licenseId/unsuspend", cfg.LicenseHandler.Unsuspend)
			licenses.PUT("/:licenseId/expiration", cfg.LicenseHandler.UpdateExpiration)
			licenses.GET("/:licenseId/devices", cfg.LicenseHandler.ListDevices)
			licenses.DELETE("/:licenseId/devices/:identifier", cfg.LicenseHandler.ForgetDevice)
		}

		products := teams.Group("/products")
		{
			products.POST("", cfg.ProductHandler.Create)
			products.GET("", cfg.ProductHandler.List)
			products.GET("/:productId", cfg.ProductHandler.Get)
			products.DELETE("/:productId", cfg.ProductHandler.Delete)

			releases := products.Group("/:productId/releases")
			{
				releases.POST("", cfg.ProductHandler.CreateRelease)
				releases.GET("", cfg.ProductHandler.ListReleases)
				releases.PUT("/:version/file", cfg.ProductHandler.AttachFile)
				releases.POST("/:version/publish", cfg.ProductHandler.PublishRelease)
				releases.POST("/:version/archive", cfg.ProductHandler.ArchiveRelease)
				releases.POST("/:version/latest", cfg.ProductHandler.SetLatest)
				releases.PUT("/:version/allowed-licenses", cfg.ProductHandler.SetAllowedLicenses)
			}
		}
	}
}

package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/config"
	"github.com/nordiqa/partnerops/internal/forecast"
	"github.com/nordiqa/partnerops/internal/http/api/admin/handlers"
	"github.com/nordiqa/partnerops/internal/models"
	"github.com/nordiqa/partnerops/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers operator routes under /v0/admin.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, forecastSvc *forecast.Service) {
	if r == nil || db == nil {
		return
	}

	admin := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	admin.POST("/login", authHandler.Login)
	admin.POST("/bootstrap", authHandler.Bootstrap)

	authed := admin.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg))

	customerHandler := handlers.NewCustomerHandler(db)
	authed.GET("/customers", customerHandler.List)
	authed.POST("/customers", customerHandler.Create)
	authed.GET("/customers/:id", customerHandler.Get)
	authed.PUT("/customers/:id", customerHandler.Update)
	authed.DELETE("/customers/:id", customerHandler.Delete)
	authed.POST("/customers/:id/user", customerHandler.AssignUser)

	packageHandler := handlers.NewCreditPackageHandler(db)
	authed.POST("/credit-packages", packageHandler.Create)
	authed.GET("/credit-packages", packageHandler.List)
	authed.POST("/credit-packages/:id/disable", packageHandler.Disable)

	invoiceHandler := handlers.NewInvoiceHandler(db)
	authed.POST("/invoices/generate", invoiceHandler.Generate)
	authed.GET("/invoices", invoiceHandler.List)
	authed.POST("/invoices/:id/status", invoiceHandler.UpdateStatus)

	contractHandler := handlers.NewContractHandler(db)
	authed.POST("/contracts", contractHandler.Create)
	authed.GET("/contracts", contractHandler.List)
	authed.POST("/contracts/:id/activate", contractHandler.Activate)

	settingsHandler := handlers.NewSettingsHandler(db)
	authed.GET("/settings", settingsHandler.Get)
	authed.PUT("/settings", settingsHandler.Update)

	dashboardHandler := handlers.NewDashboardHandler(db, forecastSvc)
	authed.GET("/dashboard/portfolio", dashboardHandler.Portfolio)
	authed.GET("/dashboard/customers/:id/forecast", dashboardHandler.CustomerForecast)
}

// adminAuthMiddleware validates admin JWTs and loads the admin into context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin account is disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Next()
	}
}

package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/config"
	"github.com/nordiqa/partnerops/internal/consumption"
	"github.com/nordiqa/partnerops/internal/forecast"
	"github.com/nordiqa/partnerops/internal/http/api/front/handlers"
	"github.com/nordiqa/partnerops/internal/models"
	"github.com/nordiqa/partnerops/internal/security"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers public and authenticated partner routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, forecastSvc *forecast.Service, recorder *consumption.Recorder) {
	if r == nil || db == nil {
		return
	}

	front := r.Group("/v0/front")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	front.POST("/register", authHandler.Register)
	front.POST("/login", authHandler.Login)
	front.POST("/login/totp", authHandler.LoginTOTP)
	front.GET("/config", handlers.GetPublicConfig)
	front.GET("/plans", handlers.ListPlans)

	authed := front.Group("")
	authed.Use(userAuthMiddleware(db, jwtCfg))

	profileHandler := handlers.NewProfileHandler(db)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile/password", profileHandler.ChangePassword)

	mfaHandler := handlers.NewMFAHandler(db)
	authed.GET("/mfa/status", mfaHandler.Status)
	authed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	authed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	authed.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	customerHandler := handlers.NewCustomerFrontHandler(db)
	authed.GET("/customer", customerHandler.Get)

	entryHandler := handlers.NewTimeEntryHandler(db, recorder, forecastSvc)
	authed.POST("/time-entries", entryHandler.Create)
	authed.GET("/time-entries", entryHandler.List)

	creditHandler := handlers.NewCreditHandler(db)
	authed.GET("/credits/balance", creditHandler.Balance)
	authed.POST("/credits/packages/redeem", creditHandler.Redeem)
	authed.GET("/credits/packages", creditHandler.ListPackages)

	dashboardHandler := handlers.NewDashboardHandler(db, forecastSvc)
	authed.GET("/dashboard/kpi", dashboardHandler.KPI)
	authed.GET("/dashboard/forecast", dashboardHandler.Forecast)
}

// userAuthMiddleware validates user JWTs and loads the user into context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
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

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if user.Disabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user disabled"})
			return
		}

		c.Set("userID", user.ID)
		if user.CustomerID != nil {
			c.Set("customerID", *user.CustomerID)
		}
		c.Next()
	}
}

package http

import (
	"github.com/gin-gonic/gin"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/service"
)

// Services bundles everything the router needs. Consent and compensation
// are optional; their routes are mounted only when the contract clients are
// configured.
type Services struct {
	Auth         *service.AuthService
	DID          *service.DIDService
	Records      *service.RecordService
	Consent      *service.ConsentService
	Compensation *service.CompensationService
}

// SetupRouter sets up the Gin router
func SetupRouter(services Services) *gin.Engine {
	router := gin.Default()

	authHandlers := NewAuthHandlers(services.Auth)
	didHandlers := NewDIDHandlers(services.DID)

	authenticated := AuthMiddleware(services.Auth)
	adminOnly := RequireRole(core.RoleAdmin)

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", authHandlers.Challenge)
		auth.POST("/authenticate", authHandlers.Authenticate)
		auth.POST("/verify", authHandlers.Verify)
		auth.POST("/refresh", authHandlers.Refresh)
		auth.POST("/logout", authenticated, authHandlers.Logout)
	}

	didGroup := router.Group("/did")
	{
		didGroup.POST("/create", didHandlers.Create)
		didGroup.POST("/resolve", didHandlers.Resolve)
		didGroup.POST("/update", authenticated, adminOnly, didHandlers.Update)
		didGroup.POST("/deactivate", authenticated, adminOnly, didHandlers.Deactivate)
	}

	if services.Records != nil {
		recordHandlers := NewRecordHandlers(services.Records)
		records := router.Group("/records", authenticated)
		{
			records.POST("/register", RequireRole(core.RoleProducer, core.RoleAdmin), recordHandlers.Register)
			records.GET("/:id", recordHandlers.Get)
			records.POST("/:id/verify", recordHandlers.Verify)
		}
	}

	if services.Consent != nil {
		consentHandlers := NewConsentHandlers(services.Consent)
		consent := router.Group("/consent", authenticated)
		{
			consent.POST("/grant", consentHandlers.Grant)
			consent.POST("/revoke", consentHandlers.Revoke)
			consent.GET("/check", consentHandlers.Check)
		}
	}

	if services.Compensation != nil {
		compensationHandlers := NewCompensationHandlers(services.Compensation)
		compensation := router.Group("/compensation", authenticated)
		{
			compensation.GET("/balance/:address", compensationHandlers.Balance)
			compensation.POST("/withdraw", compensationHandlers.Withdraw)
		}
	}

	api := router.Group("/api", authenticated)
	{
		api.GET("/me", authHandlers.Me)
	}

	return router
}

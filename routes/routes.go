package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fitbuds/handlers"
	"fitbuds/middleware"
)

// RegisterWizardRoutes registers all endpoints for the booking wizard.
// Each route is one user action on a wizard session.
func RegisterWizardRoutes(r *gin.Engine, wh *handlers.WizardHandler, embedSecret string) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Embed-Token"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler)

	api := r.Group("/api/wizard")
	api.Use(middleware.EmbedAuthMiddleware(embedSecret))
	{
		api.POST("/session", wh.StartSession)
		api.GET("/session/:sessionID", wh.GetSession)
		api.DELETE("/session/:sessionID", wh.CancelSession)

		api.POST("/session/:sessionID/category", wh.SelectCategory)
		api.POST("/session/:sessionID/provider", wh.SelectProvider)
		api.POST("/session/:sessionID/date", wh.SelectDate)
		api.POST("/session/:sessionID/slot", wh.SelectSlot)
		api.POST("/session/:sessionID/register", wh.SubmitRegistration)
		api.POST("/session/:sessionID/confirm", wh.ConfirmReservation)

		api.PUT("/session/:sessionID/coupon", wh.SetCoupon)
		api.POST("/session/:sessionID/coupon/validate", wh.ValidateCoupon)
		api.DELETE("/session/:sessionID/cart/:itemID", wh.RemoveCartItem)
		api.POST("/session/:sessionID/checkout", wh.Checkout)
		api.POST("/session/:sessionID/pay", wh.Pay)

		api.POST("/session/:sessionID/back", wh.Back)
		api.POST("/session/:sessionID/error/dismiss", wh.DismissError)
	}
}

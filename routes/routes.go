package routes

import (
	"net/http"
	"time"

	"trimly/handlers"
	"trimly/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRequestRoutes registers the customer-facing request surface.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	api.Use(middleware.AuthMiddleware())
	{
		// Both sides can read negotiation state.
		api.GET("/:id", hb.Request.GetRequestHandler)
		api.GET("/:id/detail", hb.Request.GetRequestDetailHandler)
		api.GET("/:id/messages", hb.Negotiation.ListMessagesHandler)
		api.POST("/:id/messages", hb.Negotiation.PostMessageHandler)

		// Opening, cancelling and accepting are customer actions.
		customer := api.Group("")
		customer.Use(middleware.RequireCustomer())
		customer.POST("", hb.Request.CreateRequestHandler)
		customer.GET("", hb.Request.ListMyRequestsHandler)
		customer.DELETE("/:id", hb.Request.CancelRequestHandler)
		customer.POST("/:id/accept", hb.Request.AcceptResponseHandler)
	}
}

// RegisterResponseRoutes registers the barber-facing bidding surface.
func RegisterResponseRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/responses")
	api.Use(middleware.AuthMiddleware(), middleware.RequireBarber())
	{
		api.POST("", hb.Response.SubmitResponseHandler)
		api.DELETE("/:id", hb.Response.RetractResponseHandler)
	}
}

// RegisterNegotiationRoutes registers offer decisions.
func RegisterNegotiationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/offers")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/:messageId/respond", hb.Negotiation.RespondToOfferHandler)
	}
}

// RegisterBookingRoutes registers the fulfilment surface.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("", hb.Booking.ListMyBookingsHandler)
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.POST("/:id/cancel", hb.Booking.CancelBookingHandler)
		api.POST("/:id/dispute", hb.Booking.RaiseDisputeHandler)

		// Forward progression is barber-driven.
		barber := api.Group("")
		barber.Use(middleware.RequireBarber())
		barber.POST("/:id/en-route", hb.Booking.MarkEnRouteHandler)
		barber.POST("/:id/arrived", hb.Booking.MarkArrivedHandler)
		barber.POST("/:id/start", hb.Booking.MarkStartedHandler)
		barber.POST("/:id/complete", hb.Booking.MarkCompletedHandler)
	}
}

// RegisterAuthRoutes registers session-level token operations.
func RegisterAuthRoutes(r *gin.Engine) {
	api := r.Group("/api/auth")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/revoke", handlers.RevokeTokenHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Trimly"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r)
	RegisterRequestRoutes(r, hb)
	RegisterResponseRoutes(r, hb)
	RegisterNegotiationRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}

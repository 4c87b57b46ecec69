package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jaswant2111058/Vahanwire-server/internal/handler"
	"github.com/jaswant2111058/Vahanwire-server/internal/middleware"
	"github.com/jaswant2111058/Vahanwire-server/internal/ws"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler    *handler.UserHandler
	DriverHandler  *handler.DriverHandler
	RideHandler    *handler.RideHandler
	BidHandler     *handler.BidHandler
	BookingHandler *handler.BookingHandler
	Hub            *ws.Hub
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
	}))
	router.Use(middleware.PrometheusMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Websocket endpoint for live auction events.
	router.GET("/ws", gin.WrapH(deps.Hub))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.ListUsers)
			users.GET("/:id", deps.UserHandler.GetUser)
			users.GET("/:id/rides", deps.RideHandler.GetUserRides)
			users.GET("/:id/bookings", deps.BookingHandler.GetUserBookings)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.ListDrivers)
			drivers.GET("/nearby", deps.DriverHandler.Nearby)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.PATCH("/:id/status", deps.DriverHandler.UpdateStatus)
			drivers.GET("/:id/bids", deps.BidHandler.GetDriverBids)
			drivers.GET("/:id/bookings", deps.BookingHandler.GetDriverBookings)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/available", deps.RideHandler.GetAvailableRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.GET("/:id/bids", deps.BidHandler.GetRideBids)
			rides.PATCH("/:id/status", deps.RideHandler.UpdateStatus)
		}

		// Bid routes.
		bids := v1.Group("/bids")
		{
			bids.POST("", deps.BidHandler.PlaceBid)
			bids.POST("/:id/accept", deps.BidHandler.AcceptBid)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.GET("", deps.BookingHandler.List)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.PATCH("/:id/status", deps.BookingHandler.UpdateStatus)
			bookings.POST("/:id/cancel", deps.BookingHandler.Cancel)
			bookings.POST("/:id/rate", deps.BookingHandler.Rate)
		}
	}

	return router
}

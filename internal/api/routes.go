package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with CORS for allowedOrigins and all routes
func NewRouter(handler *Handler, authn *Authenticator, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	SetupRoutes(router, handler, authn)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler, authn *Authenticator) {
	router.GET("/health", handler.Health)

	api := router.Group("/api")
	api.Use(authn.Middleware())
	{
		api.POST("/municipalities", handler.CreateMunicipality)

		api.POST("/properties", handler.CreateProperty)
		api.GET("/properties/:id", handler.GetProperty)
		api.GET("/properties/:id/price", handler.GetPrice)
		api.POST("/properties/:id/amenities", handler.AddAmenity)
		api.GET("/properties/:id/tours", handler.ListTours)
		api.POST("/properties/:id/tours", handler.CreateTour)

		api.GET("/sales", handler.ListSales)
		api.POST("/sales", handler.SubmitSale)
		api.GET("/sales/:id", handler.GetSale)
		api.GET("/pending-sales", handler.ListPendingSales)
		api.POST("/pending-sales/:id/resolve", handler.ResolvePendingSale)
		api.GET("/commissions", handler.ListCommissions)

		api.PATCH("/tours/:id", handler.UpdateTour)
	}
}

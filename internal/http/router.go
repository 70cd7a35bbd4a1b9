package api

import (
	"log"
	stdhttp "net/http"

	intconfig "backend/internal/config"
	h "backend/internal/http/handlers"
	"backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "rota nao encontrada",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authRequired := middleware.RequireAuth([]byte(env.JWTSecret))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		// Customers & credits
		customers := api.Group("/customers")
		customers.GET("/:id/credits", h.ListCustomerCredits)
		customers.GET("/:id/credit-statement", h.CreditStatementPDF)

		credits := api.Group("/credits")
		credits.GET("", h.ListCredits)
		credits.GET("/:id", h.GetCredit)
		credits.GET("/:id/usages", h.ListCreditUsages)
		credits.POST("", authRequired, h.CreateCredit)
		credits.DELETE("/:id", authRequired, middleware.RequireRoles("admin", "operator"), h.WithdrawCredit)

		// Allocations (consumo FIFO) e shortfall
		allocations := api.Group("/allocations")
		allocations.POST("", authRequired, h.CreateAllocation)
		allocations.POST("/shortfall", authRequired, h.ResolveShortfall)

		// Usages (reversao)
		usages := api.Group("/usages")
		usages.GET("/:id/impact", h.PreviewUsageReversal)
		usages.DELETE("/:id", authRequired, h.ReverseUsage)

		// Trips
		trips := api.Group("/trips")
		trips.GET("", h.ListTrips)
		trips.GET("/:id", h.GetTrip)
		trips.GET("/:id/passengers", h.ListTripPassengers)
		trips.GET("/:id/buses", h.ListTripBuses)
		trips.GET("/:id/roster", h.TripRosterPDF)

		// Payments
		payments := api.Group("/payments")
		payments.POST("", authRequired, h.RecordPayment)
		api.GET("/memberships/:id/payments", h.ListMembershipPayments)

		// Reports
		reports := api.Group("/reports")
		reports.GET("/trips", h.TripRevenueReport)
	}

	h.SetRouter(r)
	return r
}

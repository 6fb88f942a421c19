package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/staysvc/internal/http/handlers"
	"github.com/you/staysvc/internal/http/middleware"
	"github.com/you/staysvc/internal/metrics"
)

// RouterInfo describes the service on the index route
type RouterInfo struct {
	Name       string
	Version    string
	LogRequest bool
}

// BuildRouter wires every route of the API
func BuildRouter(
	info RouterInfo,
	ah *handlers.AuthHandlers,
	lh *handlers.ListingHandlers,
	bh *handlers.BookingHandlers,
	gate *middleware.SessionGate,
	m *metrics.Metrics,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if info.LogRequest {
		r.Use(gin.Logger())
	}
	if m != nil {
		r.Use(middleware.Metrics(m))
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": info.Name + " API",
			"version": info.Version,
			"endpoints": gin.H{
				"auth":     "/api/auth",
				"listings": "/api/listings",
				"bookings": "/api/bookings",
				"health":   "/health",
			},
		})
	})

	api := r.Group("/api")
	requireSession := gate.Require()

	auth := api.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/login", ah.Login)
	auth.GET("/me", requireSession, ah.Me)

	listings := api.Group("/listings")
	listings.GET("", lh.List)
	listings.GET("/:id", lh.Get)
	listings.GET("/:id/quote", lh.Quote)
	listings.POST("", requireSession, lh.Create)
	listings.PUT("/:id", requireSession, lh.Update)
	listings.DELETE("/:id", requireSession, lh.Delete)
	listings.POST("/:id/reviews", requireSession, lh.AddReview)
	listings.POST("/:id/images", requireSession, lh.AttachImage)

	bookings := api.Group("/bookings").Use(requireSession)
	bookings.POST("", bh.Create)
	bookings.GET("/my-bookings", bh.MyBookings)
	bookings.GET("/my-bookings/export", bh.Export)

	return r
}

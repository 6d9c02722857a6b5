package controller

import (
	"net/http"

	"github.com/aryaawcksn/counter/internal/interfaces"
	"github.com/aryaawcksn/counter/internal/middleware"
	ws "github.com/aryaawcksn/counter/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func RegisterRoutes(r *gin.Engine, u interfaces.Usecase, hub *ws.Hub) {
	// Simple health check endpoint that does not touch the database.
	// Useful for uptime pings (e.g., keeping Render free-tier dynos warm).
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/ws/stats", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade connection"})
			return
		}
		ws.ServeWs(hub, conn)
	})

	// The badge routes carry a light per-client rate limit; the cooldown
	// guard inside the service decides separately what actually bills.
	badge := r.Group("/", middleware.RateLimit(rate.Limit(2), 5))
	{
		badge.GET("/counter/:id", u.CounterBadgeHandler)
		badge.GET("/forum-counter/:id", u.ForumCounterHandler)
	}

	api := r.Group("/api")
	{
		api.GET("/counter/:id", u.GetCounterHandler)
		api.GET("/counter/:id/countries", u.CountryBreakdownHandler)
		api.GET("/countries", u.TopCountriesHandler)
	}
}

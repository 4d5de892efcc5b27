package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"helperbot/pkg/ratelimiter"
)

// NewRouter builds the gin engine for the serving process. CORS is fully
// open: the chat widget is embedded on the public website and there is no
// auth. A nil limiter disables rate limiting.
func NewRouter(h *Handler, limiter ratelimiter.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"*"},
	}))
	if limiter != nil {
		router.Use(RateLimit(limiter))
	}

	router.GET("/suggestions", h.Suggestions)
	router.POST("/chat", h.Chat)
	return router
}

// RateLimit rejects requests once the limiter runs dry.
func RateLimit(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}

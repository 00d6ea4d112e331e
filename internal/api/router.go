// Package api exposes the monitoring core over HTTP. Handlers validate
// input and map store outcomes to status codes; all feed/keyword/result
// semantics live in the core packages.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/feedwatch/internal/monitor"
	"github.com/lepinkainen/feedwatch/internal/store"
)

// Server wires the store and monitor into HTTP handlers.
type Server struct {
	store           *store.Store
	monitor         *monitor.Monitor
	defaultInterval int // minutes, applied to newly created feeds
}

// NewServer creates the API server.
func NewServer(s *store.Store, m *monitor.Monitor, defaultIntervalMinutes int) *Server {
	return &Server{store: s, monitor: m, defaultInterval: defaultIntervalMinutes}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "feedwatch"})
	})

	keywords := r.Group("/keywords")
	{
		keywords.POST("", s.createKeyword)
		keywords.GET("", s.listKeywords)
		keywords.GET("/:id", s.getKeyword)
		keywords.PUT("/:id", s.updateKeyword)
		keywords.DELETE("/:id", s.deleteKeyword)
	}

	feeds := r.Group("/rss-feeds")
	{
		feeds.POST("", s.createFeed)
		feeds.GET("", s.listFeeds)
		feeds.GET("/:id", s.getFeed)
		feeds.PUT("/:id", s.updateFeed)
		feeds.DELETE("/:id", s.deleteFeed)
		feeds.POST("/:id/refetch", s.refetchFeed)
	}

	r.GET("/results", s.listResults)

	return r
}

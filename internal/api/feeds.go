package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/feedwatch/internal/store"
	"github.com/lepinkainen/feedwatch/pkg/urlutils"
)

type feedRequest struct {
	URL  string `json:"url" binding:"required"`
	Name string `json:"name"`
}

func (s *Server) createFeed(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !urlutils.IsValidURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feed URL"})
		return
	}

	feed, err := s.store.CreateFeed(c.Request.Context(), req.URL, req.Name, s.defaultInterval)
	if errors.Is(err, store.ErrExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "RSS Feed URL already exists."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.rebuildSchedule()
	c.JSON(http.StatusCreated, feed)
}

func (s *Server) listFeeds(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	feeds, err := s.store.ListFeeds(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if feeds == nil {
		feeds = []store.Feed{}
	}
	c.JSON(http.StatusOK, feeds)
}

func (s *Server) getFeed(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	feed, err := s.store.GetFeed(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "RSS Feed not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (s *Server) updateFeed(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var upd store.FeedUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.URL != nil && !urlutils.IsValidURL(*upd.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feed URL"})
		return
	}

	feed, err := s.store.UpdateFeed(c.Request.Context(), id, upd)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "RSS Feed not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.rebuildSchedule()
	c.JSON(http.StatusOK, feed)
}

func (s *Server) deleteFeed(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.store.DeleteFeed(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "RSS Feed not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.rebuildSchedule()
	c.Status(http.StatusNoContent)
}

// refetchFeed triggers a one-off poll in the background, leaving the feed's
// recurring schedule untouched.
func (s *Server) refetchFeed(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	feed, err := s.store.GetFeed(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "RSS Feed not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.monitor != nil {
		go s.monitor.PollFeed(feed.ID, feed.URL)
	}
	slog.Info("Manually triggered re-fetch", "id", feed.ID, "url", feed.URL)
	c.JSON(http.StatusAccepted, gin.H{"message": "Re-fetch task initiated successfully."})
}

// rebuildSchedule refreshes the monitor after a feed mutation. Failures are
// logged, never surfaced to the client: the mutation itself succeeded.
func (s *Server) rebuildSchedule() {
	if s.monitor == nil {
		return
	}
	if err := s.monitor.Rebuild(); err != nil {
		slog.Error("Failed to rebuild feed schedule", "error", err)
	}
}

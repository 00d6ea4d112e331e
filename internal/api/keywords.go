package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/feedwatch/internal/store"
)

type keywordRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

func (s *Server) createKeyword(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kw, err := s.store.CreateKeyword(c.Request.Context(), req.Keyword)
	if errors.Is(err, store.ErrExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Keyword already exists."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, kw)
}

func (s *Server) listKeywords(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	keywords, err := s.store.ListKeywords(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if keywords == nil {
		keywords = []store.Keyword{}
	}
	c.JSON(http.StatusOK, keywords)
}

func (s *Server) getKeyword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	kw, err := s.store.GetKeyword(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, kw)
}

func (s *Server) updateKeyword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var upd store.KeywordUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kw, err := s.store.UpdateKeyword(c.Request.Context(), id, upd)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, kw)
}

func (s *Server) deleteKeyword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.store.DeleteKeyword(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, writing a 400 response on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

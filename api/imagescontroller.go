package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterImageRoutes registers image session routes.
func (s *Server) RegisterImageRoutes(r *gin.Engine) {
	r.GET("/api/images/sessions", s.handleListSessions)
	r.POST("/api/images/sessions", s.handleStartSession)
	r.DELETE("/api/images/sessions/:id", s.handleDeleteSession)
	r.GET("/api/images/sessions/:id/latest", s.handleLatestGeneration)
	r.GET("/api/images/sessions/:id/history", s.handleGenerationHistory)
	r.POST("/api/images/sessions/:id/regenerate", s.handleRegenerate)
	r.POST("/api/images/items/:id/pin", s.handlePinImage)
	r.DELETE("/api/images/items/:id", s.handleDeleteImage)
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.store.ListSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

type startSessionRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

func (s *Server) handleStartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	session, result, err := s.images.StartSession(c.Request.Context(), req.Prompt, req.Count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "generation": result})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.images.DeleteSession(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleLatestGeneration(c *gin.Context) {
	result, err := s.images.LatestGeneration(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"generation": result})
}

func (s *Server) handleGenerationHistory(c *gin.Context) {
	history, err := s.images.History(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

type regenerateRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

func (s *Server) handleRegenerate(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.images.Regenerate(c.Request.Context(), c.Param("id"), req.Prompt, req.Count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Per-slot outcomes: failed slots surface their error alongside the
	// siblings that succeeded.
	slots := make([]gin.H, 0, len(result.Slots))
	for _, slot := range result.Slots {
		if slot.Err != nil {
			slots = append(slots, gin.H{"error": slot.Err.Error()})
		} else {
			slots = append(slots, gin.H{"item": slot.Item})
		}
	}
	c.JSON(http.StatusOK, gin.H{"generation": result, "slots": slots})
}

func (s *Server) handlePinImage(c *gin.Context) {
	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.images.PinImage(c.Param("id"), req.Pinned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDeleteImage(c *gin.Context) {
	if err := s.images.DeleteImage(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kamilio/ai-studio/types"
)

// RegisterScriptRoutes registers video-script routes.
func (s *Server) RegisterScriptRoutes(r *gin.Engine) {
	r.GET("/api/scripts", s.handleListScripts)
	r.POST("/api/scripts", s.handleCreateScript)
	r.GET("/api/scripts/:id", s.handleGetScript)
	r.PUT("/api/scripts/:id", s.handleUpdateScript)
	r.DELETE("/api/scripts/:id", s.handleDeleteScript)
	r.POST("/api/scripts/:id/chat", s.handleScriptChat)
}

func (s *Server) handleListScripts(c *gin.Context) {
	scripts, err := s.store.ListScripts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scripts": scripts})
}

type createScriptRequest struct {
	Title    string               `json:"title"`
	Settings types.ScriptSettings `json:"settings"`
}

func (s *Server) handleCreateScript(c *gin.Context) {
	var req createScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	script := types.Script{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Shots:     []types.Shot{},
		Settings:  req.Settings,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveScript(script); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"script": script})
}

func (s *Server) handleGetScript(c *gin.Context) {
	script, found, err := s.store.GetScript(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"script": script})
}

func (s *Server) handleUpdateScript(c *gin.Context) {
	var script types.Script
	if err := c.ShouldBindJSON(&script); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	script.ID = c.Param("id")

	if _, found, err := s.store.GetScript(script.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	} else if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
		return
	}

	if err := s.store.SaveScript(script); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"script": script})
}

func (s *Server) handleDeleteScript(c *gin.Context) {
	if err := s.store.DeleteScript(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type scriptChatRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleScriptChat(c *gin.Context) {
	var req scriptChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	result, err := s.assistant.EditScript(c.Request.Context(), c.Param("id"), req.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"script":  result.Script,
		"text":    result.Text,
		"reports": result.Reports,
	})
}

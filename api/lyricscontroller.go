package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterLyricsRoutes registers lyrics conversation and song routes.
func (s *Server) RegisterLyricsRoutes(r *gin.Engine) {
	r.GET("/api/lyrics/threads", s.handleListThreads)
	r.POST("/api/lyrics/iterate", s.handleIterate)
	r.GET("/api/lyrics/messages/:id/ancestors", s.handleAncestors)
	r.DELETE("/api/lyrics/messages/:id", s.handleDeleteMessage)
	r.GET("/api/lyrics/messages/:id/songs", s.handleListSongs)
	r.POST("/api/lyrics/messages/:id/songs", s.handleGenerateSongs)
	r.POST("/api/songs/:id/pin", s.handlePinSong)
	r.DELETE("/api/songs/:id", s.handleDeleteSong)
}

func (s *Server) handleListThreads(c *gin.Context) {
	threads, err := s.lyrics.Tree().ListThreads()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

type iterateRequest struct {
	ParentID *string `json:"parentId"`
	Prompt   string  `json:"prompt"`
}

func (s *Server) handleIterate(c *gin.Context) {
	var req iterateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	result, err := s.lyrics.Iterate(c.Request.Context(), req.ParentID, req.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userMessage": result.UserMessage,
		"reply":       result.Reply,
		"parsed":      result.Parsed,
	})
}

func (s *Server) handleAncestors(c *gin.Context) {
	chain, err := s.lyrics.Tree().GetAncestors(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": chain})
}

func (s *Server) handleDeleteMessage(c *gin.Context) {
	if err := s.lyrics.Tree().SoftDelete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleListSongs(c *gin.Context) {
	songs, err := s.lyrics.Takes(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": songs})
}

type generateSongsRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleGenerateSongs(c *gin.Context) {
	var req generateSongsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	takes, err := s.lyrics.GenerateSongs(c.Request.Context(), c.Param("id"), req.Count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Per-slot outcomes: failed takes surface their error alongside the
	// siblings that succeeded.
	out := make([]gin.H, 0, len(takes))
	for _, take := range takes {
		if take.Err != nil {
			out = append(out, gin.H{"error": take.Err.Error()})
		} else {
			out = append(out, gin.H{"song": take.Song})
		}
	}
	c.JSON(http.StatusOK, gin.H{"takes": out})
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

func (s *Server) handlePinSong(c *gin.Context) {
	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lyrics.PinSong(c.Param("id"), req.Pinned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDeleteSong(c *gin.Context) {
	if err := s.lyrics.DeleteSong(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

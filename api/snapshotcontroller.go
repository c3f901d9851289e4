package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kamilio/ai-studio/types"
)

// RegisterSnapshotRoutes registers export/import and backup routes, plus
// settings.
func (s *Server) RegisterSnapshotRoutes(r *gin.Engine) {
	r.GET("/api/snapshot", s.handleExport)
	r.POST("/api/snapshot", s.handleImport)
	r.POST("/api/snapshot/backup", s.handleBackup)
	r.GET("/api/snapshot/backups", s.handleListBackups)
	r.POST("/api/snapshot/restore", s.handleRestore)
	r.GET("/api/settings", s.handleGetSettings)
	r.PUT("/api/settings", s.handlePutSettings)
}

func (s *Server) handleExport(c *gin.Context) {
	snapshot, err := s.store.Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleImport(c *gin.Context) {
	var snapshot types.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Import(snapshot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}

func (s *Server) handleBackup(c *gin.Context) {
	if s.archiver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot archiving disabled"})
		return
	}
	key, err := s.archiver.Backup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

func (s *Server) handleListBackups(c *gin.Context) {
	if s.archiver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot archiving disabled"})
		return
	}
	keys, err := s.archiver.ListBackups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": keys})
}

type restoreRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleRestore(c *gin.Context) {
	if s.archiver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot archiving disabled"})
		return
	}
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	if req.Key == "" {
		err = s.archiver.RestoreLatest(c.Request.Context())
	} else {
		err = s.archiver.Restore(c.Request.Context(), req.Key)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "restored"})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.store.GetSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) handlePutSettings(c *gin.Context) {
	var settings types.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SetSettings(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

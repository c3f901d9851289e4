package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kamilio/ai-studio/archive"
	"github.com/kamilio/ai-studio/assistant"
	"github.com/kamilio/ai-studio/gateway"
	"github.com/kamilio/ai-studio/images"
	"github.com/kamilio/ai-studio/lyrics"
	"github.com/kamilio/ai-studio/storage"
)

// Server bundles the studio services behind the HTTP API.
type Server struct {
	store     *storage.Store
	client    gateway.Client
	assistant *assistant.Assistant
	lyrics    *lyrics.Service
	images    *images.Service
	archiver  *archive.Archiver
}

// NewServer wires the services onto one store and gateway client. archiver
// may be nil; the backup routes then report the feature as disabled.
func NewServer(store *storage.Store, client gateway.Client, archiver *archive.Archiver) *Server {
	return &Server{
		store:     store,
		client:    client,
		assistant: assistant.New(client, store),
		lyrics:    lyrics.NewService(client, store),
		images:    images.NewService(client, store),
		archiver:  archiver,
	}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	s.RegisterScriptRoutes(r)
	s.RegisterRenderRoutes(r)
	s.RegisterLyricsRoutes(r)
	s.RegisterImageRoutes(r)
	s.RegisterSnapshotRoutes(r)
	RegisterHealthRoutes(r)
	return r
}

// RegisterHealthRoutes registers the liveness probe.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/render"
	"github.com/kamilio/ai-studio/types"
)

// RegisterRenderRoutes registers the render endpoint.
func (s *Server) RegisterRenderRoutes(r *gin.Engine) {
	r.POST("/api/scripts/:id/render", s.handleRenderScript)
}

type renderRequest struct {
	Publish bool `json:"publish"`
}

// handleRenderScript validates the script and kicks off the render in the
// background; rendering downloads and transcodes, so the request returns as
// soon as the work is accepted.
func (s *Server) handleRenderScript(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	script, found, err := s.store.GetScript(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
		return
	}
	if len(script.Shots) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "script has no shots"})
		return
	}
	for _, shot := range script.Shots {
		if shot.Video.SelectedURL == nil || *shot.Video.SelectedURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shot " + shot.ID + " has no selected video"})
			return
		}
	}

	outputPath := filepath.Join(renderOutputDir(), script.ID+".mp4")
	go s.renderAndPublish(script, outputPath, req.Publish)

	c.JSON(http.StatusAccepted, gin.H{"status": "render started", "output": outputPath})
}

func (s *Server) renderAndPublish(script types.Script, outputPath string, publish bool) {
	narrationAudio, cleanup, err := s.fetchNarrationAudio(script)
	if err != nil {
		log.Printf("Warning: narration audio for script %s failed, rendering without it: %v", script.ID, err)
		narrationAudio = ""
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := render.RenderScript(script, narrationAudio, outputPath); err != nil {
		log.Printf("Render failed for script %s: %v", script.ID, err)
		return
	}

	if !publish {
		return
	}
	serviceAccount := os.Getenv("YOUTUBE_SERVICE_ACCOUNT")
	if serviceAccount == "" {
		log.Printf("Warning: YOUTUBE_SERVICE_ACCOUNT not set, skipping publish for script %s", script.ID)
		return
	}

	publisher, err := render.NewPublisher(context.Background(), serviceAccount)
	if err != nil {
		log.Printf("Publish setup failed for script %s: %v", script.ID, err)
		return
	}
	if _, err := publisher.Publish(outputPath, script); err != nil {
		log.Printf("Publish failed for script %s: %v", script.ID, err)
	}
}

// fetchNarrationAudio synthesizes one voiceover track for the shots that use
// the elevenlabs source and downloads it for the renderer. Scripts whose
// shots all keep their native video audio get no track.
func (s *Server) fetchNarrationAudio(script types.Script) (string, func(), error) {
	var lines []string
	for _, shot := range script.Shots {
		if shot.Narration.Enabled && shot.Narration.AudioSource == types.AudioSourceElevenLabs {
			if text := strings.TrimSpace(shot.Narration.Text); text != "" {
				lines = append(lines, text)
			}
		}
	}
	if len(lines) == 0 {
		return "", nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.GatewayTimeout)
	defer cancel()
	url, err := s.client.GenerateAudio(ctx, strings.Join(lines, "\n"))
	if err != nil {
		return "", nil, err
	}

	path := filepath.Join(renderOutputDir(), script.ID+"_narration.mp3")
	if err := render.Download(url, path); err != nil {
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}

func renderOutputDir() string {
	if dir := os.Getenv("RENDER_OUTPUT_DIR"); dir != "" {
		return dir
	}
	return config.RenderTempDir
}

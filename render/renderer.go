package render

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/types"
)

// RenderScript assembles a script's selected shot videos into one output
// file: each shot is trimmed to its duration, the shots are concatenated in
// order and subtitles are burned in when any shot asks for them. A non-empty
// narrationAudioPath lays a voiceover track over the cut, trimmed to the
// shorter of the two. Every shot must have a selected video; rendering a
// half-finished script is a caller error, not something to paper over.
func RenderScript(script types.Script, narrationAudioPath string, outputPath string) error {
	if len(script.Shots) == 0 {
		return fmt.Errorf("script %s has no shots", script.ID)
	}
	for _, shot := range script.Shots {
		if shot.Video.SelectedURL == nil || *shot.Video.SelectedURL == "" {
			return fmt.Errorf("shot %s has no selected video", shot.ID)
		}
	}

	workDir, err := os.MkdirTemp(config.RenderTempDir, "render-"+script.ID+"-")
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download and trim each shot before concatenation.
	streams := make([]*ffmpeg.Stream, 0, len(script.Shots))
	for i, shot := range script.Shots {
		localPath := filepath.Join(workDir, fmt.Sprintf("shot_%02d.mp4", i))
		if err := Download(*shot.Video.SelectedURL, localPath); err != nil {
			return fmt.Errorf("failed to download shot %s: %w", shot.ID, err)
		}

		in := ffmpeg.Input(localPath, ffmpeg.KwArgs{"t": fmt.Sprintf("%.2f", shot.Duration)})
		streams = append(streams, in)
	}

	concatenated := ffmpeg.Concat(streams)

	cues := BuildCues(script.Shots)
	if len(cues) > 0 {
		srtPath := filepath.Join(workDir, "subtitles.srt")
		if err := os.WriteFile(srtPath, []byte(FormatSRT(cues)), 0o644); err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}

		// ffmpeg filter args treat colons as option separators.
		srtForFilter := strings.ReplaceAll(filepath.ToSlash(srtPath), ":", "\\:")
		concatenated = concatenated.Filter("subtitles", ffmpeg.Args{srtForFilter})
	}

	outputs := []*ffmpeg.Stream{concatenated}
	kwargs := ffmpeg.KwArgs{
		"c:v":    config.VideoCodec,
		"c:a":    config.AudioCodec,
		"b:a":    config.AudioBitrate,
		"preset": config.VideoPreset,
	}
	if narrationAudioPath != "" {
		outputs = append(outputs, ffmpeg.Input(narrationAudioPath))
		kwargs["shortest"] = ""
	}

	if err := ffmpeg.Output(outputs, outputPath, kwargs).OverWriteOutput().Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	log.Printf("Rendered script %s (%d shots) to %s", script.ID, len(script.Shots), outputPath)
	return nil
}

// Download fetches a URL to a local file.
func Download(url string, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

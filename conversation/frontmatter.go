package conversation

import (
	"strings"

	"github.com/goccy/go-yaml"
)

// Lyrics is the structured header an assistant reply carries when the model
// followed the lyrics format: a --- delimited YAML block followed by the
// lyrics body.
type Lyrics struct {
	Title      string  `yaml:"title"`
	Style      string  `yaml:"style"`
	Commentary string  `yaml:"commentary"`
	Duration   float64 `yaml:"duration"`
	Body       string  `yaml:"-"`
}

// ParseLyrics extracts the frontmatter header and body from raw assistant
// content. The second return is false when the content does not match the
// frontmatter shape; that is a normal outcome, not an error, and the raw content
// is persisted either way and the structured fields simply stay absent.
func ParseLyrics(content string) (Lyrics, bool) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")

	rest, found := strings.CutPrefix(normalized, "---\n")
	if !found {
		return Lyrics{}, false
	}

	header, body, found := strings.Cut(rest, "\n---\n")
	if !found {
		// A header closed at end-of-content with no body is still valid.
		if trimmed, ok := strings.CutSuffix(rest, "\n---"); ok {
			header, body = trimmed, ""
		} else {
			return Lyrics{}, false
		}
	}

	var lyrics Lyrics
	if err := yaml.Unmarshal([]byte(header), &lyrics); err != nil {
		return Lyrics{}, false
	}
	if lyrics.Title == "" {
		return Lyrics{}, false
	}

	lyrics.Body = strings.TrimSpace(body)
	return lyrics, true
}

package config

import "time"

// Shot Defaults
const (
	// DefaultShotDuration is the length in seconds given to newly added shots
	DefaultShotDuration = 5.0

	// DefaultSongTakes is how many parallel song generations one request fires
	DefaultSongTakes = 2

	// DefaultImageCount is how many images one generation step produces
	DefaultImageCount = 4
)

// Conversation Constants
const (
	// MaxAncestorDepth bounds the ancestor walk; exceeding it means the
	// message forest contains a cycle and is treated as a fatal fault
	MaxAncestorDepth = 1000
)

// Gateway Constants
const (
	// GatewayTimeout is the per-request timeout for generation calls
	GatewayTimeout = 120 * time.Second

	// DefaultChatModel is used when a request does not name a model
	DefaultChatModel = "gpt-4o-mini"
)

// Storage Constants
const (
	// StorageKeyPrefix namespaces every collection key in the KV backend
	StorageKeyPrefix = "studio:"

	// DefaultDataDir is where the file backend keeps collection JSON
	DefaultDataDir = "data"
)

// Render Constants
const (
	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "fast"

	// RenderTempDir is the directory for downloaded shot assets
	RenderTempDir = "/tmp"
)

// YouTube Constants
const (
	// YouTubeCategoryID for Film & Animation
	YouTubeCategoryID = "1"

	// YouTubePrivacyStatus sets video visibility
	YouTubePrivacyStatus = "unlisted"
)

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Relay    RelayConfig
	Detector DetectorConfig
	Registry RegistryConfig
	Session  SessionConfig
	Speech   SpeechConfig
}

type RelayConfig struct {
	URL string // base URL of the relay service (patient side), e.g. http://localhost:3001
}

type DetectorConfig struct {
	URL           string  // face detector/embedding server, defaults to http://localhost:8000
	MinConfidence float64 // minimum detection score, defaults to 0.5
}

type RegistryConfig struct {
	Path      string // path to the local people document, defaults to people.json
	SubjectID string // stable device/subject id; generated and persisted if empty
}

type SessionConfig struct {
	FramesDir    string        // spool directory watched for new camera frames
	MatchMetric  string        // descriptor distance metric, "euclidean" (default) or "cosine"
	SyncInterval time.Duration // period of the approved-people sync, defaults to 10s
}

type SpeechConfig struct {
	Locale         string // BCP 47 tag for transcript matching, defaults to id-ID
	TranscriptPath string // pipe or file an external recognizer writes transcript lines to
	SpeakCommand   string // external TTS program, defaults to espeak-ng
	SpeakRate      int    // TTS rate in words per minute
	SpeakPitch     int    // TTS pitch on the espeak 0-99 scale
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a duration.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Relay: RelayConfig{
			URL: envOr("RELAY_URL", "http://localhost:3001"),
		},
		Detector: DetectorConfig{
			URL:           envOr("DETECTOR_URL", "http://localhost:8000"),
			MinConfidence: envFloat("DETECTOR_MIN_CONFIDENCE", 0.5),
		},
		Registry: RegistryConfig{
			Path:      envOr("REGISTRY_PATH", "people.json"),
			SubjectID: os.Getenv("SUBJECT_ID"),
		},
		Session: SessionConfig{
			FramesDir:    envOr("FRAMES_DIR", "frames"),
			MatchMetric:  envOr("MATCH_METRIC", "euclidean"),
			SyncInterval: envDuration("SYNC_INTERVAL", 10*time.Second),
		},
		Speech: SpeechConfig{
			Locale:         envOr("SPEECH_LOCALE", "id-ID"),
			TranscriptPath: os.Getenv("TRANSCRIPT_PATH"),
			SpeakCommand:   envOr("SPEAK_COMMAND", "espeak-ng"),
			SpeakRate:      envInt("SPEAK_RATE", 150),
			SpeakPitch:     envInt("SPEAK_PITCH", 50),
		},
	}
}

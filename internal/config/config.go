// Package config provides configuration for the go-tripvoice server.
// All settings come from environment variables with sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for tunable settings.
const (
	DefaultModel            = "gemini-2.5-flash-live-preview"
	DefaultInputSampleRate  = 16000
	DefaultOutputSampleRate = 24000
	DefaultMaxBufferSize    = 5000
	DefaultBufferTimeout    = 3 * time.Second
	DefaultSpeechGap        = 1500 * time.Millisecond
	DefaultVoiceName        = "Zephyr"
	DefaultLanguageCode     = "en-US"
	DefaultHTTPPort         = "8000"
	DefaultLogStoreSize     = 500
)

// Config holds all server settings.
type Config struct {
	// Gemini API
	GeminiAPIKey string
	ModelName    string

	// Vertex AI deployment mode. When UseVertexAI is set the client
	// authenticates with application default credentials instead of an
	// API key.
	UseVertexAI   bool
	CloudProject  string
	CloudLocation string

	// Audio
	InputSampleRate  int
	OutputSampleRate int
	DisableVAD       bool

	// Buffering
	MaxBufferSize int
	BufferTimeout time.Duration

	// Tool response delivery
	SpeechGapThreshold time.Duration

	// Voice
	VoiceName    string
	LanguageCode string

	// Server
	HTTPPort     string
	LogLevel     string
	LogStoreSize int
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		ModelName:     envString("GEMINI_MODEL_NAME", DefaultModel),
		UseVertexAI:   envBool("GOOGLE_GENAI_USE_VERTEXAI", false),
		CloudProject:  os.Getenv("GOOGLE_CLOUD_PROJECT_ID"),
		CloudLocation: os.Getenv("GOOGLE_CLOUD_LOCATION"),

		InputSampleRate:  envInt("INPUT_SAMPLE_RATE", DefaultInputSampleRate),
		OutputSampleRate: envInt("OUTPUT_SAMPLE_RATE", DefaultOutputSampleRate),
		DisableVAD:       envBool("DISABLE_VAD", false),

		MaxBufferSize: envInt("MAX_BUFFER_SIZE", DefaultMaxBufferSize),
		BufferTimeout: envDuration("BUFFER_TIMEOUT_SECONDS", DefaultBufferTimeout),

		SpeechGapThreshold: envDuration("SPEECH_GAP_SECONDS", DefaultSpeechGap),

		VoiceName:    envString("VOICE_NAME", DefaultVoiceName),
		LanguageCode: envString("LANGUAGE_CODE", DefaultLanguageCode),

		HTTPPort:     envString("PORT", DefaultHTTPPort),
		LogLevel:     envString("LOG_LEVEL", "info"),
		LogStoreSize: envInt("LOG_STORE_SIZE", DefaultLogStoreSize),
	}
}

// Validate checks that the deployment mode is fully configured.
func (c Config) Validate() error {
	if c.UseVertexAI {
		if c.CloudProject == "" || c.CloudLocation == "" {
			return errors.New("config: GOOGLE_CLOUD_PROJECT_ID and GOOGLE_CLOUD_LOCATION must be set when using Vertex AI")
		}
	} else if c.GeminiAPIKey == "" {
		return errors.New("config: GEMINI_API_KEY must be set when not using Vertex AI")
	}

	if c.InputSampleRate <= 0 || c.OutputSampleRate <= 0 {
		return fmt.Errorf("config: invalid sample rates %d/%d", c.InputSampleRate, c.OutputSampleRate)
	}
	if c.MaxBufferSize <= 0 {
		return fmt.Errorf("config: invalid max buffer size %d", c.MaxBufferSize)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}

// envDuration reads a duration expressed in seconds, matching the
// original deployment's configuration surface.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return time.Duration(f * float64(time.Second))
}

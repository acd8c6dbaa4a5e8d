package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/oauth2/google"

	"github.com/tripvoice/go-tripvoice/internal/log"
)

const (
	liveHost     = "generativelanguage.googleapis.com"
	livePath     = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	vertexPath   = "/ws/google.cloud.aiplatform.v1beta1.LlmBidiService/BidiGenerateContent"
	dialTimeout  = 15 * time.Second
	setupTimeout = 10 * time.Second
)

var cloudPlatformScope = []string{"https://www.googleapis.com/auth/cloud-platform"}

// Config describes one Live session. Zero values fall back to the API
// defaults where the API has one.
type Config struct {
	// APIKey authenticates against the Gemini developer API. Ignored
	// when UseVertexAI is set.
	APIKey string

	// UseVertexAI switches to the Vertex AI endpoint, authenticating
	// with application default credentials.
	UseVertexAI bool
	Project     string
	Location    string

	Model             string
	SystemInstruction string

	VoiceName    string
	LanguageCode string

	// DisableVAD turns off automatic activity detection so the caller
	// drives turn boundaries explicitly.
	DisableVAD bool

	InputSampleRate int

	// ResumeHandle restores a prior session when non-empty.
	ResumeHandle string

	Tools []FunctionDeclaration
}

// FunctionDeclaration describes one callable tool to the model.
// Parameters is an OpenAPI-style schema object.
type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Client dials Live sessions for a fixed configuration.
type Client struct {
	cfg Config
}

// NewClient validates the configuration and returns a client. It does
// not open a connection.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("gemini: model name is required")
	}
	if cfg.UseVertexAI {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, errors.New("gemini: vertex mode requires project and location")
		}
	} else if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	return &Client{cfg: cfg}, nil
}

// Connect opens a websocket to the Live endpoint, sends the session
// setup, and waits for the setup acknowledgement before returning.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	endpoint, header, err := c.endpoint(ctx)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("gemini: dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("gemini: dial failed: %w", err)
	}

	s := newSession(conn, c.cfg.InputSampleRate)
	if err := s.sendSetup(c.setupPayload()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("gemini: send setup: %w", err)
	}
	if err := s.awaitSetupComplete(setupTimeout); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("gemini session established",
		"model", c.cfg.Model,
		"vertex", c.cfg.UseVertexAI,
		"resumed", c.cfg.ResumeHandle != "")

	s.start()
	return s, nil
}

func (c *Client) endpoint(ctx context.Context) (string, http.Header, error) {
	if c.cfg.UseVertexAI {
		ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope...)
		if err != nil {
			return "", nil, fmt.Errorf("gemini: application default credentials: %w", err)
		}
		token, err := ts.Token()
		if err != nil {
			return "", nil, fmt.Errorf("gemini: fetch access token: %w", err)
		}
		u := url.URL{
			Scheme: "wss",
			Host:   fmt.Sprintf("%s-aiplatform.googleapis.com", c.cfg.Location),
			Path:   vertexPath,
		}
		header := http.Header{}
		header.Set("Authorization", "Bearer "+token.AccessToken)
		return u.String(), header, nil
	}

	u := url.URL{
		Scheme:   "wss",
		Host:     liveHost,
		Path:     livePath,
		RawQuery: url.Values{"key": {c.cfg.APIKey}}.Encode(),
	}
	return u.String(), nil, nil
}

// Setup wire shapes.

type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string                    `json:"model"`
	GenerationConfig         *generationConfig         `json:"generationConfig,omitempty"`
	SystemInstruction        *wireContent              `json:"systemInstruction,omitempty"`
	Tools                    []toolDeclaration         `json:"tools,omitempty"`
	RealtimeInputConfig      *realtimeInputConfig      `json:"realtimeInputConfig,omitempty"`
	SessionResumption        *sessionResumption        `json:"sessionResumption,omitempty"`
	ContextWindowCompression *contextWindowCompression `json:"contextWindowCompression,omitempty"`
	InputAudioTranscription  *struct{}                 `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}                 `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string        `json:"responseModalities"`
	SpeechConfig       *speechConfig   `json:"speechConfig,omitempty"`
	ThinkingConfig     *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type speechConfig struct {
	LanguageCode string       `json:"languageCode,omitempty"`
	VoiceConfig  *voiceConfig `json:"voiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type thinkingConfig struct {
	IncludeThoughts bool `json:"includeThoughts"`
}

type toolDeclaration struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

type realtimeInputConfig struct {
	AutomaticActivityDetection automaticActivityDetection `json:"automaticActivityDetection"`
}

type automaticActivityDetection struct {
	Disabled                 bool   `json:"disabled,omitempty"`
	StartOfSpeechSensitivity string `json:"startOfSpeechSensitivity,omitempty"`
	EndOfSpeechSensitivity   string `json:"endOfSpeechSensitivity,omitempty"`
	PrefixPaddingMs          int    `json:"prefixPaddingMs,omitempty"`
	SilenceDurationMs        int    `json:"silenceDurationMs,omitempty"`
}

type sessionResumption struct {
	Handle string `json:"handle,omitempty"`
}

type contextWindowCompression struct {
	SlidingWindow struct{} `json:"slidingWindow"`
}

func (c *Client) setupPayload() setupMessage {
	p := setupPayload{
		Model: "models/" + c.cfg.Model,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			ThinkingConfig:     &thinkingConfig{IncludeThoughts: false},
		},
		SessionResumption:        &sessionResumption{Handle: c.cfg.ResumeHandle},
		ContextWindowCompression: &contextWindowCompression{},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}

	if c.cfg.VoiceName != "" || c.cfg.LanguageCode != "" {
		sc := &speechConfig{LanguageCode: c.cfg.LanguageCode}
		if c.cfg.VoiceName != "" {
			sc.VoiceConfig = &voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.cfg.VoiceName},
			}
		}
		p.GenerationConfig.SpeechConfig = sc
	}

	if c.cfg.SystemInstruction != "" {
		p.SystemInstruction = &wireContent{
			Parts: []wirePart{{Text: c.cfg.SystemInstruction}},
		}
	}

	if len(c.cfg.Tools) > 0 {
		p.Tools = []toolDeclaration{{FunctionDeclarations: c.cfg.Tools}}
	}

	if c.cfg.DisableVAD {
		p.RealtimeInputConfig = &realtimeInputConfig{
			AutomaticActivityDetection: automaticActivityDetection{Disabled: true},
		}
	} else {
		p.RealtimeInputConfig = &realtimeInputConfig{
			AutomaticActivityDetection: automaticActivityDetection{
				StartOfSpeechSensitivity: "START_SENSITIVITY_HIGH",
				EndOfSpeechSensitivity:   "END_SENSITIVITY_HIGH",
				PrefixPaddingMs:          50,
				SilenceDurationMs:        1200,
			},
		}
	}

	return setupMessage{Setup: p}
}

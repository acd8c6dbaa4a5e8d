package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ModelName != DefaultModel {
		t.Errorf("expected default model, got %s", cfg.ModelName)
	}
	if cfg.InputSampleRate != 16000 {
		t.Errorf("expected input sample rate 16000, got %d", cfg.InputSampleRate)
	}
	if cfg.OutputSampleRate != 24000 {
		t.Errorf("expected output sample rate 24000, got %d", cfg.OutputSampleRate)
	}
	if cfg.MaxBufferSize != 5000 {
		t.Errorf("expected max buffer size 5000, got %d", cfg.MaxBufferSize)
	}
	if cfg.BufferTimeout != 3*time.Second {
		t.Errorf("expected buffer timeout 3s, got %v", cfg.BufferTimeout)
	}
	if cfg.SpeechGapThreshold != 1500*time.Millisecond {
		t.Errorf("expected speech gap 1.5s, got %v", cfg.SpeechGapThreshold)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_MODEL_NAME", "gemini-test-model")
	t.Setenv("MAX_BUFFER_SIZE", "100")
	t.Setenv("BUFFER_TIMEOUT_SECONDS", "0.5")
	t.Setenv("DISABLE_VAD", "true")

	cfg := Load()

	if cfg.ModelName != "gemini-test-model" {
		t.Errorf("model override not applied: %s", cfg.ModelName)
	}
	if cfg.MaxBufferSize != 100 {
		t.Errorf("buffer size override not applied: %d", cfg.MaxBufferSize)
	}
	if cfg.BufferTimeout != 500*time.Millisecond {
		t.Errorf("timeout override not applied: %v", cfg.BufferTimeout)
	}
	if !cfg.DisableVAD {
		t.Error("DISABLE_VAD override not applied")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "api key mode",
			mutate: func(c *Config) { c.GeminiAPIKey = "key" },
		},
		{
			name:    "api key missing",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "vertex mode",
			mutate: func(c *Config) {
				c.UseVertexAI = true
				c.CloudProject = "proj"
				c.CloudLocation = "us-central1"
			},
		},
		{
			name: "vertex mode missing location",
			mutate: func(c *Config) {
				c.UseVertexAI = true
				c.CloudProject = "proj"
			},
			wantErr: true,
		},
		{
			name: "bad sample rate",
			mutate: func(c *Config) {
				c.GeminiAPIKey = "key"
				c.OutputSampleRate = 0
			},
			wantErr: true,
		},
		{
			name: "bad buffer size",
			mutate: func(c *Config) {
				c.GeminiAPIKey = "key"
				c.MaxBufferSize = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				InputSampleRate:  DefaultInputSampleRate,
				OutputSampleRate: DefaultOutputSampleRate,
				MaxBufferSize:    DefaultMaxBufferSize,
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Package openai provides a synthesize.Provider backed by the OpenAI audio
// speech API. Output is MP3 written to a temporary file.
//
// The OpenAI speech models are multilingual and infer the spoken language
// from the input text itself, so the language code is not forwarded; it is
// accepted for interface compatibility.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MrWong99/linguacare/pkg/provider/synthesize"
)

const defaultVoice = oai.AudioSpeechNewParamsVoiceAlloy

// Compile-time assertion that Provider implements synthesize.Provider.
var _ synthesize.Provider = (*Provider)(nil)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	voice   oai.AudioSpeechNewParamsVoice
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithVoice selects the synthesis voice (e.g., "alloy", "nova").
func WithVoice(voice string) Option {
	return func(c *config) { c.voice = oai.AudioSpeechNewParamsVoice(voice) }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Provider implements synthesize.Provider using the OpenAI audio API.
type Provider struct {
	client oai.Client
	model  oai.SpeechModel
	voice  oai.AudioSpeechNewParamsVoice
}

// New constructs an OpenAI synthesis Provider. model selects the speech model
// (e.g., "gpt-4o-mini-tts", "tts-1").
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &config{voice: defaultVoice}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: oai.SpeechModel(model), voice: cfg.voice}, nil
}

// Synthesize implements synthesize.Provider.
func (p *Provider) Synthesize(ctx context.Context, text, _ string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	resp, err := p.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model:          p.model,
		Input:          text,
		Voice:          p.voice,
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return "", fmt.Errorf("openai: speech request: %w", err)
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp("", "linguacare-tts-*.mp3")
	if err != nil {
		return "", fmt.Errorf("openai: create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("openai: write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("openai: close artifact: %w", err)
	}
	return f.Name(), nil
}

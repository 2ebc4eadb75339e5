// Package gtts provides a synthesize.Provider backed by the Google Translate
// text-to-speech endpoint (translate_tts) — the same service the gTTS
// ecosystem wraps. Output is MP3 written to a temporary file.
//
// The endpoint caps each request at roughly 200 characters, so longer text is
// split on sentence boundaries and the MP3 payloads are concatenated (MPEG
// audio frames are self-delimiting, so concatenation yields a playable
// stream).
package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MrWong99/linguacare/pkg/provider/synthesize"
)

const (
	defaultBaseURL = "https://translate.google.com/translate_tts"

	// maxChunkLen is the per-request character budget accepted by the endpoint.
	maxChunkLen = 200
)

// Compile-time assertion that Provider implements synthesize.Provider.
var _ synthesize.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithBaseURL overrides the TTS endpoint URL. Primarily for tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements synthesize.Provider against the translate_tts endpoint.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Provider with the given options.
func New(opts ...Option) (*Provider, error) {
	p := &Provider{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	if p.baseURL == "" {
		return nil, fmt.Errorf("gtts: baseURL must not be empty")
	}
	return p, nil
}

// Synthesize implements synthesize.Provider. Empty text yields an empty path
// and nil error; on any failure no file is left behind.
func (p *Provider) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if languageCode == "" {
		languageCode = "en"
	}

	f, err := os.CreateTemp("", "linguacare-tts-*.mp3")
	if err != nil {
		return "", fmt.Errorf("gtts: create temp file: %w", err)
	}

	if err := p.fetchAll(ctx, f, text, languageCode); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("gtts: close artifact: %w", err)
	}
	return f.Name(), nil
}

// fetchAll downloads the MP3 payload for each text chunk into w.
func (p *Provider) fetchAll(ctx context.Context, w io.Writer, text, languageCode string) error {
	chunks := splitText(text, maxChunkLen)
	for i, chunk := range chunks {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("client", "tw-ob")
		q.Set("tl", languageCode)
		q.Set("q", chunk)
		q.Set("idx", fmt.Sprint(i))
		q.Set("total", fmt.Sprint(len(chunks)))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
		if err != nil {
			return fmt.Errorf("gtts: create request: %w", err)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("gtts: http request: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("gtts: server returned HTTP %d", resp.StatusCode)
		}
		if _, err := io.Copy(w, resp.Body); err != nil {
			resp.Body.Close()
			return fmt.Errorf("gtts: write artifact: %w", err)
		}
		resp.Body.Close()
	}
	return nil
}

// splitText breaks text into chunks of at most maxLen characters, preferring
// sentence boundaries, then word boundaries. Runes, not bytes, are counted so
// that non-Latin scripts are not split mid-character.
func splitText(text string, maxLen int) []string {
	var chunks []string
	remaining := strings.TrimSpace(text)
	for remaining != "" {
		runes := []rune(remaining)
		if len(runes) <= maxLen {
			chunks = append(chunks, remaining)
			break
		}

		window := string(runes[:maxLen])
		cut := -1
		for _, sep := range []string{". ", "। ", "? ", "! ", ", ", " "} {
			if idx := strings.LastIndex(window, sep); idx > cut {
				cut = idx + len(sep)
			}
		}
		if cut <= 0 {
			cut = len(window) // no boundary at all; hard split
		}

		chunks = append(chunks, strings.TrimSpace(window[:cut]))
		remaining = strings.TrimSpace(remaining[len(window[:cut]):])
	}
	return chunks
}

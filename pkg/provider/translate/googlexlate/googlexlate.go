// Package googlexlate provides a translate.Provider backed by the free
// Google Translate web endpoint (translate_a/single, client=gtx) — the same
// service the deep-translator ecosystem wraps.
//
// The endpoint answers with a nested JSON array in which the first element
// holds the translated sentence segments. No API key is required, which makes
// this the default translator for deployments without provider credentials.
package googlexlate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrWong99/linguacare/pkg/provider/translate"
)

const defaultBaseURL = "https://translate.googleapis.com/translate_a/single"

// Compile-time assertion that Provider implements translate.Provider.
var _ translate.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithBaseURL overrides the translate endpoint URL. Primarily for tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements translate.Provider against the gtx endpoint.
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
		return nil, fmt.Errorf("googlexlate: baseURL must not be empty")
	}
	return p, nil
}

// Translate implements translate.Provider. An empty sourceCode requests
// auto-detection ("auto" in the gtx parameter space).
func (p *Provider) Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if targetCode == "" {
		return "", fmt.Errorf("googlexlate: targetCode must not be empty")
	}
	if sourceCode == "" {
		sourceCode = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceCode)
	q.Set("tl", targetCode)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("googlexlate: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("googlexlate: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("googlexlate: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("googlexlate: read response body: %w", err)
	}

	return parseGTXResponse(data)
}

// parseGTXResponse extracts the translated text from the gtx response. The
// payload is a nested array: element [0] is a list of sentence segments, each
// of which is itself an array whose element [0] is the translated fragment.
func parseGTXResponse(data []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return "", fmt.Errorf("googlexlate: parse response: %w", err)
	}
	if len(root) == 0 {
		return "", nil
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("googlexlate: parse segment list: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		var fields []json.RawMessage
		if err := json.Unmarshal(seg, &fields); err != nil || len(fields) == 0 {
			continue
		}
		var fragment string
		if err := json.Unmarshal(fields[0], &fragment); err != nil {
			continue
		}
		b.WriteString(fragment)
	}
	return strings.TrimSpace(b.String()), nil
}

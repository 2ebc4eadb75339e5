// Package tesseract provides an ocr.Provider backed by a tesseract-server
// instance (POST /tesseract, multipart upload, JSON response).
//
// Printed text is handled by Tesseract in 100+ languages. Handwritten English
// is a known weak spot, so an optional second recognizer (any HTTP service
// that accepts an image upload and answers {"text": "..."}) can be configured;
// its result is merged in front of the Tesseract output for English documents,
// mirroring how handwriting models outperform Tesseract on that input while
// supporting nothing else.
package tesseract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrWong99/linguacare/pkg/provider/ocr"
)

// englishHint is the OCR language code that enables the handwriting pass.
const englishHint = "eng"

// Compile-time assertion that Provider implements ocr.Provider.
var _ ocr.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithHandwritingURL enables the English handwriting recognizer at the given
// endpoint.
func WithHandwritingURL(u string) Option {
	return func(p *Provider) { p.handwritingURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements ocr.Provider against a tesseract-server instance.
type Provider struct {
	serverURL      string
	handwritingURL string
	httpClient     *http.Client
}

// New creates a Provider that submits recognition requests to the
// tesseract-server at serverURL (e.g., "http://localhost:8884").
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("tesseract: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Recognize implements ocr.Provider. An empty languageHint falls back to
// English. Failure of the handwriting pass is non-fatal: the Tesseract result
// alone is returned.
func (p *Provider) Recognize(ctx context.Context, imagePath, languageHint string) (string, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("tesseract: read image: %w", err)
	}
	if languageHint == "" {
		languageHint = englishHint
	}

	printed, err := p.recognizePrinted(ctx, img, filepath.Base(imagePath), languageHint)
	if err != nil {
		return "", err
	}

	var handwritten string
	if p.handwritingURL != "" && languageHint == englishHint {
		handwritten, err = p.recognizeHandwriting(ctx, img, filepath.Base(imagePath))
		if err != nil {
			// Tesseract already produced a usable result; degrade quietly.
			handwritten = ""
		}
	}

	combined := strings.TrimSpace(handwritten + "\n" + printed)
	return combined, nil
}

// tesseractResponse mirrors the tesseract-server JSON envelope.
type tesseractResponse struct {
	Data struct {
		Stdout   string `json:"stdout"`
		Stderr   string `json:"stderr"`
		ExitCode int    `json:"exit_code"`
	} `json:"data"`
}

// recognizePrinted submits the image to tesseract-server.
func (p *Provider) recognizePrinted(ctx context.Context, img []byte, filename, languageHint string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("tesseract: create form file: %w", err)
	}
	if _, err := fw.Write(img); err != nil {
		return "", fmt.Errorf("tesseract: write image data: %w", err)
	}

	options, err := json.Marshal(map[string]any{"languages": []string{languageHint}})
	if err != nil {
		return "", fmt.Errorf("tesseract: marshal options: %w", err)
	}
	if err := mw.WriteField("options", string(options)); err != nil {
		return "", fmt.Errorf("tesseract: write options field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("tesseract: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+"/tesseract", &body)
	if err != nil {
		return "", fmt.Errorf("tesseract: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tesseract: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tesseract: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("tesseract: read response body: %w", err)
	}

	var result tesseractResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("tesseract: parse JSON response: %w", err)
	}
	if result.Data.ExitCode != 0 {
		return "", fmt.Errorf("tesseract: recognition failed: %s", strings.TrimSpace(result.Data.Stderr))
	}
	return strings.TrimSpace(result.Data.Stdout), nil
}

// recognizeHandwriting submits the image to the handwriting endpoint.
func (p *Provider) recognizeHandwriting(ctx context.Context, img []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("tesseract: create form file: %w", err)
	}
	if _, err := fw.Write(img); err != nil {
		return "", fmt.Errorf("tesseract: write image data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("tesseract: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.handwritingURL+"/predict", &body)
	if err != nil {
		return "", fmt.Errorf("tesseract: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tesseract: handwriting request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tesseract: handwriting server returned HTTP %d", resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("tesseract: parse handwriting response: %w", err)
	}
	return strings.TrimSpace(result.Text), nil
}

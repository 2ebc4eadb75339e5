// Package mock provides a test double for the synthesize package interfaces.
package mock

import (
	"context"
	"os"
	"sync"
)

// SynthesizeCall records a single invocation of Provider.Synthesize.
type SynthesizeCall struct {
	Text         string
	LanguageCode string
}

// Provider is a mock implementation of synthesize.Provider.
type Provider struct {
	mu sync.Mutex

	// Path is returned as the artifact path. When WriteFile is true a real
	// temporary file is created per call instead and its path returned, so
	// callers exercising file-cleanup logic have something to delete.
	Path string

	// WriteFile creates a real temp file per call when set.
	WriteFile bool

	// Err, if non-nil, is returned as the error from Synthesize.
	Err error

	// Calls records every call to Synthesize.
	Calls []SynthesizeCall
}

// Synthesize records the call and returns the scripted artifact path. It
// mirrors the real contract: empty text yields an empty path and nil error.
func (p *Provider) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, SynthesizeCall{Text: text, LanguageCode: languageCode})

	if p.Err != nil {
		return "", p.Err
	}
	if text == "" {
		return "", nil
	}
	if p.WriteFile {
		f, err := os.CreateTemp("", "mock-tts-*.mp3")
		if err != nil {
			return "", err
		}
		if _, err := f.WriteString(text); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return "", err
		}
		return f.Name(), nil
	}
	return p.Path, nil
}

// CallCount returns the number of recorded calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

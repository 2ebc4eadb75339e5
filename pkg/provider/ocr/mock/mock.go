// Package mock provides a test double for the ocr package interfaces.
package mock

import (
	"context"
	"sync"
)

// RecognizeCall records a single invocation of Provider.Recognize.
type RecognizeCall struct {
	ImagePath    string
	LanguageHint string
}

// Provider is a mock implementation of ocr.Provider.
type Provider struct {
	mu sync.Mutex

	// Text is returned as the recognition result.
	Text string

	// Err, if non-nil, is returned as the error from Recognize.
	Err error

	// Fn, if non-nil, is invoked instead of the Text/Err fields. Useful when
	// a test needs per-call behaviour (e.g., inspecting the staged image
	// before it is deleted).
	Fn func(ctx context.Context, imagePath, languageHint string) (string, error)

	// Calls records every call to Recognize.
	Calls []RecognizeCall
}

// Recognize records the call and returns the scripted result.
func (p *Provider) Recognize(ctx context.Context, imagePath, languageHint string) (string, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, RecognizeCall{ImagePath: imagePath, LanguageHint: languageHint})
	fn := p.Fn
	text, err := p.Text, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, imagePath, languageHint)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// CallCount returns the number of recorded calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Package mock provides a test double for the transcribe package interfaces.
//
// Use Provider to script recognition results and inspect which audio files and
// language codes the caller submitted.
package mock

import (
	"context"
	"sync"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// AudioPath is the file path passed to Transcribe.
	AudioPath string
	// LanguageCode is the recognition hint passed to Transcribe.
	LanguageCode string
}

// Provider is a mock implementation of transcribe.Provider.
type Provider struct {
	mu sync.Mutex

	// Text is returned as the recognition result.
	Text string

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Fn, if non-nil, is invoked instead of the Text/Err fields. Useful when a
	// test needs per-call behaviour (e.g., inspecting the file contents before
	// it is deleted).
	Fn func(ctx context.Context, audioPath, languageCode string) (string, error)

	// Calls records every call to Transcribe.
	Calls []TranscribeCall
}

// Transcribe records the call and returns the scripted result.
func (p *Provider) Transcribe(ctx context.Context, audioPath, languageCode string) (string, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranscribeCall{AudioPath: audioPath, LanguageCode: languageCode})
	fn := p.Fn
	text, err := p.Text, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, audioPath, languageCode)
	}
	return text, err
}

// CallCount returns the number of recorded calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

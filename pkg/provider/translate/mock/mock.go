// Package mock provides a test double for the translate package interfaces.
package mock

import (
	"context"
	"sync"
)

// TranslateCall records a single invocation of Provider.Translate.
type TranslateCall struct {
	Text       string
	SourceCode string
	TargetCode string
}

// Provider is a mock implementation of translate.Provider.
type Provider struct {
	mu sync.Mutex

	// Text is returned as the translation result.
	Text string

	// Err, if non-nil, is returned as the error from Translate.
	Err error

	// Fn, if non-nil, is invoked instead of the Text/Err fields.
	Fn func(ctx context.Context, text, sourceCode, targetCode string) (string, error)

	// Calls records every call to Translate.
	Calls []TranslateCall
}

// Translate records the call and returns the scripted result.
func (p *Provider) Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranslateCall{Text: text, SourceCode: sourceCode, TargetCode: targetCode})
	fn := p.Fn
	out, err := p.Text, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, sourceCode, targetCode)
	}
	return out, err
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

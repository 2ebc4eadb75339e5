package resilience

import (
	"context"

	"github.com/MrWong99/linguacare/pkg/provider/synthesize"
)

// SynthesizerFallback implements [synthesize.Provider] with automatic failover
// across multiple speech synthesis backends. Each backend has its own circuit
// breaker.
type SynthesizerFallback struct {
	group *FallbackGroup[synthesize.Provider]
}

// Compile-time interface assertion.
var _ synthesize.Provider = (*SynthesizerFallback)(nil)

// NewSynthesizerFallback creates a [SynthesizerFallback] with primary as the
// preferred backend.
func NewSynthesizerFallback(primary synthesize.Provider, primaryName string, cfg FallbackConfig) *SynthesizerFallback {
	return &SynthesizerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional speech synthesis provider as a fallback.
func (f *SynthesizerFallback) AddFallback(name string, provider synthesize.Provider) {
	f.group.AddFallback(name, provider)
}

// Synthesize produces spoken audio for text using the first healthy provider
// and returns the path of the generated audio file. The caller owns the file.
func (f *SynthesizerFallback) Synthesize(ctx context.Context, text string, languageCode string) (string, error) {
	return ExecuteWithResult(f.group, func(p synthesize.Provider) (string, error) {
		return p.Synthesize(ctx, text, languageCode)
	})
}

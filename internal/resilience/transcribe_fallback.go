package resilience

import (
	"context"

	"github.com/MrWong99/linguacare/pkg/provider/transcribe"
)

// TranscriberFallback implements [transcribe.Provider] with automatic failover
// across multiple speech recognition backends. Each backend has its own circuit
// breaker.
type TranscriberFallback struct {
	group *FallbackGroup[transcribe.Provider]
}

// Compile-time interface assertion.
var _ transcribe.Provider = (*TranscriberFallback)(nil)

// NewTranscriberFallback creates a [TranscriberFallback] with primary as the
// preferred backend.
func NewTranscriberFallback(primary transcribe.Provider, primaryName string, cfg FallbackConfig) *TranscriberFallback {
	return &TranscriberFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional speech recognition provider as a fallback.
func (f *TranscriberFallback) AddFallback(name string, provider transcribe.Provider) {
	f.group.AddFallback(name, provider)
}

// Transcribe converts the recording at audioPath to text using the first
// healthy provider. An empty transcript with a nil error means the recording
// contained no recognizable speech and does not count as a backend failure.
func (f *TranscriberFallback) Transcribe(ctx context.Context, audioPath string, languageCode string) (string, error) {
	return ExecuteWithResult(f.group, func(p transcribe.Provider) (string, error) {
		return p.Transcribe(ctx, audioPath, languageCode)
	})
}

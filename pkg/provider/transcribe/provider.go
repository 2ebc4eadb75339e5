// Package transcribe defines the Provider interface for speech-to-text
// backends.
//
// A transcribe provider wraps a speech recognition service (e.g., the Google
// Web Speech API or a local whisper.cpp server) and exposes a uniform batch
// interface: one recorded utterance in, one recognized string out. Unlike
// streaming recognizers, a provider here is handed a complete audio file and
// returns only once the service has committed to a result.
//
// An empty result string means the recognizer understood nothing. That is a
// normal outcome, not an error — callers decide how to surface it. Errors are
// reserved for transport and service failures.
//
// Implementations must be safe for concurrent use.
package transcribe

import "context"

// Provider is the abstraction over any batch speech-to-text backend.
type Provider interface {
	// Transcribe converts the audio file at audioPath into text. The file must
	// be single-channel PCM WAV unless the implementation documents otherwise.
	//
	// languageCode is the ISO/BCP-47 recognition hint (e.g., "en", "hi").
	// Implementations should pass it through to the service; an empty code lets
	// the service auto-detect where supported.
	//
	// Returns the recognized text, which may be empty when no speech was
	// understood. A non-nil error indicates the service could not be consulted
	// at all (network failure, bad credentials, ctx cancelled).
	Transcribe(ctx context.Context, audioPath string, languageCode string) (string, error)
}

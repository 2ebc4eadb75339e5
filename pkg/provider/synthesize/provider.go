// Package synthesize defines the Provider interface for text-to-speech
// backends.
//
// A synthesize provider wraps a speech synthesis service (e.g., the Google
// Translate TTS endpoint or the OpenAI audio API) and produces a playable
// audio artifact on disk for a given piece of text. The artifact is a
// temporary file owned by the caller: whoever receives the path is responsible
// for deleting it once played or streamed.
//
// Implementations must be safe for concurrent use.
package synthesize

import "context"

// Provider is the abstraction over any text-to-speech backend.
type Provider interface {
	// Synthesize converts text into spoken audio in the given language and
	// writes it to a temporary file, returning the file path. The container
	// format is implementation-specific (typically MP3); see each provider's
	// documentation.
	//
	// Empty or all-whitespace text yields an empty path and a nil error — there
	// is nothing to speak and that is not a failure. A non-nil error indicates
	// the service could not produce audio; no file is left behind in that case.
	//
	// Ownership of the returned file transfers to the caller, which must remove
	// it after use.
	Synthesize(ctx context.Context, text string, languageCode string) (string, error)
}

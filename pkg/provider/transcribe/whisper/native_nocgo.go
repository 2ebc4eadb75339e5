// Stub for builds without CGO. The whisper.cpp Go bindings require CGO, so
// NativeProvider is unavailable; NewNative reports this at construction time.

//go:build !cgo

package whisper

import (
	"context"
	"errors"
)

// NativeProvider is unavailable without CGO; see native.go for the real
// implementation backed by the whisper.cpp bindings.
type NativeProvider struct{}

// NewNative always fails: the whisper.cpp bindings require CGO.
func NewNative(modelPath string) (*NativeProvider, error) {
	return nil, errors.New("whisper: native provider requires a binary built with CGO enabled")
}

// Close implements the same API as the CGO-backed NativeProvider.
func (p *NativeProvider) Close() error { return nil }

// Transcribe implements transcribe.Provider.
func (p *NativeProvider) Transcribe(ctx context.Context, audioPath, languageCode string) (string, error) {
	return "", errors.New("whisper: native provider requires a binary built with CGO enabled")
}

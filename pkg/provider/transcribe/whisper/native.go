// This file contains the NativeProvider implementation backed by the
// whisper.cpp CGO bindings. The whisper.cpp static library (libwhisper.a)
// and headers (whisper.h) must be available at link time via LIBRARY_PATH
// and C_INCLUDE_PATH environment variables.

//go:build cgo

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/MrWong99/linguacare/pkg/audio"
	"github.com/MrWong99/linguacare/pkg/provider/transcribe"
)

// Compile-time assertion that NativeProvider satisfies transcribe.Provider.
var _ transcribe.Provider = (*NativeProvider)(nil)

// NativeProvider implements transcribe.Provider using whisper.cpp Go bindings
// (CGO), eliminating HTTP overhead entirely. The model is loaded once at
// startup and shared across all transcription calls; each call creates its
// own whisper context, so concurrent calls do not interfere.
type NativeProvider struct {
	model whisperlib.Model
}

// NewNative creates a NativeProvider that loads the whisper.cpp model from
// the given file path. The caller must call Close when the provider is no
// longer needed.
func NewNative(modelPath string) (*NativeProvider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}
	return &NativeProvider{model: model}, nil
}

// Close releases the whisper model. Must be called when the provider is no
// longer needed.
func (p *NativeProvider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe implements transcribe.Provider. The WAV payload is down-mixed to
// mono float32 as the bindings require.
func (p *NativeProvider) Transcribe(ctx context.Context, audioPath, languageCode string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	raw, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("whisper: read audio file: %w", err)
	}
	info, err := audio.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}
	samples := audio.PCMToFloat32Mono(info.Data, info.Channels)

	// Each context is NOT thread-safe, but the model can be shared across
	// goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}

	if languageCode != "" {
		if err := wctx.SetLanguage(languageCode); err != nil {
			slog.Warn("whisper: failed to set language, using default",
				"language", languageCode, "error", err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		parts = append(parts, segment.Text)
	}

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

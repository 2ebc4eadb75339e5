package resilience

import (
	"context"
	"errors"
	"testing"

	synthmock "github.com/MrWong99/linguacare/pkg/provider/synthesize/mock"
	transcribemock "github.com/MrWong99/linguacare/pkg/provider/transcribe/mock"
	translatemock "github.com/MrWong99/linguacare/pkg/provider/translate/mock"
)

func TestTranscriberFallback_PrimarySuccess(t *testing.T) {
	primary := &transcribemock.Provider{Text: "hello doctor"}
	secondary := &transcribemock.Provider{Text: "should not be used"}

	fb := NewTranscriberFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	got, err := fb.Transcribe(context.Background(), "/tmp/rec.wav", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello doctor" {
		t.Fatalf("transcript = %q, want %q", got, "hello doctor")
	}
	if secondary.CallCount() != 0 {
		t.Fatalf("secondary called %d times, want 0", secondary.CallCount())
	}
	if len(primary.Calls) != 1 || primary.Calls[0].LanguageCode != "en" {
		t.Fatalf("primary calls = %+v", primary.Calls)
	}
}

func TestTranscriberFallback_FailsOver(t *testing.T) {
	primary := &transcribemock.Provider{Err: errTest}
	secondary := &transcribemock.Provider{Text: "me duele la cabeza"}

	fb := NewTranscriberFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	got, err := fb.Transcribe(context.Background(), "/tmp/rec.wav", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "me duele la cabeza" {
		t.Fatalf("transcript = %q, want fallback result", got)
	}
}

func TestTranscriberFallback_EmptyTranscriptIsNotFailure(t *testing.T) {
	primary := &transcribemock.Provider{Text: ""}
	secondary := &transcribemock.Provider{Text: "noise"}

	fb := NewTranscriberFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	got, err := fb.Transcribe(context.Background(), "/tmp/silence.wav", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("transcript = %q, want empty", got)
	}
	if secondary.CallCount() != 0 {
		t.Fatal("empty transcript must not trigger failover")
	}
}

func TestTranslatorFallback_AllFail(t *testing.T) {
	primary := &translatemock.Provider{Err: errTest}
	secondary := &translatemock.Provider{Err: errTest}

	fb := NewTranslatorFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	_, err := fb.Translate(context.Background(), "hello", "en", "es")
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("error = %v, want ErrAllFailed", err)
	}
	if primary.CallCount() != 1 || secondary.CallCount() != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", primary.CallCount(), secondary.CallCount())
	}
}

func TestSynthesizerFallback_SkipsOpenBreaker(t *testing.T) {
	primary := &synthmock.Provider{Err: errTest}
	secondary := &synthmock.Provider{Path: "/tmp/out.mp3"}

	fb := NewSynthesizerFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fb.AddFallback("secondary", secondary)

	// First call trips the primary breaker, second call must skip it entirely.
	for range 2 {
		path, err := fb.Synthesize(context.Background(), "take two tablets", "en")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != "/tmp/out.mp3" {
			t.Fatalf("path = %q, want /tmp/out.mp3", path)
		}
	}
	if primary.CallCount() != 1 {
		t.Fatalf("primary called %d times, want 1 (breaker open)", primary.CallCount())
	}
	if secondary.CallCount() != 2 {
		t.Fatalf("secondary called %d times, want 2", secondary.CallCount())
	}
}

// Package pipeline implements the spoken turn flow: a recorded utterance is
// transcribed, translated into the listener's language, appended to the
// conversation log, and rendered back to speech.
//
// The pipeline degrades rather than fails: a broken translator falls back to
// the source text, a broken synthesizer yields a text-only turn. Only invalid
// input and unrecognizable speech abort a turn, and both are reported through
// typed sentinel errors so callers can map them to client-side failures.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/MrWong99/linguacare/internal/catalog"
	"github.com/MrWong99/linguacare/internal/conversation"
	"github.com/MrWong99/linguacare/internal/observe"
	"github.com/MrWong99/linguacare/pkg/audio"
	"github.com/MrWong99/linguacare/pkg/provider/ocr"
	"github.com/MrWong99/linguacare/pkg/provider/synthesize"
	"github.com/MrWong99/linguacare/pkg/provider/transcribe"
	"github.com/MrWong99/linguacare/pkg/provider/translate"
)

// Request describes one spoken turn to process.
type Request struct {
	// Speaker identifies who is talking.
	Speaker conversation.Speaker

	// SourceLanguage is the display name of the speaker's language.
	SourceLanguage string

	// TargetLanguage is the display name of the listener's language.
	TargetLanguage string

	// Audio is the recorded utterance as a PCM WAV container.
	Audio []byte
}

// Result is the outcome of a processed turn.
type Result struct {
	// Turn is the log entry appended for this turn, with ID and timestamp
	// assigned.
	Turn conversation.Turn

	// TranslationDegraded is true when the translator failed and the turn
	// carries the untranslated source text.
	TranslationDegraded bool

	// AudioUnavailable is true when no spoken reply could be produced. The
	// turn text is still valid.
	AudioUnavailable bool

	// AudioPath is the synthesized reply audio file. Empty when
	// AudioUnavailable. Ownership transfers to the caller, who must remove
	// the file after playing or streaming it.
	AudioPath string
}

// DocumentRequest describes one document image to extract and translate.
type DocumentRequest struct {
	// Image is the scanned or photographed document.
	Image []byte

	// SourceLanguage is the display name of the language the document is
	// written in.
	SourceLanguage string

	// TargetLanguage is the display name to translate the extracted text into.
	TargetLanguage string
}

// DocumentResult is the outcome of a processed document.
type DocumentResult struct {
	// ExtractedText is the raw OCR output. Empty when extraction failed.
	ExtractedText string

	// TranslatedText is the extracted text rendered in the target language.
	TranslatedText string

	// ExtractionFailed is true when the OCR provider errored; the result
	// carries empty text instead of failing the request.
	ExtractionFailed bool

	// TranslationDegraded is true when the translator failed and
	// TranslatedText carries the untranslated extraction.
	TranslationDegraded bool
}

// Runner executes the turn and document flows against a fixed set of
// providers. It is safe for concurrent use.
type Runner struct {
	transcriber transcribe.Provider
	translator  translate.Provider
	synthesizer synthesize.Provider
	ocr         ocr.Provider
	catalog     *catalog.Catalog
	metrics     *observe.Metrics
	now         func() time.Time
}

// Option configures a [Runner].
type Option func(*Runner)

// WithSynthesizer sets the speech synthesis provider. Without one every turn
// is text-only and reported as AudioUnavailable.
func WithSynthesizer(p synthesize.Provider) Option {
	return func(r *Runner) {
		r.synthesizer = p
	}
}

// WithOCR sets the document text extraction provider. Without one the
// document flow returns [ErrOCRUnavailable].
func WithOCR(p ocr.Provider) Option {
	return func(r *Runner) {
		r.ocr = p
	}
}

// WithMetrics overrides the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a [Runner]. Transcription and translation providers are
// required; synthesis and OCR are optional.
func NewRunner(t transcribe.Provider, tr translate.Provider, cat *catalog.Catalog, opts ...Option) *Runner {
	r := &Runner{
		transcriber: t,
		translator:  tr,
		catalog:     cat,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

// Run processes one spoken turn and appends it to log. The sequence is
// transcribe, translate, append, synthesize. Exactly one Turn is appended per
// successful call; [ErrInvalidInput] and [ErrNoSpeechRecognized] abort the
// turn before anything is logged. The temporary recording file is removed on
// every exit path.
func (r *Runner) Run(ctx context.Context, req Request, log *conversation.Log) (Result, error) {
	start := r.now()
	logger := observe.Logger(ctx)

	if !req.Speaker.IsValid() {
		return Result{}, fmt.Errorf("%w: unknown speaker %q", ErrInvalidInput, req.Speaker)
	}
	if len(req.Audio) == 0 {
		return Result{}, fmt.Errorf("%w: empty audio", ErrInvalidInput)
	}
	if _, err := audio.Decode(req.Audio); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	srcCode := r.catalog.Resolve(req.SourceLanguage)
	tgtCode := r.catalog.Resolve(req.TargetLanguage)

	audioPath, err := writeTemp(req.Audio, "linguacare-turn-*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: stage recording: %w", err)
	}
	defer os.Remove(audioPath)

	// Transcribe. A failing recognition service is reported the same way as
	// silence: the caller prompts the speaker to try again. The cause is kept
	// in the wrapped error for logs.
	sttStart := r.now()
	text, err := r.transcriber.Transcribe(ctx, audioPath, r.catalog.RecognitionCode(req.SourceLanguage))
	r.metrics.TranscriptionDuration.Record(ctx, r.now().Sub(sttStart).Seconds())
	if err != nil {
		r.metrics.RecordProviderError(ctx, "transcriber", "transcribe")
		logger.Warn("transcription failed", "error", err)
		return Result{}, fmt.Errorf("%w: %v", ErrNoSpeechRecognized, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrNoSpeechRecognized
	}

	// Translate. Same resolved code on both sides means there is nothing to
	// translate, and a failed translation falls back to the source text so
	// the conversation can continue.
	translated, degraded := r.translateText(ctx, text, srcCode, tgtCode, logger)

	res := Result{TranslationDegraded: degraded}
	res.Turn = log.Append(conversation.Turn{
		Speaker:        req.Speaker,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		SourceText:     text,
		TranslatedText: translated,
	})

	// Synthesize the spoken reply. Failure leaves a text-only turn.
	res.AudioPath, res.AudioUnavailable = r.synthesizeReply(ctx, translated, tgtCode, logger)

	r.metrics.TurnDuration.Record(ctx, r.now().Sub(start).Seconds())
	r.metrics.RecordTurnCompleted(ctx, string(req.Speaker), degraded || res.AudioUnavailable)
	logger.Info("turn processed",
		"speaker", req.Speaker,
		"source", srcCode,
		"target", tgtCode,
		"degraded", degraded,
		"audio", !res.AudioUnavailable,
	)
	return res, nil
}

// translateText returns the target-language text plus a degradation flag.
// Only a failed service call degrades to the source text; a translator that
// succeeds with empty output means there is nothing to speak, and the empty
// string is stored as-is.
func (r *Runner) translateText(ctx context.Context, text, srcCode, tgtCode string, logger *slog.Logger) (string, bool) {
	if srcCode == tgtCode {
		return text, false
	}

	xlStart := r.now()
	translated, err := r.translator.Translate(ctx, text, srcCode, tgtCode)
	r.metrics.TranslationDuration.Record(ctx, r.now().Sub(xlStart).Seconds())
	if err != nil {
		r.metrics.RecordProviderError(ctx, "translator", "translate")
		logger.Warn("translation failed, keeping source text", "error", err)
		return text, true
	}
	return strings.TrimSpace(translated), false
}

// synthesizeReply returns the artifact path and an unavailability flag.
func (r *Runner) synthesizeReply(ctx context.Context, text, langCode string, logger *slog.Logger) (string, bool) {
	if r.synthesizer == nil || text == "" {
		return "", true
	}

	ttsStart := r.now()
	path, err := r.synthesizer.Synthesize(ctx, text, langCode)
	r.metrics.SynthesisDuration.Record(ctx, r.now().Sub(ttsStart).Seconds())
	if err != nil {
		r.metrics.RecordProviderError(ctx, "synthesizer", "synthesize")
		logger.Warn("synthesis failed, turn is text-only", "error", err)
		return "", true
	}
	if path == "" {
		return "", true
	}
	return path, false
}

// Document extracts text from a document image and translates it. OCR
// failure yields an empty-text result with ExtractionFailed set rather than
// an error; only a missing provider or invalid input aborts the request. The
// temporary image file is removed on every exit path.
func (r *Runner) Document(ctx context.Context, req DocumentRequest) (DocumentResult, error) {
	logger := observe.Logger(ctx)

	if r.ocr == nil {
		return DocumentResult{}, ErrOCRUnavailable
	}
	if len(req.Image) == 0 {
		return DocumentResult{}, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}

	imagePath, err := writeTemp(req.Image, "linguacare-doc-*.img")
	if err != nil {
		return DocumentResult{}, fmt.Errorf("pipeline: stage document: %w", err)
	}
	defer os.Remove(imagePath)

	hint := r.catalog.OCRCode(req.SourceLanguage)

	ocrStart := r.now()
	text, err := r.ocr.Recognize(ctx, imagePath, hint)
	r.metrics.OCRDuration.Record(ctx, r.now().Sub(ocrStart).Seconds())
	if err != nil {
		r.metrics.RecordProviderError(ctx, "ocr", "recognize")
		r.metrics.RecordDocumentProcessed(ctx, "error")
		logger.Warn("document extraction failed", "error", err)
		return DocumentResult{ExtractionFailed: true}, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		r.metrics.RecordDocumentProcessed(ctx, "empty")
		return DocumentResult{}, nil
	}

	srcCode := r.catalog.Resolve(req.SourceLanguage)
	tgtCode := r.catalog.Resolve(req.TargetLanguage)
	translated, degraded := r.translateText(ctx, text, srcCode, tgtCode, logger)

	r.metrics.RecordDocumentProcessed(ctx, "ok")
	return DocumentResult{
		ExtractedText:       text,
		TranslatedText:      translated,
		TranslationDegraded: degraded,
	}, nil
}

// writeTemp stages content in a temporary file and returns its path. The file
// is removed again if it cannot be written completely.
func writeTemp(content []byte, pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

package pipeline

import "errors"

// ErrInvalidInput is returned when a request cannot enter the pipeline at
// all: missing or undecodable audio, an unknown speaker, or an empty
// document image. Nothing is appended to the conversation log.
var ErrInvalidInput = errors.New("pipeline: invalid input")

// ErrNoSpeechRecognized is returned when transcription produces no usable
// text, whether the recording contained nothing to translate or the
// recognition service itself failed. Either way the caller's remedy is the
// same: ask the speaker to repeat the utterance. Nothing is appended to the
// conversation log.
var ErrNoSpeechRecognized = errors.New("pipeline: no speech recognized")

// ErrOCRUnavailable is returned by the document flow when no OCR provider
// is configured.
var ErrOCRUnavailable = errors.New("pipeline: document extraction is not configured")

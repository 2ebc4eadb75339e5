// Package conversation holds the session's conversation state: immutable Turn
// records and the append-only Log they live in, plus the export projections
// (plain text and PDF) used to hand the conversation to the patient or the
// clinic's records.
package conversation

import "time"

// Speaker identifies which side of the conversation produced a turn.
type Speaker string

const (
	SpeakerDoctor  Speaker = "Doctor"
	SpeakerPatient Speaker = "Patient"
)

// IsValid reports whether s is a recognised speaker role.
func (s Speaker) IsValid() bool {
	return s == SpeakerDoctor || s == SpeakerPatient
}

// Turn is one recognized-and-translated utterance attributed to a speaker.
// Turns are immutable once appended to a Log.
type Turn struct {
	// ID uniquely identifies the turn within the session.
	ID string `json:"id"`

	// Speaker is the role that produced the utterance.
	Speaker Speaker `json:"speaker"`

	// SourceLanguage and TargetLanguage are catalog display names, recorded as
	// the user selected them (not resolved codes).
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`

	// SourceText is the recognized utterance. Never empty for a stored turn.
	SourceText string `json:"source_text"`

	// TranslatedText is the translation, or the source text when translation
	// degraded, or empty when the translator produced no output.
	TranslatedText string `json:"translated_text"`

	// CreatedAt is when the turn was appended. Non-decreasing within a Log.
	CreatedAt time.Time `json:"created_at"`
}

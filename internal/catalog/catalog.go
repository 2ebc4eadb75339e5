// Package catalog provides the Language Catalog: the static registry mapping
// human-readable language names to the codes each external service consumes.
//
// Two code spaces exist. Translation, transcription, and synthesis share the
// ISO code space ("en", "hi", "zh-cn"). Document recognition uses the
// narrower Tesseract code space ("eng", "hin") because the OCR engine
// supports far fewer languages; names without an OCR entry fall back to
// English rather than failing.
//
// Resolve is total by contract: any input — misspelled, unknown, or empty —
// yields a usable code. Near-misses ("Englsh", "hindi ") are rescued with a
// bounded Damerau-Levenshtein pass before the English fallback applies.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
)

const (
	// DefaultCode is the fallback translation/synthesis code for unknown names.
	DefaultCode = "en"

	// DefaultOCRCode is the fallback document-recognition code.
	DefaultOCRCode = "eng"

	// maxEditDistance bounds the fuzzy pass. Distance 2 tolerates a typo or a
	// swapped character pair without letting "Thai" match "Hindi".
	maxEditDistance = 2
)

// Entry describes one catalog language.
type Entry struct {
	// Name is the display name shown to users (e.g., "Chinese (Simplified)").
	Name string

	// Code is the ISO code used for translation, transcription, and synthesis.
	Code string

	// OCRCode is the Tesseract code for document recognition. Empty when the
	// OCR engine does not support the language.
	OCRCode string
}

// builtin is the default language table: the languages of the original
// deployment region first, then common world languages. Codes follow the
// Google Translate code space.
var builtin = []Entry{
	{Name: "English", Code: "en", OCRCode: "eng"},
	{Name: "Hindi", Code: "hi", OCRCode: "hin"},
	{Name: "Kannada", Code: "kn", OCRCode: "kan"},
	{Name: "Tamil", Code: "ta", OCRCode: "tam"},
	{Name: "Telugu", Code: "te", OCRCode: "tel"},
	{Name: "Malayalam", Code: "ml", OCRCode: "mal"},
	{Name: "Marathi", Code: "mr", OCRCode: "mar"},
	{Name: "Gujarati", Code: "gu", OCRCode: "guj"},
	{Name: "Punjabi", Code: "pa"},
	{Name: "Bengali", Code: "bn", OCRCode: "ben"},
	{Name: "Urdu", Code: "ur", OCRCode: "urd"},
	{Name: "Arabic", Code: "ar", OCRCode: "ara"},
	{Name: "Chinese (Simplified)", Code: "zh-cn", OCRCode: "chi_sim"},
	{Name: "Chinese (Traditional)", Code: "zh-tw", OCRCode: "chi_tra"},
	{Name: "French", Code: "fr", OCRCode: "fra"},
	{Name: "German", Code: "de", OCRCode: "deu"},
	{Name: "Spanish", Code: "es", OCRCode: "spa"},
	{Name: "Portuguese", Code: "pt", OCRCode: "por"},
	{Name: "Russian", Code: "ru", OCRCode: "rus"},
	{Name: "Italian", Code: "it", OCRCode: "ita"},
	{Name: "Japanese", Code: "ja", OCRCode: "jpn"},
	{Name: "Korean", Code: "ko", OCRCode: "kor"},
	{Name: "Thai", Code: "th", OCRCode: "tha"},
	{Name: "Indonesian", Code: "id", OCRCode: "ind"},
	{Name: "Turkish", Code: "tr", OCRCode: "tur"},
	{Name: "Dutch", Code: "nl", OCRCode: "nld"},
	{Name: "Swedish", Code: "sv", OCRCode: "swe"},
	{Name: "Polish", Code: "pl", OCRCode: "pol"},
	{Name: "Czech", Code: "cs", OCRCode: "ces"},
	{Name: "Greek", Code: "el", OCRCode: "ell"},
	{Name: "Vietnamese", Code: "vi", OCRCode: "vie"},
	{Name: "Swahili", Code: "sw", OCRCode: "swa"},
	{Name: "Filipino", Code: "tl", OCRCode: "tgl"},
	{Name: "Romanian", Code: "ro", OCRCode: "ron"},
	{Name: "Hungarian", Code: "hu", OCRCode: "hun"},
	{Name: "Finnish", Code: "fi", OCRCode: "fin"},
	{Name: "Danish", Code: "da", OCRCode: "dan"},
	{Name: "Norwegian", Code: "no", OCRCode: "nor"},
	{Name: "Hebrew", Code: "he", OCRCode: "heb"},
	{Name: "Persian (Farsi)", Code: "fa", OCRCode: "fas"},
}

// Catalog resolves display names to service codes. It is safe for concurrent
// use; Reload swaps the extra entries atomically so in-flight lookups never
// observe a half-built table.
type Catalog struct {
	mu      sync.RWMutex
	entries []Entry
	byName  map[string]Entry // keyed by normalized name
}

// New builds a Catalog from the built-in language table plus any extra
// entries. Extras with a name matching a built-in entry replace it.
func New(extras ...Entry) *Catalog {
	c := &Catalog{}
	c.rebuild(extras)
	return c
}

// Reload replaces the extra entries on top of the built-in table. Used when
// the configuration file changes at runtime.
func (c *Catalog) Reload(extras []Entry) {
	c.rebuild(extras)
}

func (c *Catalog) rebuild(extras []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.byName = make(map[string]Entry, len(builtin)+len(extras))
	for _, e := range builtin {
		c.add(e)
	}
	for _, e := range extras {
		if e.Name == "" || e.Code == "" {
			continue
		}
		c.add(e)
	}
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].Name < c.entries[j].Name })
}

func (c *Catalog) add(e Entry) {
	key := normalize(e.Name)
	if _, exists := c.byName[key]; !exists {
		c.entries = append(c.entries, e)
	} else {
		for i := range c.entries {
			if normalize(c.entries[i].Name) == key {
				c.entries[i] = e
				break
			}
		}
	}
	c.byName[key] = e
}

// Names returns all display names in alphabetical order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Resolve maps a display name to its translation/synthesis code. It is total:
// unknown names resolve to DefaultCode after a bounded fuzzy pass.
func (c *Catalog) Resolve(displayName string) string {
	if e, ok := c.lookup(displayName); ok {
		return e.Code
	}
	return DefaultCode
}

// RecognitionCode maps a display name to the code passed to the speech
// recognizer. Recognition shares the translation code space.
func (c *Catalog) RecognitionCode(displayName string) string {
	return c.Resolve(displayName)
}

// OCRCode maps a display name to its document-recognition code. Languages the
// OCR engine does not support — and unknown names — yield DefaultOCRCode.
func (c *Catalog) OCRCode(displayName string) string {
	if e, ok := c.lookup(displayName); ok && e.OCRCode != "" {
		return e.OCRCode
	}
	return DefaultOCRCode
}

// SupportsRecognition reports whether live transcription is configured for
// the named language. Callers use this to gate the microphone flow before a
// pipeline invocation; unknown names are not recognizable.
func (c *Catalog) SupportsRecognition(displayName string) bool {
	_, ok := c.lookup(displayName)
	return ok
}

// lookup finds the entry for displayName: exact (normalized) match first,
// then the nearest name within maxEditDistance.
func (c *Catalog) lookup(displayName string) (Entry, bool) {
	key := normalize(displayName)
	if key == "" {
		return Entry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.byName[key]; ok {
		return e, true
	}

	best := maxEditDistance + 1
	var bestEntry Entry
	for name, e := range c.byName {
		if d := matchr.DamerauLevenshtein(key, name); d < best {
			best = d
			bestEntry = e
		}
	}
	if best <= maxEditDistance {
		return bestEntry, true
	}
	return Entry{}, false
}

// normalize lower-cases and collapses interior whitespace so that "  hindi "
// and "Hindi" compare equal.
func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

package catalog

import (
	"sort"
	"testing"
)

func TestResolveKnownLanguages(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		want string
	}{
		{"English", "en"},
		{"Hindi", "hi"},
		{"Chinese (Simplified)", "zh-cn"},
		{"Persian (Farsi)", "fa"},
	}
	for _, tt := range tests {
		if got := c.Resolve(tt.name); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolveIsTotal(t *testing.T) {
	c := New()
	// Any input must yield a valid code — never panic, never empty.
	inputs := []string{"", "   ", "Klingon", "12345", "English; DROP TABLE", "ñ"}
	for _, in := range inputs {
		if got := c.Resolve(in); got != DefaultCode {
			t.Errorf("Resolve(%q) = %q, want default %q", in, got, DefaultCode)
		}
	}
}

func TestResolveTolerantOfNearMisses(t *testing.T) {
	c := New()
	tests := []struct {
		input string
		want  string
	}{
		{"english", "en"},   // case
		{"  Hindi  ", "hi"}, // padding
		{"Englsh", "en"},    // dropped letter
		{"Tmail", "ta"},     // transposition
	}
	for _, tt := range tests {
		if got := c.Resolve(tt.input); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestOCRCodeNarrowerThanTranslation(t *testing.T) {
	c := New()
	if got := c.OCRCode("Hindi"); got != "hin" {
		t.Errorf("OCRCode(Hindi) = %q, want hin", got)
	}
	// Punjabi translates but has no OCR model configured.
	if got := c.Resolve("Punjabi"); got != "pa" {
		t.Errorf("Resolve(Punjabi) = %q, want pa", got)
	}
	if got := c.OCRCode("Punjabi"); got != DefaultOCRCode {
		t.Errorf("OCRCode(Punjabi) = %q, want fallback %q", got, DefaultOCRCode)
	}
	if got := c.OCRCode("Klingon"); got != DefaultOCRCode {
		t.Errorf("OCRCode(unknown) = %q, want fallback %q", got, DefaultOCRCode)
	}
}

func TestSupportsRecognition(t *testing.T) {
	c := New()
	if !c.SupportsRecognition("Tamil") {
		t.Error("SupportsRecognition(Tamil) = false, want true")
	}
	if c.SupportsRecognition("Klingon") {
		t.Error("SupportsRecognition(Klingon) = true, want false")
	}
}

func TestNamesSorted(t *testing.T) {
	c := New()
	names := c.Names()
	if len(names) < 30 {
		t.Fatalf("len(names) = %d, want the full builtin table", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Error("Names() is not sorted")
	}
}

func TestExtrasOverrideBuiltins(t *testing.T) {
	c := New(
		Entry{Name: "Esperanto", Code: "eo"},
		Entry{Name: "English", Code: "en-GB", OCRCode: "eng"},
	)
	if got := c.Resolve("Esperanto"); got != "eo" {
		t.Errorf("Resolve(Esperanto) = %q, want eo", got)
	}
	if got := c.Resolve("English"); got != "en-GB" {
		t.Errorf("Resolve(English) = %q, want the override en-GB", got)
	}
	// Overriding must not duplicate the entry in Names.
	var count int
	for _, n := range c.Names() {
		if n == "English" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("English appears %d times in Names(), want 1", count)
	}
}

func TestRecognitionCodeSharesTranslationSpace(t *testing.T) {
	c := New()
	for _, name := range []string{"English", "Hindi", "Klingon"} {
		if got, want := c.RecognitionCode(name), c.Resolve(name); got != want {
			t.Errorf("RecognitionCode(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestReloadSwapsExtras(t *testing.T) {
	c := New(Entry{Name: "Esperanto", Code: "eo"})
	if got := c.Resolve("Esperanto"); got != "eo" {
		t.Fatalf("Resolve(Esperanto) = %q, want eo", got)
	}

	c.Reload([]Entry{{Name: "Frisian", Code: "fy"}})

	if got := c.Resolve("Frisian"); got != "fy" {
		t.Errorf("Resolve(Frisian) = %q, want fy", got)
	}
	// The previous extra is gone; totality sends it to the default.
	if got := c.Resolve("Esperanto"); got != DefaultCode {
		t.Errorf("Resolve(Esperanto) after reload = %q, want default %q", got, DefaultCode)
	}
	if got := c.Resolve("English"); got != "en" {
		t.Errorf("builtin lost across reload: Resolve(English) = %q", got)
	}
}

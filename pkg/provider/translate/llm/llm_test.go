package llm

import (
	"strings"
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
)

func TestNewValidation(t *testing.T) {
	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Error("New accepted an empty provider name")
	}
	if _, err := New("openai", ""); err == nil {
		t.Error("New accepted an empty model")
	}
	if _, err := New("not-a-provider", "some-model"); err == nil {
		t.Error("New accepted an unknown provider name")
	}
}

func TestNewWithBackendValidation(t *testing.T) {
	if _, err := NewWithBackend(nil, "gpt-4o-mini"); err == nil {
		t.Error("NewWithBackend accepted a nil backend")
	}
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages("My stomach hurts", "en", "hi")
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != anyllmlib.RoleSystem {
		t.Errorf("msgs[0].Role = %q, want system", msgs[0].Role)
	}
	user := msgs[1].ContentString()
	for _, want := range []string{"Source language: en", "Target language: hi", "My stomach hurts"} {
		if !strings.Contains(user, want) {
			t.Errorf("user message %q does not contain %q", user, want)
		}
	}
}

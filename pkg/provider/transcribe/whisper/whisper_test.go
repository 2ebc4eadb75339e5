package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrWong99/linguacare/pkg/audio"
)

func writeTestWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "utterance.wav")
	wav := audio.EncodeWAV(make([]byte, 1600), 16000, 1)
	if err := os.WriteFile(path, wav, 0o600); err != nil {
		t.Fatalf("write test wav: %v", err)
	}
	return path
}

func TestNewRequiresServerURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New accepted an empty server URL")
	}
}

func TestTranscribeSubmitsMultipartForm(t *testing.T) {
	var gotLanguage, gotModel string
	var gotFileBytes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotLanguage = r.FormValue("language")
		gotModel = r.FormValue("model")
		if fhs := r.MultipartForm.File["file"]; len(fhs) == 1 {
			gotFileBytes = int(fhs[0].Size)
		}
		w.Write([]byte(`{"text":" Mein Bauch tut weh. "}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL, WithModel("base"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := p.Transcribe(context.Background(), writeTestWAV(t), "de")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "Mein Bauch tut weh." {
		t.Errorf("text = %q, want trimmed transcript", text)
	}
	if gotLanguage != "de" {
		t.Errorf("language field = %q, want de", gotLanguage)
	}
	if gotModel != "base" {
		t.Errorf("model field = %q, want base", gotModel)
	}
	if gotFileBytes != 44+1600 {
		t.Errorf("uploaded file size = %d, want %d", gotFileBytes, 44+1600)
	}
}

func TestTranscribeEmptyTextIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"  "}`))
	}))
	defer srv.Close()

	p, _ := New(srv.URL)
	text, err := p.Transcribe(context.Background(), writeTestWAV(t), "en")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := New(srv.URL)
	if _, err := p.Transcribe(context.Background(), writeTestWAV(t), "en"); err == nil {
		t.Error("Transcribe did not surface the HTTP error")
	}
}

func TestTranscribeRejectsMissingFile(t *testing.T) {
	p, _ := New("http://localhost:1")
	if _, err := p.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), "en"); err == nil {
		t.Error("Transcribe accepted a missing audio file")
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/linguacare/internal/catalog"
	"github.com/MrWong99/linguacare/internal/conversation"
	"github.com/MrWong99/linguacare/internal/pipeline"
	"github.com/MrWong99/linguacare/pkg/audio"
	ocrmock "github.com/MrWong99/linguacare/pkg/provider/ocr/mock"
	synthmock "github.com/MrWong99/linguacare/pkg/provider/synthesize/mock"
	transcribemock "github.com/MrWong99/linguacare/pkg/provider/transcribe/mock"
	translatemock "github.com/MrWong99/linguacare/pkg/provider/translate/mock"
)

// testEnv bundles a server with its mocks for handler tests.
type testEnv struct {
	srv   *Server
	log   *conversation.Log
	stt   *transcribemock.Provider
	xlate *translatemock.Provider
	tts   *synthmock.Provider
	eng   *ocrmock.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		log:   conversation.NewLog(),
		stt:   &transcribemock.Provider{Text: "hello"},
		xlate: &translatemock.Provider{Text: "hola"},
		tts:   &synthmock.Provider{WriteFile: true},
		eng:   &ocrmock.Provider{Text: "prescription"},
	}
	cat := catalog.New()
	runner := pipeline.NewRunner(env.stt, env.xlate, cat,
		pipeline.WithSynthesizer(env.tts),
		pipeline.WithOCR(env.eng),
	)
	env.srv = New(":0", runner, env.log, cat)
	return env
}

func testWAV() []byte {
	return audio.EncodeWAV(make([]byte, 3200), 16000, 1)
}

// multipartBody builds a multipart request body with one file part and the
// given form fields.
func multipartBody(t *testing.T, fileField, fileName string, fileContent []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileContent != nil {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(fileContent); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func turnFields() map[string]string {
	return map[string]string{
		"speaker":         "Doctor",
		"source_language": "English",
		"target_language": "Spanish",
	}
}

func postTurn(t *testing.T, h http.Handler, query string, audioBytes []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "audio", "turn.wav", audioBytes, fields)
	req := httptest.NewRequest("POST", "/v1/turns"+query, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleTurn_JSON(t *testing.T) {
	env := newTestEnv(t)
	rec := postTurn(t, env.srv.Handler(), "", testWAV(), turnFields())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp turnResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Turn.SourceText != "hello" || resp.Turn.TranslatedText != "hola" {
		t.Errorf("turn = %+v", resp.Turn)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", resp.Warnings)
	}
	if env.log.Len() != 1 {
		t.Errorf("log has %d turns, want 1", env.log.Len())
	}
}

func TestHandleTurn_MissingAudioPart(t *testing.T) {
	env := newTestEnv(t)
	rec := postTurn(t, env.srv.Handler(), "", nil, turnFields())

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_input") {
		t.Errorf("body = %s, want invalid_input code", rec.Body)
	}
}

func TestHandleTurn_NoSpeech(t *testing.T) {
	env := newTestEnv(t)
	env.stt.Text = ""
	rec := postTurn(t, env.srv.Handler(), "", testWAV(), turnFields())

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no_speech_recognized") {
		t.Errorf("body = %s, want no_speech_recognized code", rec.Body)
	}
	if env.log.Len() != 0 {
		t.Error("turn appended despite unrecognized speech")
	}
}

func TestHandleTurn_DegradedTranslationWarns(t *testing.T) {
	env := newTestEnv(t)
	env.xlate.Err = io.ErrUnexpectedEOF
	rec := postTurn(t, env.srv.Handler(), "", testWAV(), turnFields())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp turnResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	found := false
	for _, warning := range resp.Warnings {
		if warning == "translation_degraded" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want translation_degraded", resp.Warnings)
	}
}

func TestHandleTurn_StreamsAudioAndRemovesArtifact(t *testing.T) {
	env := newTestEnv(t)

	// Script a concrete artifact so the path is observable after the request.
	f, err := os.CreateTemp(t.TempDir(), "reply-*.mp3")
	if err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	if _, err := f.WriteString("mp3-bytes"); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	f.Close()
	env.tts.WriteFile = false
	env.tts.Path = f.Name()

	rec := postTurn(t, env.srv.Handler(), "?audio=1", testWAV(), turnFields())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}
	if rec.Body.String() != "mp3-bytes" {
		t.Errorf("streamed body = %q, want artifact contents", rec.Body)
	}
	if _, err := os.Stat(f.Name()); !os.IsNotExist(err) {
		t.Errorf("artifact %q still exists after streaming", f.Name())
	}
}

func TestHandleTurn_AudioUnavailableConflict(t *testing.T) {
	env := newTestEnv(t)
	env.tts.WriteFile = false
	env.tts.Err = io.ErrUnexpectedEOF

	rec := postTurn(t, env.srv.Handler(), "?audio=1", testWAV(), turnFields())

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "audio_unavailable") {
		t.Errorf("body = %s, want audio_unavailable code", rec.Body)
	}
	if env.log.Len() != 1 {
		t.Error("turn should still be appended when synthesis fails")
	}
}

func TestHandleConversation(t *testing.T) {
	env := newTestEnv(t)
	env.log.Append(conversation.Turn{
		Speaker:        conversation.SpeakerDoctor,
		SourceLanguage: "English",
		TargetLanguage: "Spanish",
		SourceText:     "hello",
		TranslatedText: "hola",
	})

	req := httptest.NewRequest("GET", "/v1/conversation", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Turns []conversation.Turn `json:"turns"`
		Count int                 `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Turns) != 1 {
		t.Fatalf("count = %d, turns = %d", resp.Count, len(resp.Turns))
	}
	if resp.Turns[0].TranslatedText != "hola" {
		t.Errorf("turn = %+v", resp.Turns[0])
	}
}

func TestHandleExport_Text(t *testing.T) {
	env := newTestEnv(t)
	env.log.Append(conversation.Turn{
		Speaker:        conversation.SpeakerPatient,
		SourceLanguage: "Spanish",
		TargetLanguage: "English",
		SourceText:     "me duele la cabeza",
		TranslatedText: "my head hurts",
	})

	req := httptest.NewRequest("GET", "/v1/conversation/export?format=text", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "my head hurts") {
		t.Errorf("export does not contain the translated text: %s", rec.Body)
	}
}

func TestHandleExport_PDF(t *testing.T) {
	env := newTestEnv(t)
	env.log.Append(conversation.Turn{
		Speaker:        conversation.SpeakerDoctor,
		SourceLanguage: "English",
		TargetLanguage: "Spanish",
		SourceText:     "hello",
		TranslatedText: "hola",
	})

	req := httptest.NewRequest("GET", "/v1/conversation/export", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestHandleExport_UnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/v1/conversation/export?format=docx", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleLanguages(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/v1/languages", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Languages []languageInfo `json:"languages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Languages) == 0 {
		t.Fatal("no languages returned")
	}
	foundEnglish := false
	for _, l := range resp.Languages {
		if l.Name == "English" {
			foundEnglish = true
			if !l.Recognition {
				t.Error("English should support recognition")
			}
		}
	}
	if !foundEnglish {
		t.Error("English missing from catalog listing")
	}
}

func TestHandleDocument(t *testing.T) {
	env := newTestEnv(t)
	env.xlate.Text = "receta"

	body, contentType := multipartBody(t, "image", "doc.png", []byte("img"), map[string]string{
		"language":        "English",
		"target_language": "Spanish",
	})
	req := httptest.NewRequest("POST", "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp documentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "prescription" || resp.TranslatedText != "receta" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleDocument_ExtractionFailureIs200(t *testing.T) {
	env := newTestEnv(t)
	env.eng.Err = io.ErrUnexpectedEOF

	body, contentType := multipartBody(t, "image", "doc.png", []byte("img"), map[string]string{
		"language": "English",
	})
	req := httptest.NewRequest("POST", "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with warning", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "extraction_failed") {
		t.Errorf("body = %s, want extraction_failed warning", rec.Body)
	}
}

func TestHandleDocument_NoOCRConfigured(t *testing.T) {
	log := conversation.NewLog()
	cat := catalog.New()
	runner := pipeline.NewRunner(&transcribemock.Provider{}, &translatemock.Provider{}, cat)
	s := New(":0", runner, log, cat)

	body, contentType := multipartBody(t, "image", "doc.png", []byte("img"), map[string]string{
		"language": "English",
	})
	req := httptest.NewRequest("POST", "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	env := newTestEnv(t)
	h := env.srv.Handler()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestHandleLive_PushesAppendedTurns(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, ts.URL+"/v1/conversation/live", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	// Give the server a moment to register the subscription.
	time.Sleep(50 * time.Millisecond)

	env.log.Append(conversation.Turn{
		Speaker:        conversation.SpeakerDoctor,
		SourceLanguage: "English",
		TargetLanguage: "Spanish",
		SourceText:     "hello",
		TranslatedText: "hola",
	})

	var turn conversation.Turn
	if err := wsjson.Read(ctx, conn, &turn); err != nil {
		t.Fatalf("read: %v", err)
	}
	if turn.TranslatedText != "hola" {
		t.Errorf("turn = %+v", turn)
	}
}

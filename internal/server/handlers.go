package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/MrWong99/linguacare/internal/conversation"
	"github.com/MrWong99/linguacare/internal/observe"
	"github.com/MrWong99/linguacare/internal/pipeline"
)

// apiError is the machine-readable error body returned by all handlers.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// turnResponse is the JSON body for a processed turn.
type turnResponse struct {
	Turn     conversation.Turn `json:"turn"`
	Warnings []string          `json:"warnings,omitempty"`
}

// documentResponse is the JSON body for a processed document.
type documentResponse struct {
	Text           string   `json:"text"`
	TranslatedText string   `json:"translated_text"`
	Warnings       []string `json:"warnings,omitempty"`
}

// languageInfo describes one catalog entry for clients.
type languageInfo struct {
	Name        string `json:"name"`
	Recognition bool   `json:"recognition"`
}

// handleTurn accepts a multipart upload with an `audio` WAV part plus
// `speaker`, `source_language`, and `target_language` fields. With `?audio=1`
// the synthesized reply is streamed back as MP3; otherwise the appended turn
// is returned as JSON.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	audioBytes, ok := readUpload(w, r, "audio")
	if !ok {
		return
	}

	req := pipeline.Request{
		Speaker:        conversation.Speaker(r.FormValue("speaker")),
		SourceLanguage: r.FormValue("source_language"),
		TargetLanguage: r.FormValue("target_language"),
		Audio:          audioBytes,
	}

	res, err := s.runner.Run(ctx, req, s.log)
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	case errors.Is(err, pipeline.ErrNoSpeechRecognized):
		writeError(w, http.StatusBadRequest, "no_speech_recognized", "the recording contained no recognizable speech")
		return
	case err != nil:
		observe.Logger(ctx).Error("turn processing failed", "error", err)
		writeError(w, http.StatusBadGateway, "pipeline_error", "turn could not be processed")
		return
	}

	// The artifact is ours once the pipeline hands it over.
	if res.AudioPath != "" {
		defer os.Remove(res.AudioPath)
	}

	if r.URL.Query().Get("audio") == "1" {
		if res.AudioPath == "" {
			writeError(w, http.StatusConflict, "audio_unavailable", "no spoken reply could be produced for this turn")
			return
		}
		streamFile(w, r, res.AudioPath, "audio/mpeg")
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		Turn:     res.Turn,
		Warnings: turnWarnings(res),
	})
}

// handleConversation renders the full conversation log as JSON.
func (s *Server) handleConversation(w http.ResponseWriter, _ *http.Request) {
	turns := s.log.Turns()
	writeJSON(w, http.StatusOK, map[string]any{
		"turns": turns,
		"count": len(turns),
	})
}

// handleExport downloads the conversation transcript. The default is PDF;
// `?format=text` selects the plain-text rendering.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
		filename    string
	)

	switch r.URL.Query().Get("format") {
	case "", "pdf":
		err = s.log.ExportPDF(&buf)
		contentType = "application/pdf"
		filename = "conversation.pdf"
	case "text":
		err = s.log.ExportText(&buf)
		contentType = "text/plain; charset=utf-8"
		filename = "conversation.txt"
	default:
		writeError(w, http.StatusBadRequest, "invalid_input", "format must be pdf or text")
		return
	}
	if err != nil {
		observe.Logger(r.Context()).Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export_failed", "transcript could not be rendered")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleDocument accepts a multipart upload with an `image` part plus a
// `language` field naming the document's language and an optional
// `target_language` (default English). Extraction failure yields an empty
// text body with a warning rather than an error status.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	imageBytes, ok := readUpload(w, r, "image")
	if !ok {
		return
	}

	target := r.FormValue("target_language")
	if target == "" {
		target = "English"
	}

	res, err := s.runner.Document(ctx, pipeline.DocumentRequest{
		Image:          imageBytes,
		SourceLanguage: r.FormValue("language"),
		TargetLanguage: target,
	})
	switch {
	case errors.Is(err, pipeline.ErrOCRUnavailable):
		writeError(w, http.StatusServiceUnavailable, "ocr_unavailable", "document extraction is not configured")
		return
	case errors.Is(err, pipeline.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	case err != nil:
		observe.Logger(ctx).Error("document processing failed", "error", err)
		writeError(w, http.StatusBadGateway, "pipeline_error", "document could not be processed")
		return
	}

	var warnings []string
	if res.ExtractionFailed {
		warnings = append(warnings, "extraction_failed")
	}
	if res.TranslationDegraded {
		warnings = append(warnings, "translation_degraded")
	}
	writeJSON(w, http.StatusOK, documentResponse{
		Text:           res.ExtractedText,
		TranslatedText: res.TranslatedText,
		Warnings:       warnings,
	})
}

// handleLanguages lists the catalog with per-language recognition support.
func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	names := s.catalog.Names()
	langs := make([]languageInfo, 0, len(names))
	for _, name := range names {
		langs = append(langs, languageInfo{
			Name:        name,
			Recognition: s.catalog.SupportsRecognition(name),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": langs})
}

// turnWarnings maps result degradation flags to response warning codes.
func turnWarnings(res pipeline.Result) []string {
	var warnings []string
	if res.TranslationDegraded {
		warnings = append(warnings, "translation_degraded")
	}
	if res.AudioUnavailable {
		warnings = append(warnings, "audio_unavailable")
	}
	return warnings
}

// readUpload extracts a single multipart file part, writing an error response
// and returning ok=false when the part is missing or unreadable.
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	file, _, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "multipart field "+field+" is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "could not read uploaded "+field)
		return nil, false
	}
	return data, true
}

// streamFile serves the file at path and relies on the caller to remove it.
func streamFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		observe.Logger(r.Context()).Error("audio artifact vanished", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "audio_unavailable", "the spoken reply could not be read")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]apiError{"error": {Code: code, Message: message}})
}

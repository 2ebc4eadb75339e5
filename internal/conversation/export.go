package conversation

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// ExportText writes the whole conversation to w as a plain-text report: every
// turn in insertion order with speaker, language pair, spoken text, and
// translated text. Output is deterministic for identical log content.
func (l *Log) ExportText(w io.Writer) error {
	turns := l.Turns()

	if _, err := fmt.Fprintf(w, "Doctor–Patient Conversation (%d turns)\n\n", len(turns)); err != nil {
		return err
	}
	for i, t := range turns {
		_, err := fmt.Fprintf(w, "%d. %s · %s → %s · %s\n   Said:       %s\n   Translated: %s\n\n",
			i+1, t.Speaker, t.SourceLanguage, t.TargetLanguage,
			t.CreatedAt.UTC().Format("15:04:05"),
			t.SourceText, t.TranslatedText,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportPDF writes the conversation to w as a PDF document. Document metadata
// dates are pinned so that identical log content produces identical bytes —
// exporting twice without an intervening append yields the same document.
func (l *Log) ExportPDF(w io.Writer) error {
	turns := l.Turns()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetModificationDate(time.Unix(0, 0).UTC())
	pdf.SetTitle("Doctor–Patient Conversation", true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Doctor-Patient Conversation"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d turns", len(turns)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for i, t := range turns {
		pdf.SetFont("Helvetica", "B", 11)
		header := fmt.Sprintf("%d. %s  ·  %s -> %s  ·  %s",
			i+1, t.Speaker, t.SourceLanguage, t.TargetLanguage,
			t.CreatedAt.UTC().Format("15:04:05"))
		pdf.MultiCell(0, 6, tr(header), "", "L", false)

		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr("Said: "+t.SourceText), "", "L", false)
		pdf.MultiCell(0, 6, tr("Translated: "+t.TranslatedText), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("conversation: write pdf: %w", err)
	}
	return nil
}

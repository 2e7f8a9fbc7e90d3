// Package textextract converts uploaded résumé files to plain text. PDF,
// DOCX and plain text are supported; the format is detected from content,
// with the file name extension as a tie breaker.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"referralflow/pkg/serrors"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// ErrExtractText marks files that could not be converted to text.
var ErrExtractText = serrors.NewKind("TEXT_EXTRACTION")

// Format is a supported input format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

// Detect returns the format of data. filename is only consulted when the
// content alone is ambiguous.
func Detect(data []byte, filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return FormatPDF, nil
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return FormatDOCX, nil
	case mt.Is("application/zip") && ext == ".docx":
		return FormatDOCX, nil
	case strings.HasPrefix(mt.String(), "text/"):
		return FormatText, nil
	case len(data) > 0 && utf8.Valid(data) && (ext == ".txt" || ext == ".md" || ext == ""):
		return FormatText, nil
	default:
		return "", serrors.With(ErrExtractText, "unsupported file type %s (%s)", mt.String(), filename)
	}
}

// Extract converts data to normalized plain text.
func Extract(data []byte, filename string) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", serrors.With(ErrExtractText, "file %q is empty", filename)
	}

	format, err := Detect(data, filename)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}
	if err != nil {
		return "", serrors.Wrap(ErrExtractText, err, "could not read %s file %q", format, filename)
	}

	text = Normalize(text)
	if text == "" {
		return "", serrors.With(ErrExtractText, "no text found in %q", filename)
	}

	return text, nil
}

// Normalize trims every line and drops blank ones.
func Normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}

	return strings.Join(out, "\n")
}

// extractPDF recovers from panics inside the PDF reader, which happen on
// damaged files.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("damaged pdf: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return string(b), nil
}

// extractDOCX reads word/document.xml and emits the text runs, one line per
// paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f

			break
		}
	}
	if doc == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	var (
		sb     strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

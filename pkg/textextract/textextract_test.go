package textextract_test

import (
	"archive/zip"
	"bytes"
	"referralflow/pkg/textextract"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestExtract_PlainText(t *testing.T) {
	got, err := textextract.Extract([]byte("  Jane Doe \r\n\r\n Python, React  \n"), "resume.txt")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe\nPython, React", got)
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDOCX(t,
		`<w:p><w:r><w:t>Jane</w:t></w:r><w:r><w:t xml:space="preserve"> Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Golang</w:t><w:tab/><w:t>Kubernetes</w:t></w:r></w:p>`)

	format, err := textextract.Detect(data, "cv.docx")
	require.NoError(t, err)
	require.Equal(t, textextract.FormatDOCX, format)

	got, err := textextract.Extract(data, "cv.docx")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe\nGolang\tKubernetes", got)
}

func TestExtract_Errors(t *testing.T) {
	_, err := textextract.Extract(nil, "empty.txt")
	require.ErrorIs(t, err, textextract.ErrExtractText)

	_, err = textextract.Extract([]byte("   \n  "), "blank.txt")
	require.ErrorIs(t, err, textextract.ErrExtractText)

	_, err = textextract.Extract([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d}, "photo.png")
	require.ErrorIs(t, err, textextract.ErrExtractText)

	_, err = textextract.Extract([]byte("%PDF-1.4\nthis is not really a pdf"), "broken.pdf")
	require.ErrorIs(t, err, textextract.ErrExtractText)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "a\nb", textextract.Normalize("\n  a  \n\n\t\nb\n"))
	require.Equal(t, "", textextract.Normalize(" \n "))
}

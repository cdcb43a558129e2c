package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_PlainText(t *testing.T) {
	engine := NewEngine()

	res := engine.ExtractText(Document{
		Data:      []byte("Senior Engineer\n\n• Built distributed systems\n• Led migrations\n"),
		MediaType: "text/plain",
		Filename:  "resume.txt",
	})

	require.True(t, res.OK())
	assert.Contains(t, res.Text, "Built distributed systems")
	assert.Contains(t, res.Text, "•", "bullet glyphs must survive cleanup")
}

func TestExtractText_TxtExtensionWithoutMediaType(t *testing.T) {
	engine := NewEngine()

	res := engine.ExtractText(Document{
		Data:     []byte("plain resume content here"),
		Filename: "resume.TXT",
	})

	require.True(t, res.OK())
	assert.Equal(t, "plain resume content here", res.Text)
}

func TestExtractText_UnsupportedType(t *testing.T) {
	engine := NewEngine()

	res := engine.ExtractText(Document{
		Data:      []byte("GIF89a..."),
		MediaType: "image/gif",
		Filename:  "photo.gif",
	})

	require.False(t, res.OK())
	assert.Equal(t, ReasonUnsupportedType, res.Failure.Reason)
	assert.Contains(t, res.Failure.Detail, "Unsupported file type")
}

func TestExtractText_EmptyPlainText(t *testing.T) {
	engine := NewEngine()

	res := engine.ExtractText(Document{
		Data:      []byte("   \n\t  "),
		MediaType: "text/plain",
		Filename:  "empty.txt",
	})

	require.False(t, res.OK())
	assert.Equal(t, ReasonEmptyContent, res.Failure.Reason)
}

func TestExtractText_PDFBytesBehindTxtName(t *testing.T) {
	engine := NewEngine()

	res := engine.ExtractText(Document{
		Data:      []byte("%PDF-1.7\nbinary soup follows"),
		MediaType: "text/plain",
		Filename:  "sneaky.txt",
	})

	require.False(t, res.OK())
	assert.Equal(t, ReasonBinaryOrScanned, res.Failure.Reason)
	assert.Contains(t, res.Failure.Detail, "binary file")
}

func TestExtractText_ControlBytesBehindTxtName(t *testing.T) {
	engine := NewEngine()

	res := engine.ExtractText(Document{
		Data:      []byte("ok\x00\x01\x02 more"),
		MediaType: "text/plain",
		Filename:  "garbage.txt",
	})

	require.False(t, res.OK())
	assert.Equal(t, ReasonBinaryOrScanned, res.Failure.Reason)
}

func TestExtractText_GarbagePDF(t *testing.T) {
	engine := NewEngine()

	res := engine.ExtractText(Document{
		Data:      []byte("not a pdf at all"),
		MediaType: "application/pdf",
		Filename:  "broken.pdf",
	})

	require.False(t, res.OK())
	assert.Equal(t, ReasonParseError, res.Failure.Reason)
	assert.Contains(t, res.Failure.Detail, "Error extracting")
}

func TestCleanExtractedText_StripsPDFTokens(t *testing.T) {
	raw := "5 0 obj\nReal resume line one\nstream\nxÙC¼¿\nendstream\nendobj\n<< /Type /Page >>\nReal resume line two"

	cleaned := cleanExtractedText(raw)

	assert.NotContains(t, cleaned, "obj")
	assert.NotContains(t, cleaned, "stream")
	assert.NotContains(t, cleaned, "<<")
	assert.Contains(t, cleaned, "Real resume line one")
	assert.Contains(t, cleaned, "Real resume line two")
}

func TestCleanExtractedText_CollapsesWhitespace(t *testing.T) {
	raw := "word1    word2\t\tword3\n\n\n\n\nword4"

	cleaned := cleanExtractedText(raw)

	assert.Equal(t, "word1 word2 word3\n\nword4", cleaned)
}

func TestCleanExtractedText_PreservesLinesForBulletParsing(t *testing.T) {
	raw := "• bullet one text\n• bullet two text"

	cleaned := cleanExtractedText(raw)

	assert.Len(t, strings.Split(cleaned, "\n"), 2)
}

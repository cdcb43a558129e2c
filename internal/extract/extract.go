package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz" // Lightweight PDF renderer
)

const (
	// MaxPages caps how many PDF pages are parsed, for cost control.
	MaxPages = 50

	// MinTextLength is the minimum cleaned-text length below which a PDF is
	// treated as scanned/image-based.
	MinTextLength = 100

	// binarySniffLen is how many leading characters of a .txt upload are
	// inspected for non-printable bytes.
	binarySniffLen = 200
)

// Document is an uploaded file handed to the extraction engine.
type Document struct {
	Data      []byte
	MediaType string
	Filename  string
}

// FailureReason categorizes extraction failures. Callers branch on these, so
// the set and the accompanying Detail texts are part of the contract.
type FailureReason string

const (
	ReasonUnsupportedType FailureReason = "unsupported_type"
	ReasonBinaryOrScanned FailureReason = "binary_or_scanned"
	ReasonEmptyContent    FailureReason = "empty_content"
	ReasonParseError      FailureReason = "parse_error"
)

// Failure describes why extraction did not produce text. Detail is the
// user-facing message.
type Failure struct {
	Reason FailureReason `json:"reason"`
	Detail string        `json:"detail"`
}

// Result is the outcome of extracting one document: either Text is set, or
// Failure is non-nil. Failures are data, not errors, so the caller can branch
// on Reason without unwrapping.
type Result struct {
	Text    string   `json:"text,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// OK reports whether extraction succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

func failure(reason FailureReason, detail string) Result {
	return Result{Failure: &Failure{Reason: reason, Detail: detail}}
}

// Engine converts uploaded documents into normalized plain text. It holds no
// mutable state and is safe for concurrent use; construct once and inject.
type Engine struct {
	maxPages int
}

// NewEngine creates an extraction engine with the default page cap.
func NewEngine() *Engine {
	return &Engine{maxPages: MaxPages}
}

// ExtractText dispatches on the document's declared media type and returns
// normalized text or a categorized failure.
func (e *Engine) ExtractText(doc Document) Result {
	switch {
	case doc.MediaType == "application/pdf":
		return e.extractPDF(doc.Data)
	case doc.MediaType == "text/plain",
		strings.EqualFold(filepath.Ext(doc.Filename), ".txt"):
		return e.extractPlainText(doc.Data)
	default:
		return failure(ReasonUnsupportedType, fmt.Sprintf(
			"Unsupported file type %q. Please upload a PDF or plain text (.txt) file.",
			doc.MediaType))
	}
}

// extractPDF parses the bytes as a paginated document and joins per-page text.
// A single bad page never aborts the document: a placeholder marker is
// inserted and parsing continues.
func (e *Engine) extractPDF(data []byte) Result {
	pdf, err := fitz.NewFromMemory(data)
	if err != nil {
		return failure(ReasonParseError,
			fmt.Sprintf("Error extracting text from PDF: %v", err))
	}
	defer pdf.Close()

	pageCount := pdf.NumPage()
	if pageCount > e.maxPages {
		pageCount = e.maxPages
	}

	pages := make([]string, 0, pageCount)
	anyPageContent := false
	for i := 0; i < pageCount; i++ {
		text, err := pdf.Text(i)
		if err != nil {
			pages = append(pages, fmt.Sprintf("[page %d unreadable]", i+1))
			continue
		}
		if strings.TrimSpace(text) != "" {
			anyPageContent = true
		}
		pages = append(pages, collapseSpaces(text))
	}

	cleaned := cleanExtractedText(strings.Join(pages, "\n\n"))

	// Short output or no page content means the PDF is image-only.
	if len(cleaned) < MinTextLength || !anyPageContent {
		return failure(ReasonBinaryOrScanned,
			"This appears to be a scanned document or image-based PDF. "+
				"Text extraction is not possible and OCR is not supported; "+
				"please upload a text-based PDF or a plain text file.")
	}

	return Result{Text: cleaned}
}

// extractPlainText decodes the bytes as text, rejecting binary content
// disguised behind a .txt name.
func (e *Engine) extractPlainText(data []byte) Result {
	text := string(data)

	if strings.TrimSpace(text) == "" {
		return failure(ReasonEmptyContent, "The document contains no readable text.")
	}

	if looksBinary(text) {
		return failure(ReasonBinaryOrScanned,
			"This appears to be a binary file rather than plain text. "+
				"If it is a scanned document or image-based PDF, please convert "+
				"it to a text-based format first.")
	}

	return Result{Text: cleanExtractedText(text)}
}

// looksBinary detects PDF structural markers or non-printable bytes near the
// start of the content.
func looksBinary(text string) bool {
	if strings.HasPrefix(text, "%PDF-") {
		return true
	}
	sniff := text
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	for _, r := range sniff {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r < 0x20 || r == 0x7f || r == 0xfffd {
			return true
		}
	}
	return false
}

var (
	pdfStreamRe  = regexp.MustCompile(`(?s)\bstream\b.*?\bendstream\b`)
	pdfObjRe     = regexp.MustCompile(`\b\d+\s+\d+\s+obj\b|\bendobj\b`)
	pdfDictRe    = regexp.MustCompile(`<<[^>]*>>`)
	nonPrintRe   = regexp.MustCompile(`[^\x20-\x7e\n\t\r\x{00a0}-\x{024f}\x{2010}-\x{2027}\x{2030}-\x{205e}\x{2190}-\x{21ff}\x{25a0}-\x{27bf}]`)
	hSpaceRunRe  = regexp.MustCompile(`[ \t\r\x{00a0}]+`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// cleanExtractedText strips document-syntax tokens and control bytes, then
// collapses whitespace runs. Line structure is preserved because downstream
// heuristics segment on lines.
func cleanExtractedText(text string) string {
	text = pdfStreamRe.ReplaceAllString(text, " ")
	text = pdfObjRe.ReplaceAllString(text, " ")
	text = pdfDictRe.ReplaceAllString(text, " ")
	text = nonPrintRe.ReplaceAllString(text, "")
	text = hSpaceRunRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// collapseSpaces joins positioned text runs inside a single page with single
// spaces, keeping line breaks.
func collapseSpaces(text string) string {
	return strings.TrimSpace(hSpaceRunRe.ReplaceAllString(text, " "))
}

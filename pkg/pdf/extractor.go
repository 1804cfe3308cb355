// Package pdf turns uploaded pitch-deck PDFs into normalized plain text.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
)

// footerPattern matches "-- N of M --" page-footer artifacts that PDF
// exporters inject between pages.
var footerPattern = regexp.MustCompile(`--\s*\d+\s*of\s*\d+\s*--`)

// blankRunPattern collapses runs of three or more newlines.
var blankRunPattern = regexp.MustCompile(`\n{3,}`)

// Extractor extracts and normalizes text from PDF bytes.
type Extractor struct {
	minChars int
	logger   *zap.Logger
}

// NewExtractor creates an extractor that rejects documents yielding fewer
// than minChars characters of normalized text.
func NewExtractor(minChars int, logger *zap.Logger) *Extractor {
	return &Extractor{
		minChars: minChars,
		logger:   logger.Named("pdf"),
	}
}

// ExtractText parses the PDF and returns its normalized plain text.
// Returns apperrors.ErrInvalidDocument when the bytes are not a parseable
// PDF, and apperrors.ErrInsufficientContent when the document carries less
// readable text than the configured minimum (image-only decks, mostly).
func (e *Extractor) ExtractText(data []byte) (text string, err error) {
	// The parser panics on some malformed files instead of returning an
	// error; treat those the same as a parse failure.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("PDF parser panicked", zap.Any("panic", r))
			text = ""
			err = fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}

	text = Normalize(buf.String())

	e.logger.Debug("PDF text extracted",
		zap.Int("pages", reader.NumPage()),
		zap.Int("chars", len(text)))

	if len(text) < e.minChars {
		return "", fmt.Errorf("%w: got %d chars, need %d", apperrors.ErrInsufficientContent, len(text), e.minChars)
	}

	return text, nil
}

// Normalize strips page-footer artifacts, collapses repeated blank lines,
// and trims surrounding whitespace.
func Normalize(text string) string {
	text = footerPattern.ReplaceAllString(text, "")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

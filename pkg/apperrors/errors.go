package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Upload-time failures, surfaced to the caller as HTTP 400 before any
	// deck row exists.
	ErrInvalidDocument     = errors.New("file is not a parseable PDF")
	ErrInsufficientContent = errors.New("not enough extractable text in PDF")

	// Pipeline-time failures. Never surfaced over HTTP; they terminate an
	// analysis with deck status "failed".
	ErrExtractionUnavailable  = errors.New("assumption extraction service unavailable")
	ErrEmptyModelResponse     = errors.New("model returned no content")
	ErrMalformedModelResponse = errors.New("model returned invalid JSON")
	ErrNoAssumptionsExtracted = errors.New("no assumptions could be extracted from this deck")
)

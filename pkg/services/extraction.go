// Package services contains the business logic for deck analysis: text
// extraction orchestration, LLM assumption extraction, and the deck lifecycle.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
	"github.com/pitchlens/pitchlens-engine/pkg/jsonutil"
	"github.com/pitchlens/pitchlens-engine/pkg/llm"
	"github.com/pitchlens/pitchlens-engine/pkg/prompts"
	"github.com/pitchlens/pitchlens-engine/pkg/retry"
)

// ExtractedAssumption is one raw assumption record as the model produced it,
// before enum sanitation. Scalar fields tolerate the model emitting numbers
// or booleans where strings were asked for.
type ExtractedAssumption struct {
	Text           string
	Category       string
	RiskLevel      string
	SourceSlide    string
	StressQuestion string
	Reasoning      string
}

// ExtractionService turns pitch deck text into raw assumption records via
// the completion endpoint. It handles retries, JSON recovery, and response
// shape variance; it does not sanitize enum values or touch storage.
type ExtractionService interface {
	// ExtractAssumptions sends the deck text to the model and parses the
	// response into raw records. An empty slice is a valid outcome.
	ExtractAssumptions(ctx context.Context, deckText string) ([]ExtractedAssumption, error)
}

type extractionService struct {
	client   llm.CompletionClient
	strict   bool
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewExtractionService creates a new extraction service. When strict is set,
// only the named "assumptions" field or a bare top-level array are accepted
// as the record container.
func NewExtractionService(client llm.CompletionClient, strict bool, logger *zap.Logger) ExtractionService {
	return &extractionService{
		client:   client,
		strict:   strict,
		retryCfg: retry.ExtractionConfig(),
		logger:   logger.Named("extraction"),
	}
}

var _ ExtractionService = (*extractionService)(nil)

func (s *extractionService) ExtractAssumptions(ctx context.Context, deckText string) ([]ExtractedAssumption, error) {
	systemPrompt := prompts.AssumptionExtractionSystemPrompt()
	userPrompt := prompts.BuildAssumptionExtractionPrompt(deckText)

	start := time.Now()
	result, err := retry.DoWithResult(ctx, s.retryCfg, func() (*llm.CompletionResult, error) {
		return s.client.GenerateJSON(ctx, systemPrompt, userPrompt)
	})
	if err != nil {
		s.logger.Warn("Extraction attempts exhausted",
			zap.String("model", s.client.Model()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExtractionUnavailable, err)
	}

	content := result.Content
	if content == "" {
		return nil, apperrors.ErrEmptyModelResponse
	}
	if result.Truncated() {
		s.logger.Warn("Model response truncated at output token cap",
			zap.String("model", s.client.Model()),
			zap.Int("completion_tokens", result.CompletionTokens))
	}

	records, err := s.parseAssumptions(content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Extracted assumptions",
		zap.String("model", s.client.Model()),
		zap.Int("count", len(records)),
		zap.Int("total_tokens", result.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	return records, nil
}

// rawAssumption mirrors the schema the prompt asks for, with every scalar as
// RawMessage so type drift doesn't abort the whole parse.
type rawAssumption struct {
	Text           json.RawMessage `json:"text"`
	Category       json.RawMessage `json:"category"`
	RiskLevel      json.RawMessage `json:"riskLevel"`
	SourceSlide    json.RawMessage `json:"sourceSlide"`
	StressQuestion json.RawMessage `json:"stressQuestion"`
	Reasoning      json.RawMessage `json:"reasoning"`
}

// parseAssumptions locates the record container in the model response and
// decodes it. Accepted shapes, in order: an object with an "assumptions"
// field, a bare top-level array, and (unless strict) the first array-valued
// field of the object.
func (s *extractionService) parseAssumptions(content string) ([]ExtractedAssumption, error) {
	jsonStr, err := llm.ExtractJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (content: %s)", apperrors.ErrMalformedModelResponse, err, truncateForLog(content, 200))
	}

	var container json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &container); err != nil {
		return nil, fmt.Errorf("%w: %v (content: %s)", apperrors.ErrMalformedModelResponse, err, truncateForLog(content, 200))
	}

	raws, err := s.locateRecords(container)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (content: %s)", apperrors.ErrMalformedModelResponse, err, truncateForLog(content, 200))
	}

	records := make([]ExtractedAssumption, 0, len(raws))
	for _, r := range raws {
		records = append(records, ExtractedAssumption{
			Text:           jsonutil.FlexibleStringTrimmed(r.Text),
			Category:       jsonutil.FlexibleStringTrimmed(r.Category),
			RiskLevel:      jsonutil.FlexibleStringTrimmed(r.RiskLevel),
			SourceSlide:    jsonutil.FlexibleStringTrimmed(r.SourceSlide),
			StressQuestion: jsonutil.FlexibleStringTrimmed(r.StressQuestion),
			Reasoning:      jsonutil.FlexibleStringTrimmed(r.Reasoning),
		})
	}

	return records, nil
}

func (s *extractionService) locateRecords(container json.RawMessage) ([]rawAssumption, error) {
	// Bare array at the top level.
	var asArray []rawAssumption
	if err := json.Unmarshal(container, &asArray); err == nil {
		return asArray, nil
	}

	fields, err := objectFields(container)
	if err != nil {
		return nil, fmt.Errorf("response is neither an object nor an array")
	}

	for _, f := range fields {
		if f.key != "assumptions" {
			continue
		}
		var records []rawAssumption
		if err := json.Unmarshal(f.value, &records); err != nil {
			return nil, fmt.Errorf("assumptions field is not an array of records: %v", err)
		}
		return records, nil
	}

	if !s.strict {
		// Models occasionally rename the container ("results", "items").
		// Take the first field, in document order, that decodes as a
		// record array.
		for _, f := range fields {
			var records []rawAssumption
			if err := json.Unmarshal(f.value, &records); err == nil {
				s.logger.Debug("Using fallback record container", zap.String("field", f.key))
				return records, nil
			}
		}
	}

	// An object with no usable array is a valid "nothing found" response.
	return []rawAssumption{}, nil
}

type objectField struct {
	key   string
	value json.RawMessage
}

// objectFields decodes a JSON object preserving field order, which a plain
// map unmarshal would lose.
func objectFields(raw json.RawMessage) ([]objectField, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	var fields []objectField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key token %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, objectField{key: key, value: value})
	}

	return fields, nil
}

// truncateForLog shortens model output for inclusion in errors and logs.
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

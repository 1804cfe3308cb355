package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
	"github.com/pitchlens/pitchlens-engine/pkg/models"
	"github.com/pitchlens/pitchlens-engine/pkg/repositories"
)

// slideMarkerPattern matches slide/page headings in extracted deck text,
// used only to estimate the slide count.
var slideMarkerPattern = regexp.MustCompile(`(?i)(?:slide|page)\s*\d`)

// charsPerSlide is the fallback density estimate when the text carries no
// slide markers.
const charsPerSlide = 500

// emptyRetryDelay is the pause before the single re-extraction attempt when
// the model returned zero assumptions.
const emptyRetryDelay = time.Second

// AnalysisService runs the full analysis pipeline for an uploaded deck:
// status transitions, assumption extraction, sanitation, and persistence.
type AnalysisService interface {
	// Analyze processes the deck's text and persists the results. The deck
	// ends in status complete or failed; errors are also returned so callers
	// running inline (tests) can observe them.
	Analyze(ctx context.Context, deckID uuid.UUID, deckText string) error
}

type analysisService struct {
	deckRepo       repositories.DeckRepository
	assumptionRepo repositories.AssumptionRepository
	extraction     ExtractionService
	retryDelay     time.Duration
	logger         *zap.Logger
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	deckRepo repositories.DeckRepository,
	assumptionRepo repositories.AssumptionRepository,
	extraction ExtractionService,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		deckRepo:       deckRepo,
		assumptionRepo: assumptionRepo,
		extraction:     extraction,
		retryDelay:     emptyRetryDelay,
		logger:         logger.Named("analysis"),
	}
}

var _ AnalysisService = (*analysisService)(nil)

func (s *analysisService) Analyze(ctx context.Context, deckID uuid.UUID, deckText string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
			s.logger.Error("Analysis panicked", zap.String("deck_id", deckID.String()), zap.Any("panic", r))
			s.markFailed(ctx, deckID)
		}
	}()

	if err := s.deckRepo.UpdateStatus(ctx, deckID, models.DeckStatusAnalyzing, nil); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Deck deleted before analysis started", zap.String("deck_id", deckID.String()))
			return nil
		}
		s.markFailed(ctx, deckID)
		return fmt.Errorf("failed to mark deck analyzing: %w", err)
	}

	slideCount := EstimateSlideCount(deckText)
	s.logger.Info("Starting analysis",
		zap.String("deck_id", deckID.String()),
		zap.Int("text_chars", len(deckText)),
		zap.Int("estimated_slides", slideCount))

	records, err := s.extraction.ExtractAssumptions(ctx, deckText)
	if err != nil {
		s.markFailed(ctx, deckID)
		return err
	}

	if len(records) == 0 {
		s.logger.Warn("First extraction returned no assumptions, retrying once",
			zap.String("deck_id", deckID.String()))
		select {
		case <-time.After(s.retryDelay):
		case <-ctx.Done():
			s.markFailed(ctx, deckID)
			return ctx.Err()
		}
		records, err = s.extraction.ExtractAssumptions(ctx, deckText)
		if err != nil {
			s.markFailed(ctx, deckID)
			return err
		}
	}

	if len(records) == 0 {
		s.markFailed(ctx, deckID)
		return fmt.Errorf("%w for deck %s", apperrors.ErrNoAssumptionsExtracted, deckID)
	}

	assumptions := sanitizeAssumptions(deckID, records)
	if err := s.assumptionRepo.CreateBatch(ctx, assumptions); err != nil {
		s.markFailed(ctx, deckID)
		return fmt.Errorf("failed to persist assumptions: %w", err)
	}

	if err := s.deckRepo.UpdateStatus(ctx, deckID, models.DeckStatusComplete, &slideCount); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The deck was deleted mid-analysis. The cascade already removed
			// the assumptions written above; nothing left to do.
			s.logger.Warn("Deck deleted during analysis", zap.String("deck_id", deckID.String()))
			return nil
		}
		s.markFailed(ctx, deckID)
		return fmt.Errorf("failed to mark deck complete: %w", err)
	}

	s.logger.Info("Analysis complete",
		zap.String("deck_id", deckID.String()),
		zap.Int("assumptions", len(assumptions)),
		zap.Int("slide_count", slideCount))

	return nil
}

// markFailed best-effort transitions the deck to failed. A deck deleted
// mid-analysis or already terminal is logged and dropped.
func (s *analysisService) markFailed(ctx context.Context, deckID uuid.UUID) {
	if err := s.deckRepo.UpdateStatus(ctx, deckID, models.DeckStatusFailed, nil); err != nil {
		s.logger.Warn("Could not mark deck failed",
			zap.String("deck_id", deckID.String()),
			zap.Error(err))
	}
}

// sanitizeAssumptions converts raw model records into storable assumptions.
// Unknown enum values fall back to Market/Medium, a missing source slide
// becomes General. Nothing the model produced reaches the store unchecked.
func sanitizeAssumptions(deckID uuid.UUID, records []ExtractedAssumption) []*models.Assumption {
	assumptions := make([]*models.Assumption, 0, len(records))
	for _, r := range records {
		sourceSlide := r.SourceSlide
		if sourceSlide == "" {
			sourceSlide = models.DefaultSourceSlide
		}
		assumptions = append(assumptions, &models.Assumption{
			DeckID:         deckID,
			Text:           r.Text,
			Category:       models.NormalizeCategory(r.Category),
			RiskLevel:      models.NormalizeRiskLevel(r.RiskLevel),
			SourceSlide:    sourceSlide,
			StressQuestion: r.StressQuestion,
			Reasoning:      r.Reasoning,
		})
	}
	return assumptions
}

// EstimateSlideCount guesses how many slides produced the given text. Slide
// and page markers split the text into chunks; when the text has fewer
// markers than its length suggests, a 500-characters-per-slide density
// estimate wins. Never less than 1.
func EstimateSlideCount(text string) int {
	markers := slideMarkerPattern.FindAllStringIndex(text, -1)
	chunks := len(markers) + 1
	if len(markers) > 0 && markers[0][0] == 0 {
		chunks--
	}

	estimate := (len(text) + charsPerSlide - 1) / charsPerSlide
	if chunks > estimate {
		estimate = chunks
	}
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
	"github.com/pitchlens/pitchlens-engine/pkg/models"
	"github.com/pitchlens/pitchlens-engine/pkg/repositories"
)

// analysisTimeout bounds a single background analysis, covering all LLM
// retries and database writes.
const analysisTimeout = 10 * time.Minute

// pdfContentType is the stored content type for archived originals.
const pdfContentType = "application/pdf"

// TextExtractor turns raw PDF bytes into normalized plain text. Satisfied
// by pdf.Extractor.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// ObjectArchiver stores and removes original deck files. Satisfied by
// objectstore.Store; nil means archival is disabled.
type ObjectArchiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// DeckService is the public surface of the deck pipeline: upload kicks off
// analysis in the background, the rest are reads plus delete.
type DeckService interface {
	// Upload validates the PDF, creates the deck in status analyzing, and
	// starts analysis in the background. The returned deck reflects the
	// state at creation; callers poll Get for progress.
	Upload(ctx context.Context, fileName string, data []byte) (*models.Deck, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	List(ctx context.Context) ([]*models.Deck, error)
	// Assumptions returns the extracted assumptions for a deck. An unknown
	// deck yields an empty slice.
	Assumptions(ctx context.Context, deckID uuid.UUID) ([]*models.Assumption, error)
	// OriginalURL returns a time-limited download link for the archived PDF.
	// ErrNotFound when the deck is unknown or was not archived.
	OriginalURL(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type deckService struct {
	deckRepo       repositories.DeckRepository
	assumptionRepo repositories.AssumptionRepository
	extractor      TextExtractor
	analysis       AnalysisService
	archiver       ObjectArchiver
	launch         func(fn func())
	logger         *zap.Logger
}

// NewDeckService creates a new deck service. archiver may be nil, in which
// case originals are not retained after text extraction.
func NewDeckService(
	deckRepo repositories.DeckRepository,
	assumptionRepo repositories.AssumptionRepository,
	extractor TextExtractor,
	analysis AnalysisService,
	archiver ObjectArchiver,
	logger *zap.Logger,
) DeckService {
	return &deckService{
		deckRepo:       deckRepo,
		assumptionRepo: assumptionRepo,
		extractor:      extractor,
		analysis:       analysis,
		archiver:       archiver,
		launch:         func(fn func()) { go fn() },
		logger:         logger.Named("deck"),
	}
}

var _ DeckService = (*deckService)(nil)

func (s *deckService) Upload(ctx context.Context, fileName string, data []byte) (*models.Deck, error) {
	text, err := s.extractor.ExtractText(data)
	if err != nil {
		return nil, err
	}

	deck := &models.Deck{
		ID:       uuid.New(),
		Name:     deriveDeckName(fileName),
		FileName: fileName,
		Status:   models.DeckStatusAnalyzing,
	}
	if s.archiver != nil {
		deck.ObjectKey = fmt.Sprintf("decks/%s.pdf", deck.ID)
	}

	if err := s.deckRepo.Create(ctx, deck); err != nil {
		return nil, err
	}

	// Archival is best effort; analysis only needs the extracted text.
	if s.archiver != nil {
		if err := s.archiver.Put(ctx, deck.ObjectKey, data, pdfContentType); err != nil {
			s.logger.Warn("Could not archive deck original",
				zap.String("deck_id", deck.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Deck uploaded, starting analysis",
		zap.String("deck_id", deck.ID.String()),
		zap.String("file_name", fileName),
		zap.Int("text_chars", len(text)))

	// Analysis runs detached from the request: the upload response goes out
	// immediately and clients poll the deck status.
	s.launch(func() {
		analysisCtx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()
		if err := s.analysis.Analyze(analysisCtx, deck.ID, text); err != nil {
			s.logger.Error("Background analysis failed",
				zap.String("deck_id", deck.ID.String()),
				zap.Error(err))
		}
	})

	return deck, nil
}

func (s *deckService) Get(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	return s.deckRepo.Get(ctx, id)
}

func (s *deckService) List(ctx context.Context) ([]*models.Deck, error) {
	return s.deckRepo.GetAll(ctx)
}

func (s *deckService) Assumptions(ctx context.Context, deckID uuid.UUID) ([]*models.Assumption, error) {
	return s.assumptionRepo.GetByDeck(ctx, deckID)
}

func (s *deckService) OriginalURL(ctx context.Context, id uuid.UUID) (string, error) {
	deck, err := s.deckRepo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.archiver == nil || deck.ObjectKey == "" {
		return "", fmt.Errorf("%w: deck %s has no archived original", apperrors.ErrNotFound, id)
	}
	return s.archiver.PresignedURL(ctx, deck.ObjectKey)
}

func (s *deckService) Delete(ctx context.Context, id uuid.UUID) error {
	deck, err := s.deckRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.deckRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.archiver != nil && deck.ObjectKey != "" {
		if err := s.archiver.Remove(ctx, deck.ObjectKey); err != nil {
			s.logger.Warn("Could not remove archived original",
				zap.String("deck_id", id.String()),
				zap.Error(err))
		}
	}

	return nil
}

// deriveDeckName turns an uploaded file name into a display name: the .pdf
// extension goes, dashes and underscores become spaces.
func deriveDeckName(fileName string) string {
	name := fileName
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(name)
}

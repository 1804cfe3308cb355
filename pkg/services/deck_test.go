package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
	"github.com/pitchlens/pitchlens-engine/pkg/models"
)

// mockTextExtractor returns canned text instead of parsing a real PDF.
type mockTextExtractor struct {
	text string
	err  error
}

func (m *mockTextExtractor) ExtractText(data []byte) (string, error) {
	return m.text, m.err
}

// mockAnalysis records Analyze invocations.
type mockAnalysis struct {
	mu      sync.Mutex
	deckIDs []uuid.UUID
	texts   []string
	err     error
}

func (m *mockAnalysis) Analyze(ctx context.Context, deckID uuid.UUID, deckText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deckIDs = append(m.deckIDs, deckID)
	m.texts = append(m.texts, deckText)
	return m.err
}

// mockArchiver records object store calls.
type mockArchiver struct {
	putKeys    []string
	removeKeys []string
	putErr     error
}

func (m *mockArchiver) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.putKeys = append(m.putKeys, key)
	return m.putErr
}

func (m *mockArchiver) Remove(ctx context.Context, key string) error {
	m.removeKeys = append(m.removeKeys, key)
	return nil
}

func (m *mockArchiver) PresignedURL(ctx context.Context, key string) (string, error) {
	return "https://objects.local/" + key + "?sig=test", nil
}

// newDeckService wires a deck service whose background launches run inline,
// so tests observe analysis synchronously.
func newDeckService(deckRepo *mockDeckRepository, assumptionRepo *mockAssumptionRepository, extractor TextExtractor, analysis AnalysisService, archiver ObjectArchiver) DeckService {
	svc := NewDeckService(deckRepo, assumptionRepo, extractor, analysis, archiver, zap.NewNop())
	svc.(*deckService).launch = func(fn func()) { fn() }
	return svc
}

func TestUpload_CreatesDeckAndStartsAnalysis(t *testing.T) {
	deckRepo := &mockDeckRepository{}
	analysis := &mockAnalysis{}
	extractor := &mockTextExtractor{text: "Slide 1 We are building the future of lending."}
	svc := newDeckService(deckRepo, &mockAssumptionRepository{}, extractor, analysis, nil)

	deck, err := svc.Upload(context.Background(), "seed-round_deck.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "seed round deck", deck.Name)
	assert.Equal(t, "seed-round_deck.pdf", deck.FileName)
	assert.Equal(t, models.DeckStatusAnalyzing, deck.Status)
	assert.NotEqual(t, uuid.Nil, deck.ID)
	assert.Empty(t, deck.ObjectKey, "no archiver configured")

	require.Len(t, analysis.deckIDs, 1)
	assert.Equal(t, deck.ID, analysis.deckIDs[0])
	assert.Equal(t, extractor.text, analysis.texts[0])
}

func TestUpload_RejectsUnparseablePDF(t *testing.T) {
	deckRepo := &mockDeckRepository{}
	analysis := &mockAnalysis{}
	extractor := &mockTextExtractor{err: apperrors.ErrInvalidDocument}
	svc := newDeckService(deckRepo, &mockAssumptionRepository{}, extractor, analysis, nil)

	_, err := svc.Upload(context.Background(), "broken.pdf", []byte("not a pdf"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidDocument)
	assert.Empty(t, analysis.deckIDs, "no analysis without a deck")
}

func TestUpload_RejectsImageOnlyPDF(t *testing.T) {
	extractor := &mockTextExtractor{err: apperrors.ErrInsufficientContent}
	svc := newDeckService(&mockDeckRepository{}, &mockAssumptionRepository{}, extractor, &mockAnalysis{}, nil)

	_, err := svc.Upload(context.Background(), "scans.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientContent)
}

func TestUpload_ArchivesOriginal(t *testing.T) {
	archiver := &mockArchiver{}
	extractor := &mockTextExtractor{text: "enough deck text to analyze"}
	svc := newDeckService(&mockDeckRepository{}, &mockAssumptionRepository{}, extractor, &mockAnalysis{}, archiver)

	deck, err := svc.Upload(context.Background(), "deck.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "decks/"+deck.ID.String()+".pdf", deck.ObjectKey)
	require.Len(t, archiver.putKeys, 1)
	assert.Equal(t, deck.ObjectKey, archiver.putKeys[0])
}

func TestUpload_ArchivalFailureIsNotFatal(t *testing.T) {
	archiver := &mockArchiver{putErr: errors.New("bucket unreachable")}
	extractor := &mockTextExtractor{text: "enough deck text to analyze"}
	analysis := &mockAnalysis{}
	svc := newDeckService(&mockDeckRepository{}, &mockAssumptionRepository{}, extractor, analysis, archiver)

	_, err := svc.Upload(context.Background(), "deck.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Len(t, analysis.deckIDs, 1)
}

func TestDelete_RemovesArchivedOriginal(t *testing.T) {
	deckID := uuid.New()
	deckRepo := &mockDeckRepository{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
			return &models.Deck{ID: id, ObjectKey: "decks/" + id.String() + ".pdf"}, nil
		},
	}
	archiver := &mockArchiver{}
	svc := newDeckService(deckRepo, &mockAssumptionRepository{}, &mockTextExtractor{}, &mockAnalysis{}, archiver)

	require.NoError(t, svc.Delete(context.Background(), deckID))
	require.Len(t, archiver.removeKeys, 1)
	assert.Equal(t, "decks/"+deckID.String()+".pdf", archiver.removeKeys[0])
}

func TestDelete_MissingDeck(t *testing.T) {
	deckRepo := &mockDeckRepository{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
			return nil, apperrors.ErrNotFound
		},
	}
	svc := newDeckService(deckRepo, &mockAssumptionRepository{}, &mockTextExtractor{}, &mockAnalysis{}, nil)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOriginalURL(t *testing.T) {
	deckID := uuid.New()
	deckRepo := &mockDeckRepository{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
			return &models.Deck{ID: id, ObjectKey: "decks/" + id.String() + ".pdf"}, nil
		},
	}
	svc := newDeckService(deckRepo, &mockAssumptionRepository{}, &mockTextExtractor{}, &mockAnalysis{}, &mockArchiver{})

	url, err := svc.OriginalURL(context.Background(), deckID)
	require.NoError(t, err)
	assert.Contains(t, url, deckID.String())
}

func TestOriginalURL_NoArchiver(t *testing.T) {
	svc := newDeckService(&mockDeckRepository{}, &mockAssumptionRepository{}, &mockTextExtractor{}, &mockAnalysis{}, nil)

	_, err := svc.OriginalURL(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeriveDeckName(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"pitch.pdf", "pitch"},
		{"seed-round_v2.pdf", "seed round v2"},
		{"Deck.PDF", "Deck"},
		{"no_extension", "no extension"},
		{"multi-dash--name.pdf", "multi dash  name"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveDeckName(tt.fileName))
		})
	}
}

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
	"github.com/pitchlens/pitchlens-engine/pkg/models"
	"github.com/pitchlens/pitchlens-engine/pkg/testhelpers"
)

func newTestDeck(name string) *models.Deck {
	return &models.Deck{
		Name:     name,
		FileName: name + ".pdf",
		Status:   models.DeckStatusAnalyzing,
	}
}

func TestDeckRepository_CreateAndGet(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)
	ctx := context.Background()

	deck := newTestDeck("series a narrative")
	require.NoError(t, repo.Create(ctx, deck))
	require.NotEqual(t, uuid.Nil, deck.ID, "Create assigns an ID")
	require.False(t, deck.CreatedAt.IsZero(), "Create assigns a creation time")

	got, err := repo.Get(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.ID, got.ID)
	assert.Equal(t, "series a narrative", got.Name)
	assert.Equal(t, "series a narrative.pdf", got.FileName)
	assert.Equal(t, models.DeckStatusAnalyzing, got.Status)
	assert.Nil(t, got.SlideCount)
}

func TestDeckRepository_GetMissing(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeckRepository_GetAllNewestFirst(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)
	ctx := context.Background()

	first := newTestDeck("older deck")
	require.NoError(t, repo.Create(ctx, first))
	second := newTestDeck("newer deck")
	second.CreatedAt = first.CreatedAt.Add(time.Second) // strictly later
	require.NoError(t, repo.Create(ctx, second))

	decks, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(decks), 2)

	// Newest-first ordering: second must appear before first.
	var firstIdx, secondIdx int = -1, -1
	for i, d := range decks {
		switch d.ID {
		case first.ID:
			firstIdx = i
		case second.ID:
			secondIdx = i
		}
	}
	require.NotEqual(t, -1, firstIdx)
	require.NotEqual(t, -1, secondIdx)
	assert.Less(t, secondIdx, firstIdx)
}

func TestDeckRepository_UpdateStatus(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)
	ctx := context.Background()

	deck := newTestDeck("status walk")
	require.NoError(t, repo.Create(ctx, deck))

	// analyzing -> complete with slide count in the same update.
	slides := 12
	require.NoError(t, repo.UpdateStatus(ctx, deck.ID, models.DeckStatusComplete, &slides))

	got, err := repo.Get(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeckStatusComplete, got.Status)
	require.NotNil(t, got.SlideCount)
	assert.Equal(t, 12, *got.SlideCount)
}

func TestDeckRepository_UpdateStatus_IllegalTransition(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)
	ctx := context.Background()

	deck := newTestDeck("terminal deck")
	require.NoError(t, repo.Create(ctx, deck))
	require.NoError(t, repo.UpdateStatus(ctx, deck.ID, models.DeckStatusFailed, nil))

	// failed is terminal: no way back to analyzing or on to complete.
	err := repo.UpdateStatus(ctx, deck.ID, models.DeckStatusAnalyzing, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal status transition")

	err = repo.UpdateStatus(ctx, deck.ID, models.DeckStatusComplete, nil)
	require.Error(t, err)

	got, err := repo.Get(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeckStatusFailed, got.Status)
}

func TestDeckRepository_UpdateStatus_MissingDeck(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.DeckStatusFailed, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeckRepository_UpdateStatus_KeepsSlideCountWhenNil(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)
	ctx := context.Background()

	deck := newTestDeck("slide count persistence")
	require.NoError(t, repo.Create(ctx, deck))

	slides := 7
	require.NoError(t, repo.UpdateStatus(ctx, deck.ID, models.DeckStatusAnalyzing, &slides))
	require.NoError(t, repo.UpdateStatus(ctx, deck.ID, models.DeckStatusComplete, nil))

	got, err := repo.Get(ctx, deck.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SlideCount)
	assert.Equal(t, 7, *got.SlideCount)
}

func TestDeckRepository_DeleteCascades(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	deckRepo := NewDeckRepository(db.DB)
	assumptionRepo := NewAssumptionRepository(db.DB)
	ctx := context.Background()

	deck := newTestDeck("doomed deck")
	require.NoError(t, deckRepo.Create(ctx, deck))
	require.NoError(t, assumptionRepo.CreateBatch(ctx, []*models.Assumption{
		{
			DeckID:         deck.ID,
			Text:           "TAM is $50B",
			Category:       models.CategoryMarket,
			RiskLevel:      models.RiskHigh,
			SourceSlide:    "Slide 2",
			StressQuestion: "What share of that is serviceable?",
			Reasoning:      "Top-down estimate only",
		},
	}))

	require.NoError(t, deckRepo.Delete(ctx, deck.ID))

	_, err := deckRepo.Get(ctx, deck.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Assumptions of a deleted deck: empty slice, not an error.
	remaining, err := assumptionRepo.GetByDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeckRepository_DeleteMissing(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewDeckRepository(db.DB)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

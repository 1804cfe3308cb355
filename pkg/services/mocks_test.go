package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pitchlens/pitchlens-engine/pkg/models"
	"github.com/pitchlens/pitchlens-engine/pkg/repositories"
)

// mockDeckRepository is a configurable function-field mock. The zero value
// behaves as an empty store that accepts every call.
type mockDeckRepository struct {
	mu sync.Mutex

	CreateFunc       func(ctx context.Context, deck *models.Deck) error
	GetFunc          func(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	GetAllFunc       func(ctx context.Context) ([]*models.Deck, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status models.DeckStatus, slideCount *int) error
	DeleteFunc       func(ctx context.Context, id uuid.UUID) error

	StatusUpdates []statusUpdate
}

type statusUpdate struct {
	ID         uuid.UUID
	Status     models.DeckStatus
	SlideCount *int
}

var _ repositories.DeckRepository = (*mockDeckRepository)(nil)

func (m *mockDeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, deck)
	}
	if deck.ID == uuid.Nil {
		deck.ID = uuid.New()
	}
	return nil
}

func (m *mockDeckRepository) Get(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &models.Deck{ID: id, Status: models.DeckStatusAnalyzing}, nil
}

func (m *mockDeckRepository) GetAll(ctx context.Context) ([]*models.Deck, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return []*models.Deck{}, nil
}

func (m *mockDeckRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DeckStatus, slideCount *int) error {
	m.mu.Lock()
	m.StatusUpdates = append(m.StatusUpdates, statusUpdate{ID: id, Status: status, SlideCount: slideCount})
	m.mu.Unlock()
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, slideCount)
	}
	return nil
}

func (m *mockDeckRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// LastStatus returns the most recent status update, or nil.
func (m *mockDeckRepository) LastStatus() *statusUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.StatusUpdates) == 0 {
		return nil
	}
	u := m.StatusUpdates[len(m.StatusUpdates)-1]
	return &u
}

// mockAssumptionRepository records batch writes.
type mockAssumptionRepository struct {
	mu sync.Mutex

	CreateBatchFunc  func(ctx context.Context, assumptions []*models.Assumption) error
	GetByDeckFunc    func(ctx context.Context, deckID uuid.UUID) ([]*models.Assumption, error)
	DeleteByDeckFunc func(ctx context.Context, deckID uuid.UUID) error

	Created []*models.Assumption
}

var _ repositories.AssumptionRepository = (*mockAssumptionRepository)(nil)

func (m *mockAssumptionRepository) CreateBatch(ctx context.Context, assumptions []*models.Assumption) error {
	m.mu.Lock()
	m.Created = append(m.Created, assumptions...)
	m.mu.Unlock()
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, assumptions)
	}
	return nil
}

func (m *mockAssumptionRepository) GetByDeck(ctx context.Context, deckID uuid.UUID) ([]*models.Assumption, error) {
	if m.GetByDeckFunc != nil {
		return m.GetByDeckFunc(ctx, deckID)
	}
	return []*models.Assumption{}, nil
}

func (m *mockAssumptionRepository) DeleteByDeck(ctx context.Context, deckID uuid.UUID) error {
	if m.DeleteByDeckFunc != nil {
		return m.DeleteByDeckFunc(ctx, deckID)
	}
	return nil
}

// mockExtractionService returns scripted extraction results per call.
type mockExtractionService struct {
	mu sync.Mutex

	ExtractFunc func(ctx context.Context, deckText string) ([]ExtractedAssumption, error)
	Calls       int
}

var _ ExtractionService = (*mockExtractionService)(nil)

func (m *mockExtractionService) ExtractAssumptions(ctx context.Context, deckText string) ([]ExtractedAssumption, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, deckText)
	}
	return []ExtractedAssumption{}, nil
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pitchlens/pitchlens-engine/pkg/database"
	"github.com/pitchlens/pitchlens-engine/pkg/models"
)

// AssumptionRepository defines the interface for assumption data access.
// Assumptions are written once, in bulk, per successful analysis.
type AssumptionRepository interface {
	CreateBatch(ctx context.Context, assumptions []*models.Assumption) error
	GetByDeck(ctx context.Context, deckID uuid.UUID) ([]*models.Assumption, error)
	DeleteByDeck(ctx context.Context, deckID uuid.UUID) error
}

// assumptionRepository implements AssumptionRepository using PostgreSQL.
type assumptionRepository struct {
	db *database.DB
}

// NewAssumptionRepository creates a new assumption repository on the given pool.
func NewAssumptionRepository(db *database.DB) AssumptionRepository {
	return &assumptionRepository{db: db}
}

// CreateBatch inserts all assumptions in one round trip. A nil or empty
// slice is a no-op. IDs and creation times are assigned when unset.
func (r *assumptionRepository) CreateBatch(ctx context.Context, assumptions []*models.Assumption) error {
	if len(assumptions) == 0 {
		return nil
	}

	query := `
		INSERT INTO assumptions (id, deck_id, text, category, risk_level, source_slide, stress_question, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, a := range assumptions {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		batch.Queue(query,
			a.ID,
			a.DeckID,
			a.Text,
			a.Category,
			a.RiskLevel,
			a.SourceSlide,
			a.StressQuestion,
			a.Reasoning,
			a.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range assumptions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert assumptions: %w", err)
		}
	}

	return nil
}

// GetByDeck returns all assumptions for a deck. An unknown deck ID yields an
// empty slice, not an error.
func (r *assumptionRepository) GetByDeck(ctx context.Context, deckID uuid.UUID) ([]*models.Assumption, error) {
	query := `
		SELECT id, deck_id, text, category, risk_level, source_slide, stress_question, reasoning, created_at
		FROM assumptions
		WHERE deck_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assumptions: %w", err)
	}
	defer rows.Close()

	assumptions := make([]*models.Assumption, 0)
	for rows.Next() {
		var a models.Assumption
		err := rows.Scan(
			&a.ID,
			&a.DeckID,
			&a.Text,
			&a.Category,
			&a.RiskLevel,
			&a.SourceSlide,
			&a.StressQuestion,
			&a.Reasoning,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assumption: %w", err)
		}
		assumptions = append(assumptions, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assumptions: %w", err)
	}

	return assumptions, nil
}

// DeleteByDeck removes all assumptions owned by a deck.
func (r *assumptionRepository) DeleteByDeck(ctx context.Context, deckID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM assumptions WHERE deck_id = $1`, deckID); err != nil {
		return fmt.Errorf("failed to delete assumptions: %w", err)
	}
	return nil
}

// Ensure assumptionRepository implements AssumptionRepository at compile time.
var _ AssumptionRepository = (*assumptionRepository)(nil)

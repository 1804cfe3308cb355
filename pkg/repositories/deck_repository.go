// Package repositories provides PostgreSQL data access for decks and their
// extracted assumptions.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
	"github.com/pitchlens/pitchlens-engine/pkg/database"
	"github.com/pitchlens/pitchlens-engine/pkg/models"
)

// DeckRepository defines the interface for deck data access.
type DeckRepository interface {
	Create(ctx context.Context, deck *models.Deck) error
	Get(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	GetAll(ctx context.Context) ([]*models.Deck, error)
	// UpdateStatus sets the deck's status and, when slideCount is non-nil,
	// the slide count in the same statement. Illegal lifecycle transitions
	// are rejected before any write.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DeckStatus, slideCount *int) error
	// Delete removes the deck and all of its assumptions in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

// deckRepository implements DeckRepository using PostgreSQL.
type deckRepository struct {
	db *database.DB
}

// NewDeckRepository creates a new deck repository on the given pool.
func NewDeckRepository(db *database.DB) DeckRepository {
	return &deckRepository{db: db}
}

// Create inserts a new deck, assigning an ID and creation time when unset.
func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	if deck.ID == uuid.Nil {
		deck.ID = uuid.New()
	}
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = time.Now()
	}
	if deck.Status == "" {
		deck.Status = models.DeckStatusPending
	}
	if !deck.Status.IsValid() {
		return fmt.Errorf("invalid deck status %q", deck.Status)
	}

	query := `
		INSERT INTO decks (id, name, file_name, status, slide_count, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		deck.ID,
		deck.Name,
		deck.FileName,
		deck.Status,
		deck.SlideCount,
		deck.ObjectKey,
		deck.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	return nil
}

// Get retrieves a deck by ID.
func (r *deckRepository) Get(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	query := `
		SELECT id, name, file_name, status, slide_count, object_key, created_at
		FROM decks
		WHERE id = $1`

	deck, err := scanDeck(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	return deck, nil
}

// GetAll returns all decks, newest first.
func (r *deckRepository) GetAll(ctx context.Context) ([]*models.Deck, error) {
	query := `
		SELECT id, name, file_name, status, slide_count, object_key, created_at
		FROM decks
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := make([]*models.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}

	return decks, nil
}

// UpdateStatus transitions the deck to the given status, optionally setting
// the slide count in the same UPDATE. The WHERE clause re-checks the status
// read above, so a concurrent transition makes this write a no-op.
func (r *deckRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DeckStatus, slideCount *int) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid deck status %q", status)
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("illegal status transition %s -> %s for deck %s", current.Status, status, id)
	}

	query := `
		UPDATE decks
		SET status = $2, slide_count = COALESCE($3, slide_count)
		WHERE id = $1 AND status = $4`

	result, err := r.db.Exec(ctx, query, id, status, slideCount, current.Status)
	if err != nil {
		return fmt.Errorf("failed to update deck status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// The row vanished or changed state between read and write.
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a deck and its assumptions in one transaction.
func (r *deckRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM assumptions WHERE deck_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete assumptions: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

func scanDeck(row pgx.Row) (*models.Deck, error) {
	var deck models.Deck
	err := row.Scan(
		&deck.ID,
		&deck.Name,
		&deck.FileName,
		&deck.Status,
		&deck.SlideCount,
		&deck.ObjectKey,
		&deck.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// Ensure deckRepository implements DeckRepository at compile time.
var _ DeckRepository = (*deckRepository)(nil)

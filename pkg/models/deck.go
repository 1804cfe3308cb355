// Package models contains domain types for pitchlens-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DeckStatus is the analysis lifecycle state of an uploaded deck.
type DeckStatus string

const (
	DeckStatusPending   DeckStatus = "pending"
	DeckStatusAnalyzing DeckStatus = "analyzing"
	DeckStatusComplete  DeckStatus = "complete"
	DeckStatusFailed    DeckStatus = "failed"
)

// IsValid reports whether s is one of the four lifecycle states.
func (s DeckStatus) IsValid() bool {
	switch s {
	case DeckStatusPending, DeckStatusAnalyzing, DeckStatusComplete, DeckStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether s admits no further transitions. A failed deck
// is not retried; a new upload is required.
func (s DeckStatus) IsTerminal() bool {
	return s == DeckStatusComplete || s == DeckStatusFailed
}

// CanTransitionTo reports whether the transition s -> next is legal.
// The lifecycle is pending -> analyzing -> {complete | failed}. Re-asserting
// "analyzing" on an already-analyzing deck is allowed because the pipeline
// sets it unconditionally at start, before any model call.
func (s DeckStatus) CanTransitionTo(next DeckStatus) bool {
	switch s {
	case DeckStatusPending:
		return next == DeckStatusAnalyzing || next == DeckStatusFailed
	case DeckStatusAnalyzing:
		return next == DeckStatusAnalyzing || next == DeckStatusComplete || next == DeckStatusFailed
	default:
		return false
	}
}

// Deck represents one uploaded pitch-deck document and its analysis metadata.
type Deck struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	FileName   string     `json:"fileName"`
	Status     DeckStatus `json:"status"`
	SlideCount *int       `json:"slideCount,omitempty"`
	ObjectKey  string     `json:"-"` // location of the archived PDF, empty when archival is off
	CreatedAt  time.Time  `json:"createdAt"`
}

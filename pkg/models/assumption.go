package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies an assumption along the investor taxonomy.
type Category string

const (
	CategoryMarket      Category = "Market"
	CategoryCustomer    Category = "Customer"
	CategoryProduct     Category = "Product"
	CategoryCompetition Category = "Competition"
	CategoryFinancial   Category = "Financial"
	CategoryExecution   Category = "Execution"
)

// RiskLevel grades how fragile an assumption is.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// DefaultSourceSlide is used when the model cannot attribute an assumption
// to a specific slide.
const DefaultSourceSlide = "General"

// NormalizeCategory coerces a raw model-emitted category to a member of the
// taxonomy, defaulting to Market. The store must never see a raw value.
func NormalizeCategory(raw string) Category {
	switch c := Category(raw); c {
	case CategoryMarket, CategoryCustomer, CategoryProduct,
		CategoryCompetition, CategoryFinancial, CategoryExecution:
		return c
	}
	return CategoryMarket
}

// NormalizeRiskLevel coerces a raw model-emitted risk level to one of the
// three grades, defaulting to Medium.
func NormalizeRiskLevel(raw string) RiskLevel {
	switch r := RiskLevel(raw); r {
	case RiskHigh, RiskMedium, RiskLow:
		return r
	}
	return RiskMedium
}

// Assumption is one extracted strategic claim with its risk grade and the
// stress-test question an investor would ask about it. Assumptions are
// created in bulk per successful analysis and never mutated afterwards.
type Assumption struct {
	ID             uuid.UUID `json:"id"`
	DeckID         uuid.UUID `json:"deckId"`
	Text           string    `json:"text"`
	Category       Category  `json:"category"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	SourceSlide    string    `json:"sourceSlide"`
	StressQuestion string    `json:"stressQuestion"`
	Reasoning      string    `json:"reasoning"`
	CreatedAt      time.Time `json:"createdAt"`
}

package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssumptionExtractionSystemPrompt(t *testing.T) {
	p := AssumptionExtractionSystemPrompt()

	// The taxonomy and output contract are load-bearing; downstream
	// sanitation assumes the model was told exactly these values.
	for _, category := range []string{"Market", "Customer", "Product", "Competition", "Financial", "Execution"} {
		assert.Contains(t, p, category)
	}
	for _, level := range []string{"High", "Medium", "Low"} {
		assert.Contains(t, p, level)
	}
	assert.Contains(t, p, `{"assumptions": [`)
	assert.Contains(t, p, "stressQuestion")
	assert.Contains(t, p, "sourceSlide")
}

func TestBuildAssumptionExtractionPrompt(t *testing.T) {
	p := BuildAssumptionExtractionPrompt("We will capture 10% of a $50B market.")
	assert.Contains(t, p, "Analyze this pitch deck text")
	assert.Contains(t, p, "We will capture 10% of a $50B market.")
}

package domain

import "strings"

// Query keys, also used as JSON field names in the response envelopes.
const (
	QueryInsights     = "insights"
	QueryDrugSchedule = "drug_schedule"
)

// PromptSet holds the fixed prompts and output policy of one API shape.
type PromptSet struct {
	// Preamble is prepended to every query of the set.
	Preamble     string
	Insights     string
	DrugSchedule string
	MaxTokens    int

	// TrimOutput strips surrounding whitespace from completions.
	TrimOutput bool
	// ValidateWrapper requires completions to start with WrapperOpen and end with WrapperClose,
	// anything else is replaced by Fallback.
	ValidateWrapper bool
	WrapperOpen     string
	WrapperClose    string
	Fallback        string
}

// Prompt returns the full prompt text for the given query key.
func (p *PromptSet) Prompt(key string) string {
	switch key {
	case QueryInsights:
		return p.Preamble + p.Insights
	case QueryDrugSchedule:
		return p.Preamble + p.DrugSchedule
	default:
		return ""
	}
}

// Sanitize applies the set's output policy to a raw completion.
func (p *PromptSet) Sanitize(text string) string {
	if p.TrimOutput {
		text = strings.TrimSpace(text)
	}

	if !p.ValidateWrapper {
		return text
	}

	if !strings.HasPrefix(text, p.WrapperOpen) || !strings.HasSuffix(text, p.WrapperClose) {
		return p.Fallback
	}

	return text
}

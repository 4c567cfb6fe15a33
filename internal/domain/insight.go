package domain

// Insight is the pair of completions produced for one image.
type Insight struct {
	Insights     string
	DrugSchedule string
}

func NewInsight(insights, drugSchedule string) *Insight {
	return &Insight{
		Insights:     insights,
		DrugSchedule: drugSchedule,
	}
}

package ranking

// Score bucket labels surfaced in explanations and API payloads.
const (
	LabelVeryPositive = "very positive"
	LabelPositive     = "positive"
	LabelNeutral      = "neutral"
	LabelNegative     = "negative"
	LabelVeryNegative = "very negative"
)

// Label buckets a score in [0, 1] into a human-readable sentiment.
func Label(score float64) string {
	switch {
	case score >= 0.8:
		return LabelVeryPositive
	case score >= 0.6:
		return LabelPositive
	case score >= 0.4:
		return LabelNeutral
	case score >= 0.2:
		return LabelNegative
	default:
		return LabelVeryNegative
	}
}

// Factor is one labeled criterion contribution in an explanation.
type Factor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Label  string  `json:"label"`
}

// Explanation breaks one ranked result down into its weighted factors.
type Explanation struct {
	Composite float64  `json:"composite"`
	Label     string   `json:"label"`
	Factors   []Factor `json:"factors"`
}

// Explain produces the factor breakdown for a ranked result using the
// ranker's normalized weights. Factors are listed in descending weight
// order.
func (r *Ranker) Explain(ranked Ranked) Explanation {
	s, w := ranked.Scores, r.weights
	factors := []Factor{
		{Name: "semantic_similarity", Score: s.Similarity, Weight: w.Similarity},
		{Name: "user_preference", Score: s.Preference, Weight: w.Preference},
		{Name: "popularity", Score: s.Popularity, Weight: w.Popularity},
		{Name: "budget_match", Score: s.Budget, Weight: w.Budget},
		{Name: "temporal_relevance", Score: s.Temporal, Weight: w.Temporal},
		{Name: "availability", Score: s.Availability, Weight: w.Availability},
	}
	for i := range factors {
		factors[i].Label = Label(factors[i].Score)
	}
	return Explanation{
		Composite: ranked.Composite,
		Label:     ranked.Label,
		Factors:   factors,
	}
}

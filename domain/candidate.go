package domain

// CandidateItem is the read-only view of a catalog entry handed to the ranker.
type CandidateItem struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand"`
	Tags      []string  `json:"tags"`
	Colors    []string  `json:"colors"`
	PriceTier PriceTier `json:"price_tier"`
}

func (c CandidateItem) Facets() ItemFacets {
	return ItemFacets{
		Tags:      c.Tags,
		Category:  c.Category,
		Brand:     c.Brand,
		Colors:    c.Colors,
		PriceTier: c.PriceTier,
	}.Clone()
}

// ScoreBreakdown is the per-facet decomposition of an affinity score.
type ScoreBreakdown struct {
	ItemID    string  `json:"item_id"`
	Tags      float64 `json:"tags"`
	Category  float64 `json:"category"`
	Brand     float64 `json:"brand"`
	Colors    float64 `json:"colors"`
	PriceTier float64 `json:"price_tier"`
	Total     float64 `json:"total"`
}

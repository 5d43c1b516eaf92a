package personalize

import "stylShop/domain"

// Score is the linear affinity of item under p. Missing keys count as 0.
func Score(p *AffinityProfile, item domain.CandidateItem) float64 {
	return Explain(p, item).Total
}

// Explain returns the per-facet contributions that make up Score.
func Explain(p *AffinityProfile, item domain.CandidateItem) domain.ScoreBreakdown {
	b := domain.ScoreBreakdown{ItemID: item.ID}

	for _, tag := range uniqueStrings(item.Tags) {
		b.Tags += p.Weight(FacetTag, tag)
	}
	b.Category = p.Weight(FacetCategory, item.Category)
	b.Brand = p.Weight(FacetBrand, item.Brand)

	colorSum := 0.0
	for _, color := range uniqueStrings(item.Colors) {
		colorSum += p.Weight(FacetColor, color)
	}
	b.Colors = colorFactor * colorSum
	b.PriceTier = p.Weight(FacetPriceTier, string(item.PriceTier))

	b.Total = b.Tags + b.Category + b.Brand + b.Colors + b.PriceTier
	return b
}

package catalog

import "stylShop/domain"

// staticCandidates is served when the product store is slow or down, so a
// session can always start.
var staticCandidates = []domain.CandidateItem{
	{ID: "seed-1", Category: "casual", Brand: "Basics", Tags: []string{"denim", "everyday"}, Colors: []string{"blue"}, PriceTier: domain.PriceTierLow},
	{ID: "seed-2", Category: "formal", Brand: "Tailor & Co", Tags: []string{"blazer", "office"}, Colors: []string{"black"}, PriceTier: domain.PriceTierHigh},
	{ID: "seed-3", Category: "streetwear", Brand: "Curb", Tags: []string{"hoodie", "oversized"}, Colors: []string{"grey"}, PriceTier: domain.PriceTierMid},
	{ID: "seed-4", Category: "seasonal", Brand: "Northline", Tags: []string{"coat", "wool"}, Colors: []string{"camel"}, PriceTier: domain.PriceTierHigh},
	{ID: "seed-5", Category: "special", Brand: "Gala", Tags: []string{"dress", "evening"}, Colors: []string{"red"}, PriceTier: domain.PriceTierHigh},
	{ID: "seed-6", Category: "casual", Brand: "Basics", Tags: []string{"tee", "cotton"}, Colors: []string{"white"}, PriceTier: domain.PriceTierLow},
	{ID: "seed-7", Category: "formal", Brand: "Tailor & Co", Tags: []string{"shirt", "office"}, Colors: []string{"white", "blue"}, PriceTier: domain.PriceTierMid},
	{ID: "seed-8", Category: "streetwear", Brand: "Curb", Tags: []string{"sneakers"}, Colors: []string{"black", "white"}, PriceTier: domain.PriceTierMid},
	{ID: "seed-9", Category: "seasonal", Brand: "Northline", Tags: []string{"linen", "summer"}, Colors: []string{"beige"}, PriceTier: domain.PriceTierMid},
	{ID: "seed-10", Category: "special", Brand: "Gala", Tags: []string{"suit", "wedding"}, Colors: []string{"navy"}, PriceTier: domain.PriceTierHigh},
}

// fallbackCandidates returns copies of the static list, restricted to
// categories when that leaves anything.
func fallbackCandidates(categories []string) []domain.CandidateItem {
	allow := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allow[c] = struct{}{}
	}

	out := make([]domain.CandidateItem, 0, len(staticCandidates))
	for _, it := range staticCandidates {
		if _, ok := allow[it.Category]; len(allow) == 0 || ok {
			out = append(out, copyCandidate(it))
		}
	}
	if len(out) == 0 {
		for _, it := range staticCandidates {
			out = append(out, copyCandidate(it))
		}
	}
	return out
}

func copyCandidate(it domain.CandidateItem) domain.CandidateItem {
	it.Tags = append([]string(nil), it.Tags...)
	it.Colors = append([]string(nil), it.Colors...)
	return it
}

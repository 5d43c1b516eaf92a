package personalize

import (
	"time"
)

type Facet string

const (
	FacetTag       Facet = "tag"
	FacetCategory  Facet = "category"
	FacetBrand     Facet = "brand"
	FacetColor     Facet = "color"
	FacetPriceTier Facet = "priceTier"
)

var Facets = []Facet{FacetTag, FacetCategory, FacetBrand, FacetColor, FacetPriceTier}

// AffinityProfile holds one user's decayable facet weights.
// Weights are unbounded and may go negative; a missing key reads as 0.
type AffinityProfile struct {
	TagWeight       map[string]float64 `json:"tag"`
	CategoryWeight  map[string]float64 `json:"category"`
	BrandWeight     map[string]float64 `json:"brand"`
	ColorWeight     map[string]float64 `json:"color"`
	PriceTierWeight map[string]float64 `json:"priceTier"`

	// onboarding selection used as the cold-start allow-list
	SelectedCategories []string `json:"selectedCategories,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func NewAffinityProfile() *AffinityProfile {
	p := &AffinityProfile{}
	p.normalize()
	return p
}

// normalize makes every facet map non-nil, so profiles loaded from older
// records with missing facets behave like empty ones.
func (p *AffinityProfile) normalize() {
	if p.TagWeight == nil {
		p.TagWeight = map[string]float64{}
	}
	if p.CategoryWeight == nil {
		p.CategoryWeight = map[string]float64{}
	}
	if p.BrandWeight == nil {
		p.BrandWeight = map[string]float64{}
	}
	if p.ColorWeight == nil {
		p.ColorWeight = map[string]float64{}
	}
	if p.PriceTierWeight == nil {
		p.PriceTierWeight = map[string]float64{}
	}
}

func (p *AffinityProfile) weights(f Facet) map[string]float64 {
	switch f {
	case FacetTag:
		return p.TagWeight
	case FacetCategory:
		return p.CategoryWeight
	case FacetBrand:
		return p.BrandWeight
	case FacetColor:
		return p.ColorWeight
	case FacetPriceTier:
		return p.PriceTierWeight
	default:
		return nil
	}
}

// Weight reads a single weight without creating the key.
func (p *AffinityProfile) Weight(f Facet, key string) float64 {
	return p.weights(f)[key]
}

// Delta is a set of additive contributions keyed by facet and facet value.
type Delta map[Facet]map[string]float64

func (d Delta) Add(f Facet, key string, v float64) {
	if key == "" {
		return
	}
	m, ok := d[f]
	if !ok {
		m = map[string]float64{}
		d[f] = m
	}
	m[key] += v
}

func (p *AffinityProfile) Apply(d Delta) {
	p.normalize()
	for f, contrib := range d {
		w := p.weights(f)
		if w == nil {
			continue
		}
		for k, v := range contrib {
			w[k] += v
		}
	}
}

// DecayAll multiplies every weight in every facet map by factor.
func (p *AffinityProfile) DecayAll(factor float64) {
	for _, f := range Facets {
		w := p.weights(f)
		for k := range w {
			w[k] *= factor
		}
	}
}

// HasSignal reports whether any weight is non-zero.
func (p *AffinityProfile) HasSignal() bool {
	for _, f := range Facets {
		for _, v := range p.weights(f) {
			if v != 0 {
				return true
			}
		}
	}
	return false
}

// Clear drops every learned weight. Category preferences survive.
func (p *AffinityProfile) Clear() {
	p.TagWeight = map[string]float64{}
	p.CategoryWeight = map[string]float64{}
	p.BrandWeight = map[string]float64{}
	p.ColorWeight = map[string]float64{}
	p.PriceTierWeight = map[string]float64{}
}

func (p *AffinityProfile) Clone() *AffinityProfile {
	out := &AffinityProfile{
		TagWeight:       cloneWeights(p.TagWeight),
		CategoryWeight:  cloneWeights(p.CategoryWeight),
		BrandWeight:     cloneWeights(p.BrandWeight),
		ColorWeight:     cloneWeights(p.ColorWeight),
		PriceTierWeight: cloneWeights(p.PriceTierWeight),
		UpdatedAt:       p.UpdatedAt,
	}
	if p.SelectedCategories != nil {
		out.SelectedCategories = append([]string(nil), p.SelectedCategories...)
	}
	return out
}

func cloneWeights(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package personalize

import (
	"context"
	"fmt"
	"math"
	"time"

	"stylShop/domain"
)

// Recorder turns interaction events into weighted profile updates.
type Recorder struct {
	cfg Config
	now func() time.Time
}

func NewRecorder(cfg Config, now func() time.Time) Recorder {
	if now == nil {
		now = time.Now
	}
	return Recorder{cfg: cfg.withDefaults(), now: now}
}

// decay is 0.5^(age/HalfLife). Events stamped in the future count as age 0.
func (r Recorder) decay(ts time.Time) float64 {
	if ts.IsZero() {
		return 1
	}
	age := r.now().Sub(ts)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(r.cfg.HalfLife))
}

// Delta computes the facet contributions of a single event, before global decay.
func (r Recorder) Delta(ev domain.InteractionEvent) (Delta, error) {
	base, ok := EventWeight(ev.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, ev.Kind)
	}

	sign := 1.0
	tierFactor := priceTierFactor
	if ev.Kind == domain.EventDislike {
		sign = -1
		tierFactor = dislikePriceTierFactor
	}
	w := sign * base * r.decay(ev.Timestamp)

	d := Delta{}
	for _, tag := range uniqueStrings(ev.Facets.Tags) {
		d.Add(FacetTag, tag, w)
	}
	d.Add(FacetCategory, ev.Facets.Category, w)
	d.Add(FacetBrand, ev.Facets.Brand, w)
	for _, color := range uniqueStrings(ev.Facets.Colors) {
		d.Add(FacetColor, color, colorFactor*w)
	}
	if ev.Facets.PriceTier.Valid() {
		d.Add(FacetPriceTier, string(ev.Facets.PriceTier), tierFactor*w)
	}
	return d, nil
}

// Record applies ev to the store: facet updates, then the global forgetting
// pass, then persist. A persist failure is returned wrapped in ErrPersist
// and does not undo the update.
func (r Recorder) Record(ctx context.Context, store *ProfileStore, ev domain.InteractionEvent) error {
	d, err := r.Delta(ev)
	if err != nil {
		return err
	}
	stamp := r.now()
	return store.mutate(ctx, func(p *AffinityProfile) {
		p.Apply(d)
		p.DecayAll(r.cfg.GlobalDecay)
		p.UpdatedAt = stamp
	})
}

// uniqueStrings drops empty values and repeats, keeping first-seen order.
func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

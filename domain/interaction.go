package domain

import "time"

// EventKind is the closed set of user actions the ranking engine learns from.
type EventKind string

const (
	EventView     EventKind = "view"
	EventLike     EventKind = "like"
	EventCart     EventKind = "cart"
	EventPurchase EventKind = "purchase"
	EventDislike  EventKind = "dislike"
)

// EventKinds lists every valid kind, in weight order.
var EventKinds = []EventKind{EventView, EventLike, EventCart, EventPurchase, EventDislike}

func (k EventKind) Valid() bool {
	switch k {
	case EventView, EventLike, EventCart, EventPurchase, EventDislike:
		return true
	default:
		return false
	}
}

type PriceTier string

const (
	PriceTierLow  PriceTier = "low"
	PriceTierMid  PriceTier = "mid"
	PriceTierHigh PriceTier = "high"
)

func (t PriceTier) Valid() bool {
	return t == PriceTierLow || t == PriceTierMid || t == PriceTierHigh
}

// ItemFacets is the snapshot of an item's attributes as it was shown to the user.
type ItemFacets struct {
	Tags      []string  `json:"tags"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand"`
	Colors    []string  `json:"colors"`
	PriceTier PriceTier `json:"price_tier"`
}

// Clone copies the slices so later changes by the caller do not leak into a recorded event.
func (f ItemFacets) Clone() ItemFacets {
	out := f
	if f.Tags != nil {
		out.Tags = append([]string(nil), f.Tags...)
	}
	if f.Colors != nil {
		out.Colors = append([]string(nil), f.Colors...)
	}
	return out
}

type InteractionEvent struct {
	ItemID    string     `json:"item_id"`
	Kind      EventKind  `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`
	Facets    ItemFacets `json:"facets"`
}

package personalize

import (
	"time"

	"stylShop/domain"
)

type Config struct {
	// a signal loses half its weight every HalfLife of wall-clock age
	HalfLife time.Duration

	// multiplied into every weight after each recorded event
	GlobalDecay float64

	// share of the re-ranked list drawn from the low-scoring tail
	ExplorationRate float64
}

const (
	defaultHalfLife        = 30 * time.Minute
	defaultGlobalDecay     = 0.995
	defaultExplorationRate = 0.15

	colorFactor            = 0.5
	priceTierFactor        = 0.75
	dislikePriceTierFactor = 1.5

	// lists this small are returned sorted, with no exploration
	smallListSize  = 4
	minHeadCount   = 3
	minInterval    = 2
	maxDrawRetries = 5
)

// eventWeights must cover every domain.EventKind.
var eventWeights = map[domain.EventKind]float64{
	domain.EventView:     1,
	domain.EventLike:     3,
	domain.EventCart:     5,
	domain.EventPurchase: 10,
	domain.EventDislike:  2,
}

func DefaultConfig() Config {
	return Config{
		HalfLife:        defaultHalfLife,
		GlobalDecay:     defaultGlobalDecay,
		ExplorationRate: defaultExplorationRate,
	}
}

// withDefaults replaces out-of-range values with their defaults.
func (c Config) withDefaults() Config {
	if c.HalfLife <= 0 {
		c.HalfLife = defaultHalfLife
	}
	if c.GlobalDecay <= 0 || c.GlobalDecay > 1 {
		c.GlobalDecay = defaultGlobalDecay
	}
	if c.ExplorationRate <= 0 || c.ExplorationRate >= 1 {
		c.ExplorationRate = defaultExplorationRate
	}
	return c
}

// EventWeight returns the base weight for kind and whether the kind is known.
func EventWeight(kind domain.EventKind) (float64, bool) {
	w, ok := eventWeights[kind]
	return w, ok
}

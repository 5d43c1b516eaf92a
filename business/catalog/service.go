package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stylShop/domain"
	"stylShop/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

var CandidateFallbackTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_candidate_fallback_total",
		Help: "Candidate requests answered from the static list",
	},
	[]string{"reason"},
)

func init() {
	prometheus.MustRegister(CandidateFallbackTotal)
}

type Config struct {
	// upper bound for one candidate query
	Timeout time.Duration
	// max candidates per query, <= 0 for all
	Limit int

	// consecutive failures that open the breaker
	FailureThreshold uint32
	// how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:          2 * time.Second,
		Limit:            200,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Service is the catalog collaborator of the ranking engine: product CRUD
// plus the bounded candidate query used to start a session.
type Service struct {
	repo    ProductRepository
	cfg     Config
	breaker *gobreaker.CircuitBreaker[[]domain.CandidateItem]
}

func NewService(repo ProductRepository, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]domain.CandidateItem](gobreaker.Settings{
		Name:        "catalog-candidates",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_change",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Service{repo: repo, cfg: cfg, breaker: breaker}
}

// Candidates lists active products as ranking candidates. When the store
// errors, times out, has nothing to offer or the breaker is open, it answers
// from the static list instead; fallback reports which path was taken.
func (s *Service) Candidates(ctx context.Context, categories []string) (items []domain.CandidateItem, fallback bool) {
	items, err := s.breaker.Execute(func() ([]domain.CandidateItem, error) {
		return s.query(ctx, categories)
	})

	reason := ""
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		reason = "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case err != nil:
		reason = "error"
	case len(items) == 0:
		reason = "empty"
	}
	if reason == "" {
		return items, false
	}

	CandidateFallbackTotal.WithLabelValues(reason).Inc()
	logger.Warn("catalog_candidates_fallback",
		"reason", reason,
		"categories", categories,
		"error", err,
	)
	return fallbackCandidates(categories), true
}

// query runs FindActive under the configured timeout. The result is
// abandoned, not awaited, once the deadline passes.
func (s *Service) query(ctx context.Context, categories []string) ([]domain.CandidateItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	type result struct {
		products []domain.Product
		err      error
	}
	done := make(chan result, 1)
	go func() {
		products, err := s.repo.FindActive(ctx, categories, s.cfg.Limit)
		done <- result{products: products, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("catalog query: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("catalog query: %w", res.err)
		}
		out := make([]domain.CandidateItem, len(res.products))
		for i, p := range res.products {
			out[i] = p.Candidate()
		}
		return out, nil
	}
}

// BreakerState reports the candidate breaker state for health output.
func (s *Service) BreakerState() string {
	return s.breaker.State().String()
}

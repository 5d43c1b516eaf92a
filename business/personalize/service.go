package personalize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stylShop/domain"
	"stylShop/pkg/logger"
)

type PersistMode string

const (
	PersistSync  PersistMode = "sync"
	PersistAsync PersistMode = "async"
)

type Option func(*Service)

// WithClock overrides the wall clock used for event decay.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandSource makes exploration sampling reproducible.
func WithRandSource(rnd RandSource) Option {
	return func(s *Service) { s.rnd = rnd }
}

// WithWriteBehind moves persistence off the request path, retrying failed
// writes every interval.
func WithWriteBehind(interval time.Duration) Option {
	return func(s *Service) {
		s.mode = PersistAsync
		s.retryInterval = interval
	}
}

// Service is the personalization engine seen by the session layer. It owns
// one ProfileStore per user; calls for different users never contend.
type Service struct {
	repo ProfileRepository
	cfg  Config

	now           func() time.Time
	rnd           RandSource
	mode          PersistMode
	retryInterval time.Duration

	recorder  Recorder
	ranker    *Ranker
	persister persister
	async     *writeBehind

	mu     sync.Mutex
	stores map[uint]*ProfileStore
}

func NewService(repo ProfileRepository, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
		mode:   PersistSync,
		stores: make(map[uint]*ProfileStore),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.recorder = NewRecorder(s.cfg, s.now)
	s.ranker = NewRanker(s.cfg, s.rnd)
	if s.mode == PersistAsync {
		s.async = newWriteBehind(repo, s.retryInterval)
		s.persister = s.async
	} else {
		s.persister = syncPersister{repo: repo}
	}
	return s
}

// Close flushes pending asynchronous writes.
func (s *Service) Close() {
	if s.async != nil {
		s.async.Close()
	}
}

// Initialize loads the user's stored profile, or starts an empty one. The
// stored profile is read at most once per live session; later calls keep the
// in-memory profile. On a load failure the session still gets an empty profile and the error is
// returned so the caller can surface it.
func (s *Service) Initialize(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	store, ok := s.stores[userID]
	if !ok {
		store = newProfileStore(userID, s.repo, s.persister)
		s.stores[userID] = store
	}
	s.mu.Unlock()

	if err := store.Load(ctx); err != nil {
		logger.Warn("personalize_initialize",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
		return err
	}
	return nil
}

// storeFor returns the user's store, loading it on first use.
func (s *Service) storeFor(ctx context.Context, userID uint) *ProfileStore {
	s.mu.Lock()
	store, ok := s.stores[userID]
	s.mu.Unlock()
	if ok {
		return store
	}

	_ = s.Initialize(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stores[userID]
}

// GetInitialOrder is the cold-start ordering. A nil allow-list falls back to
// the categories the user picked at onboarding; an empty one disables filtering.
func (s *Service) GetInitialOrder(ctx context.Context, userID uint, candidates []domain.CandidateItem, allowed []string) []domain.CandidateItem {
	if allowed == nil {
		s.storeFor(ctx, userID).view(func(p *AffinityProfile) {
			allowed = append([]string(nil), p.SelectedCategories...)
		})
	}

	filter := "none"
	if len(allowed) > 0 {
		filter = "categories"
	}
	ColdStartTotal.WithLabelValues(filter).Inc()

	out := ColdStartOrder(candidates, allowed)

	logger.Debug("personalize_cold_start",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"candidate_count", len(candidates),
		"allowed_count", len(allowed),
		"result_count", len(out),
	)
	return out
}

// RecordInteraction applies ev to the user's profile. An error wrapping
// ErrPersist means the profile was updated but not stored.
func (s *Service) RecordInteraction(ctx context.Context, userID uint, ev domain.InteractionEvent) error {
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, ev.Kind)
	}
	ev.Facets = ev.Facets.Clone()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}

	store := s.storeFor(ctx, userID)
	err := s.recorder.Record(ctx, store, ev)
	if err != nil && !errors.Is(err, ErrPersist) {
		return err
	}

	InteractionsTotal.WithLabelValues(string(ev.Kind)).Inc()

	tid := TraceIDFromContext(ctx)
	if err != nil {
		PersistFailuresTotal.WithLabelValues(string(s.mode)).Inc()
		logger.Warn("personalize_persist_failed",
			"trace_id", tid,
			"user_id", userID,
			"item_id", ev.ItemID,
			"error", err,
		)
		return err
	}

	logger.Debug("personalize_record",
		"trace_id", tid,
		"user_id", userID,
		"item_id", ev.ItemID,
		"kind", string(ev.Kind),
	)
	return nil
}

// Rerank orders the remaining candidates by affinity with exploration.
func (s *Service) Rerank(ctx context.Context, userID uint, remaining []domain.CandidateItem) []domain.CandidateItem {
	if len(remaining) == 0 {
		return []domain.CandidateItem{}
	}

	var (
		out  []domain.CandidateItem
		plan Plan
	)
	s.storeFor(ctx, userID).view(func(p *AffinityProfile) {
		out, plan = s.ranker.Rerank(p, remaining)
	})

	RerankCandidates.Observe(float64(len(remaining)))
	ExplorationItemsTotal.Add(float64(plan.Explored))

	logger.Debug("personalize_rerank",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"candidate_count", len(remaining),
		"head", plan.Head,
		"explored", plan.Explored,
		"interval", plan.Interval,
	)
	return out
}

// Feed serves cold-start ordering until the profile carries any signal, and
// re-ranking afterwards.
func (s *Service) Feed(ctx context.Context, userID uint, candidates []domain.CandidateItem, allowed []string) []domain.CandidateItem {
	hasSignal := false
	s.storeFor(ctx, userID).view(func(p *AffinityProfile) {
		hasSignal = p.HasSignal()
	})
	if !hasSignal {
		return s.GetInitialOrder(ctx, userID, candidates, allowed)
	}
	return s.Rerank(ctx, userID, candidates)
}

// Explain scores each candidate with its per-facet breakdown, in input order.
func (s *Service) Explain(ctx context.Context, userID uint, candidates []domain.CandidateItem) []domain.ScoreBreakdown {
	out := make([]domain.ScoreBreakdown, 0, len(candidates))
	s.storeFor(ctx, userID).view(func(p *AffinityProfile) {
		for _, it := range candidates {
			out = append(out, Explain(p, it))
		}
	})
	return out
}

// Profile returns a snapshot of the user's profile.
func (s *Service) Profile(ctx context.Context, userID uint) *AffinityProfile {
	return s.storeFor(ctx, userID).Get()
}

// ResetProfile clears every learned weight and persists the empty profile.
func (s *Service) ResetProfile(ctx context.Context, userID uint) error {
	stamp := s.now()
	return s.storeFor(ctx, userID).mutate(ctx, func(p *AffinityProfile) {
		p.Clear()
		p.UpdatedAt = stamp
	})
}

// SetCategoryPreferences stores the onboarding category selection.
func (s *Service) SetCategoryPreferences(ctx context.Context, userID uint, categories []string) error {
	cats := uniqueStrings(categories)
	return s.storeFor(ctx, userID).mutate(ctx, func(p *AffinityProfile) {
		p.SelectedCategories = cats
	})
}

package personalize

import (
	"context"
	"fmt"
	"sync"
)

// ProfileRepository is the durable home of affinity profiles.
// GetProfile returns (nil, nil) when the user has no stored profile.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID uint) (*AffinityProfile, error)
	SaveProfile(ctx context.Context, userID uint, profile *AffinityProfile) error
}

type persister interface {
	persist(ctx context.Context, userID uint, snapshot *AffinityProfile) error
}

type syncPersister struct {
	repo ProfileRepository
}

func (p syncPersister) persist(ctx context.Context, userID uint, snapshot *AffinityProfile) error {
	return p.repo.SaveProfile(ctx, userID, snapshot)
}

// ProfileStore owns the live profile of one user.
//
// writeMu serializes whole mutations (facet updates, decay, persist) so that
// they are observed as one unit; mu guards the data itself so scoring can read
// a consistent profile while a persist is in flight.
//
// settled is set by the first successful load or the first mutation. From then
// on the in-memory profile is authoritative and Load no longer replaces it.
type ProfileStore struct {
	userID    uint
	repo      ProfileRepository
	persister persister

	writeMu sync.Mutex
	mu      sync.RWMutex
	profile *AffinityProfile
	settled bool
}

func newProfileStore(userID uint, repo ProfileRepository, p persister) *ProfileStore {
	return &ProfileStore{
		userID:    userID,
		repo:      repo,
		persister: p,
		profile:   NewAffinityProfile(),
	}
}

// Get returns a copy of the current profile.
func (s *ProfileStore) Get() *AffinityProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// view runs fn against the live profile under the read lock. fn must not retain p.
func (s *ProfileStore) view(fn func(p *AffinityProfile)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.profile)
}

func (s *ProfileStore) Apply(d Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Apply(d)
	s.settled = true
}

func (s *ProfileStore) DecayAll(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.DecayAll(factor)
	s.settled = true
}

// mutate applies fn and persists the result while holding writeMu.
// The in-memory change is kept even if the persist fails.
func (s *ProfileStore) mutate(ctx context.Context, fn func(p *AffinityProfile)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	fn(s.profile)
	s.settled = true
	snapshot := s.profile.Clone()
	s.mu.Unlock()

	if err := s.persister.persist(ctx, s.userID, snapshot); err != nil {
		return fmt.Errorf("%w: user %d: %v", ErrPersist, s.userID, err)
	}
	return nil
}

// Persist writes the current profile through the configured persister.
func (s *ProfileStore) Persist(ctx context.Context) error {
	return s.mutate(ctx, func(*AffinityProfile) {})
}

// Load replaces the in-memory profile with the stored one, if any. Once the
// store has loaded successfully or taken a mutation, Load is a no-op so a
// re-initialized session never rolls back updates that are not yet stored.
func (s *ProfileStore) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isSettled() {
		return nil
	}

	stored, err := s.repo.GetProfile(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("load profile for user %d: %w", s.userID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return nil
	}
	if stored != nil {
		stored.normalize()
		s.profile = stored
	}
	s.settled = true
	return nil
}

func (s *ProfileStore) isSettled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settled
}

//go:build !integration

package personalize

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"stylShop/domain"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// memRepo is an in-memory ProfileRepository.
type memRepo struct {
	mu       sync.Mutex
	profiles map[uint]*AffinityProfile
	saves    int
	getErr   error
	saveErr  error
	// failSaves makes the next n saves fail
	failSaves int
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: map[uint]*AffinityProfile{}}
}

func (r *memRepo) GetProfile(_ context.Context, userID uint) (*AffinityProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *memRepo) SaveProfile(_ context.Context, userID uint, p *AffinityProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.failSaves > 0 {
		r.failSaves--
		return errors.New("storage unavailable")
	}
	r.saves++
	r.profiles[userID] = p.Clone()
	return nil
}

func (r *memRepo) stored(userID uint) *AffinityProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[userID]
}

// scriptedRand replays a fixed sequence, repeating the last value when exhausted.
type scriptedRand struct {
	seq   []int
	calls int
}

func (s *scriptedRand) Intn(n int) int {
	v := 0
	if len(s.seq) > 0 {
		i := s.calls
		if i >= len(s.seq) {
			i = len(s.seq) - 1
		}
		v = s.seq[i]
	}
	s.calls++
	return v % n
}

// forbiddenRand fails the test when exploration sampling happens.
type forbiddenRand struct{ t *testing.T }

func (f forbiddenRand) Intn(int) int {
	f.t.Helper()
	f.t.Fatal("unexpected exploration draw")
	return 0
}

func item(id, category string) domain.CandidateItem {
	return domain.CandidateItem{ID: id, Category: category}
}

func ids(items []domain.CandidateItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var errTestUnavailable = errors.New("storage unavailable")

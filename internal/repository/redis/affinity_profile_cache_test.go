//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stylShop/business/personalize"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubRepo struct {
	mu      sync.Mutex
	data    map[uint]*personalize.AffinityProfile
	gets    int
	saveErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{data: map[uint]*personalize.AffinityProfile{}}
}

func (s *stubRepo) GetProfile(_ context.Context, userID uint) (*personalize.AffinityProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if p, ok := s.data[userID]; ok {
		return p.Clone(), nil
	}
	return nil, nil
}

func (s *stubRepo) SaveProfile(_ context.Context, userID uint, p *personalize.AffinityProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[userID] = p.Clone()
	return nil
}

func setupCache(t *testing.T) (*miniredis.Miniredis, *stubRepo, *AffinityProfileCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newStubRepo()
	return mr, repo, NewAffinityProfileCache(client, repo, time.Hour)
}

func TestAffinityProfileCache_ReadThrough(t *testing.T) {
	mr, repo, cache := setupCache(t)
	ctx := context.Background()

	p := personalize.NewAffinityProfile()
	p.TagWeight["denim"] = 3
	repo.data[1] = p

	for i := 0; i < 3; i++ {
		got, err := cache.GetProfile(ctx, 1)
		if err != nil {
			t.Fatalf("GetProfile: %v", err)
		}
		if got.Weight(personalize.FacetTag, "denim") != 3 {
			t.Fatalf("tag weight = %v, want 3", got.Weight(personalize.FacetTag, "denim"))
		}
	}
	if repo.gets != 1 {
		t.Errorf("durable reads = %d, want 1", repo.gets)
	}
	if !mr.Exists("personalize:profile:1") {
		t.Error("profile not cached")
	}
	if ttl := mr.TTL("personalize:profile:1"); ttl != time.Hour {
		t.Errorf("ttl = %s, want 1h", ttl)
	}
}

func TestAffinityProfileCache_Missing(t *testing.T) {
	mr, _, cache := setupCache(t)

	got, err := cache.GetProfile(context.Background(), 9)
	if err != nil || got != nil {
		t.Fatalf("GetProfile = %v, %v; want nil, nil", got, err)
	}
	if mr.Exists("personalize:profile:9") {
		t.Error("missing profile was cached")
	}
}

func TestAffinityProfileCache_WriteThrough(t *testing.T) {
	_, repo, cache := setupCache(t)
	ctx := context.Background()

	p := personalize.NewAffinityProfile()
	p.BrandWeight["Acme"] = -2
	if err := cache.SaveProfile(ctx, 2, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := cache.GetProfile(ctx, 2)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Weight(personalize.FacetBrand, "Acme") != -2 {
		t.Errorf("brand weight = %v, want -2", got.Weight(personalize.FacetBrand, "Acme"))
	}
	if repo.gets != 0 {
		t.Errorf("durable reads = %d, want 0", repo.gets)
	}
}

func TestAffinityProfileCache_FailedSaveEvicts(t *testing.T) {
	mr, repo, cache := setupCache(t)
	ctx := context.Background()

	if err := cache.SaveProfile(ctx, 3, personalize.NewAffinityProfile()); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	repo.saveErr = errors.New("db down")

	if err := cache.SaveProfile(ctx, 3, personalize.NewAffinityProfile()); err == nil {
		t.Fatal("SaveProfile: want error")
	}
	if mr.Exists("personalize:profile:3") {
		t.Error("cache kept entry after failed durable write")
	}
}

func TestAffinityProfileCache_RedisDownFallsBack(t *testing.T) {
	mr, repo, cache := setupCache(t)
	ctx := context.Background()

	p := personalize.NewAffinityProfile()
	p.ColorWeight["blue"] = 1
	repo.data[4] = p
	mr.Close()

	got, err := cache.GetProfile(ctx, 4)
	if err != nil {
		t.Fatalf("GetProfile with redis down: %v", err)
	}
	if got.Weight(personalize.FacetColor, "blue") != 1 {
		t.Errorf("color weight = %v, want 1", got.Weight(personalize.FacetColor, "blue"))
	}
}

func TestAffinityProfileCache_CorruptEntry(t *testing.T) {
	mr, repo, cache := setupCache(t)

	repo.data[5] = personalize.NewAffinityProfile()
	if err := mr.Set("personalize:profile:5", "{not json"); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.GetProfile(context.Background(), 5); err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if repo.gets != 1 {
		t.Errorf("durable reads = %d, want 1", repo.gets)
	}
}

package personalize

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"stylShop/domain"
)

// RandSource is the randomness used for exploration sampling. Intn must
// return a value in [0, n).
type RandSource interface {
	Intn(n int) int
}

// lockedRand makes a *rand.Rand safe to share between goroutines.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandSource(seed int64) RandSource {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}

// Ranker orders candidates. It keeps no state between calls.
type Ranker struct {
	cfg Config
	rnd RandSource
}

func NewRanker(cfg Config, rnd RandSource) *Ranker {
	if rnd == nil {
		rnd = NewRandSource(time.Now().UnixNano())
	}
	return &Ranker{cfg: cfg.withDefaults(), rnd: rnd}
}

// ColdStartOrder interleaves categories round-robin so the first screens are
// diverse before any preference exists. Buckets are visited in order of first
// appearance. An empty allow-list means no filtering; a filter that leaves
// nothing falls back to the unfiltered candidates.
func ColdStartOrder(candidates []domain.CandidateItem, allowed []string) []domain.CandidateItem {
	if len(candidates) == 0 {
		return []domain.CandidateItem{}
	}

	source := candidates
	if len(allowed) > 0 {
		allow := make(map[string]struct{}, len(allowed))
		for _, c := range allowed {
			allow[c] = struct{}{}
		}
		filtered := make([]domain.CandidateItem, 0, len(candidates))
		for _, it := range candidates {
			if _, ok := allow[it.Category]; ok {
				filtered = append(filtered, it)
			}
		}
		if len(filtered) > 0 {
			source = filtered
		}
	}

	var order []string
	buckets := map[string][]domain.CandidateItem{}
	maxLen := 0
	for _, it := range source {
		if _, ok := buckets[it.Category]; !ok {
			order = append(order, it.Category)
		}
		buckets[it.Category] = append(buckets[it.Category], it)
		if n := len(buckets[it.Category]); n > maxLen {
			maxLen = n
		}
	}

	out := make([]domain.CandidateItem, 0, len(source))
	for i := 0; i < maxLen; i++ {
		for _, cat := range order {
			if b := buckets[cat]; i < len(b) {
				out = append(out, b[i])
			}
		}
	}
	return out
}

type scoredItem struct {
	item  domain.CandidateItem
	score float64
}

// sortByScore scores every candidate and stable-sorts descending, so ties keep
// their input order.
func sortByScore(p *AffinityProfile, candidates []domain.CandidateItem) []domain.CandidateItem {
	scored := make([]scoredItem, len(candidates))
	for i, it := range candidates {
		scored[i] = scoredItem{item: it, score: Score(p, it)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]domain.CandidateItem, len(scored))
	for i, s := range scored {
		out[i] = s.item
	}
	return out
}

// Plan describes how a re-rank split its input.
type Plan struct {
	Head     int
	Explored int
	Interval int
}

// Rerank scores candidates against p, keeps the top share in order and
// splices a bounded random sample of the tail in at a fixed interval.
func (r *Ranker) Rerank(p *AffinityProfile, candidates []domain.CandidateItem) ([]domain.CandidateItem, Plan) {
	sorted := sortByScore(p, candidates)

	n := len(sorted)
	if n <= smallListSize {
		return sorted, Plan{Head: n}
	}

	exploreCount := max(1, int(math.Floor(float64(n)*r.cfg.ExplorationRate)))
	headCount := max(minHeadCount, int(math.Floor(float64(n)*(1-r.cfg.ExplorationRate))))
	if headCount > n {
		headCount = n
	}

	head := sorted[:headCount]
	tail := sorted[headCount:]

	injected := r.drawTail(tail, exploreCount)
	interval := max(minInterval, len(head)/max(1, len(injected)))

	out := make([]domain.CandidateItem, 0, len(head)+len(injected))
	j := 0
	for i, it := range head {
		out = append(out, it)
		if (i+1)%interval == 0 && j < len(injected) {
			out = append(out, injected[j])
			j++
		}
	}
	out = append(out, injected[j:]...)

	return out, Plan{Head: len(head), Explored: len(injected), Interval: interval}
}

// drawTail samples count items from tail. Each slot retries up to
// maxDrawRetries times to avoid an index already drawn. Once retries are
// spent it takes the next unused index, scanning forward, rather than
// accepting the repeat, so the loop is bounded and the ranked list never
// carries the same item twice while tail has room.
func (r *Ranker) drawTail(tail []domain.CandidateItem, count int) []domain.CandidateItem {
	if len(tail) == 0 || count <= 0 {
		return nil
	}

	used := make(map[int]struct{}, count)
	out := make([]domain.CandidateItem, 0, count)
	for k := 0; k < count; k++ {
		idx := r.rnd.Intn(len(tail))
		for spins := 0; spins < maxDrawRetries; spins++ {
			if _, dup := used[idx]; !dup {
				break
			}
			idx = r.rnd.Intn(len(tail))
		}
		if _, dup := used[idx]; dup {
			idx = nextUnused(used, idx, len(tail))
		}
		used[idx] = struct{}{}
		out = append(out, tail[idx])
	}
	return out
}

// nextUnused scans forward (wrapping) from idx for an index not in used.
// If every index is taken it returns idx.
func nextUnused(used map[int]struct{}, idx, n int) int {
	for step := 1; step < n; step++ {
		cand := (idx + step) % n
		if _, dup := used[cand]; !dup {
			return cand
		}
	}
	return idx
}

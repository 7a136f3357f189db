package solver

import (
	"fmt"
	"sync"

	"github.com/lox/hucfr/tree"
)

// InfoSetKey is the pair (acting player, public-observable state) plus the
// acting player's private hole-card bucket. Two decision points with
// identical public history and identical bucket share one infoset.
type InfoSetKey struct {
	Street       tree.Street
	Player       int
	HoleBucket   int
	BoardBucket  int
	PotBucket    int
	ToCallBucket int
}

func (k InfoSetKey) String() string {
	return fmt.Sprintf("%d/%d/%d/%d/%d/%d", k.Street, k.Player, k.HoleBucket, k.BoardBucket, k.PotBucket, k.ToCallBucket)
}

// RegretEntry accumulates regrets and strategy sums for one infoset. Slices
// are indexed by legal-action position at that node.
type RegretEntry struct {
	RegretSum   []float64
	StrategySum []float64
	Normalising float64
	mutex       sync.Mutex
}

// RegretUpdateOptions configures how regrets and strategy sums accumulate.
type RegretUpdateOptions struct {
	ClampNegativeRegrets bool // CFR+
	LinearAveraging      bool
	Iteration            int
}

func (e *RegretEntry) ensureSize(n int) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if len(e.RegretSum) >= n {
		return
	}
	missing := n - len(e.RegretSum)
	e.RegretSum = append(e.RegretSum, make([]float64, missing)...)
	e.StrategySum = append(e.StrategySum, make([]float64, missing)...)
}

// Strategy returns the current regret-matching distribution for the
// infoset: max(R(a),0) normalized, or uniform if all regrets are <= 0.
func (e *RegretEntry) Strategy() []float64 {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	total := 0.0
	strat := make([]float64, len(e.RegretSum))
	for i, r := range e.RegretSum {
		if r > 0 {
			strat[i] = r
			total += r
		}
	}
	if total <= 0 {
		v := 1.0 / float64(len(strat))
		for i := range strat {
			strat[i] = v
		}
		return strat
	}
	for i := range strat {
		strat[i] /= total
	}
	return strat
}

// Update accumulates regrets and strategy sums for the infoset.
func (e *RegretEntry) Update(regret []float64, strategy []float64, reachWeight float64, opts RegretUpdateOptions) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	iterWeight := 1.0
	if opts.LinearAveraging {
		iter := opts.Iteration
		if iter <= 0 {
			iter = 1
		}
		iterWeight = float64(iter)
	}
	weight := reachWeight * iterWeight
	for i := range regret {
		e.RegretSum[i] += regret[i]
		if opts.ClampNegativeRegrets && e.RegretSum[i] < 0 {
			e.RegretSum[i] = 0
		}
		e.StrategySum[i] += weight * strategy[i]
	}
	e.Normalising += weight
}

// AverageStrategy returns the normalized average strategy for the infoset,
// defaulting to uniform when nothing has accumulated yet.
func (e *RegretEntry) AverageStrategy() []float64 {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	strat := make([]float64, len(e.StrategySum))
	if e.Normalising <= 0 {
		v := 1.0 / float64(len(strat))
		for i := range strat {
			strat[i] = v
		}
		return strat
	}
	for i := range strat {
		strat[i] = e.StrategySum[i] / e.Normalising
	}
	return strat
}

func (e *RegretEntry) snapshot() regretSnapshot {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return regretSnapshot{
		RegretSum:   append([]float64(nil), e.RegretSum...),
		StrategySum: append([]float64(nil), e.StrategySum...),
		Normalising: e.Normalising,
	}
}

func newRegretEntryFromSnapshot(snap regretSnapshot) *RegretEntry {
	return &RegretEntry{
		RegretSum:   append([]float64(nil), snap.RegretSum...),
		StrategySum: append([]float64(nil), snap.StrategySum...),
		Normalising: snap.Normalising,
	}
}

// regretTableShardCount shards the table to keep per-infoset locking
// fine-grained under concurrent parallel-table traversal.
const regretTableShardCount = 64
const regretTableShardMask = regretTableShardCount - 1

type regretShard struct {
	mu      sync.RWMutex
	entries map[string]*RegretEntry
}

// RegretTable is the shared, concurrency-safe infoset table: the only
// mutable state touched by more than one goroutine during a solve.
type RegretTable struct {
	shards [regretTableShardCount]regretShard
}

// NewRegretTable returns an empty regret table ready for use.
func NewRegretTable() *RegretTable {
	table := &RegretTable{}
	for i := range table.shards {
		table.shards[i].entries = make(map[string]*RegretEntry)
	}
	return table
}

// Get returns the entry for key, creating it (sized to actionCount) if
// missing.
func (t *RegretTable) Get(key InfoSetKey, actionCount int) *RegretEntry {
	k := key.String()
	shard := t.shardFor(k)

	shard.mu.RLock()
	entry, ok := shard.entries[k]
	shard.mu.RUnlock()
	if ok {
		entry.ensureSize(actionCount)
		return entry
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if entry, ok = shard.entries[k]; ok {
		entry.ensureSize(actionCount)
		return entry
	}

	entry = &RegretEntry{}
	entry.ensureSize(actionCount)
	shard.entries[k] = entry
	return entry
}

// Entries returns a snapshot of every tracked infoset, keyed by its string
// encoding.
func (t *RegretTable) Entries() map[string]*RegretEntry {
	out := make(map[string]*RegretEntry)
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.RLock()
		for k, v := range shard.entries {
			out[k] = v
		}
		shard.mu.RUnlock()
	}
	return out
}

// Size returns the number of infosets visited at least once.
func (t *RegretTable) Size() int {
	total := 0
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// Snapshot captures every entry for checkpointing, keyed by string-encoded
// InfoSetKey.
func (t *RegretTable) Snapshot() map[string]regretSnapshot {
	entries := t.Entries()
	out := make(map[string]regretSnapshot, len(entries))
	for k, entry := range entries {
		out[k] = entry.snapshot()
	}
	return out
}

// Restore replaces the table's contents with a previously captured
// snapshot, routing each entry to its correct shard. This is the
// shard-aware counterpart checkpoint restore requires; reaching into
// unexported non-existent fields from outside the type is not an option.
func (t *RegretTable) Restore(snaps map[string]regretSnapshot) {
	for i := range t.shards {
		t.shards[i].mu.Lock()
		t.shards[i].entries = make(map[string]*RegretEntry)
		t.shards[i].mu.Unlock()
	}
	for key, snap := range snaps {
		shard := t.shardFor(key)
		shard.mu.Lock()
		shard.entries[key] = newRegretEntryFromSnapshot(snap)
		shard.mu.Unlock()
	}
}

func (t *RegretTable) shardFor(key string) *regretShard {
	h := hashKey(key)
	return &t.shards[h&regretTableShardMask]
}

func hashKey(key string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	var hash uint32 = offset32
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}

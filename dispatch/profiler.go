package dispatch

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Profiler counts resolved dispatches per generic and signature. Counters
// are updated on every Resolution.Invoke, so the data reflects methods
// that actually ran, not just registrations. A hot threshold with a
// callback lets hosts react to frequently dispatched signatures (cache
// warming, trace flushing).

// dispatchProfile holds the counters for a single (generic, signature)
// pair.
type dispatchProfile struct {
	count uint64 // atomic
	isHot bool
}

// DispatchStat is a point-in-time snapshot entry.
type DispatchStat struct {
	Generic   string
	Signature []string
	Count     uint64
}

// Profiler manages dispatch profiling for a runtime.
type Profiler struct {
	profiles sync.Map // string key -> *dispatchProfile

	// HotThreshold is the count at which a signature becomes hot.
	HotThreshold uint64

	// OnHot is called once when a signature crosses the threshold.
	OnHot func(generic string, signature []string, count uint64)

	mu   sync.Mutex
	keys map[string]DispatchStat // key -> identifying fields
}

// NewProfiler creates a profiler with the default hot threshold.
func NewProfiler() *Profiler {
	return &Profiler{
		HotThreshold: 1000,
		keys:         make(map[string]DispatchStat),
	}
}

// Record increments the counter for a resolved dispatch.
func (p *Profiler) Record(generic string, signature []string) {
	key := generic + sigSep + sigKey(signature)

	val, loaded := p.profiles.LoadOrStore(key, &dispatchProfile{})
	profile := val.(*dispatchProfile)
	if !loaded {
		p.mu.Lock()
		p.keys[key] = DispatchStat{
			Generic:   generic,
			Signature: append([]string(nil), signature...),
		}
		p.mu.Unlock()
	}

	count := atomic.AddUint64(&profile.count, 1)
	if !profile.isHot && p.HotThreshold > 0 && count >= p.HotThreshold {
		profile.isHot = true
		if p.OnHot != nil {
			p.mu.Lock()
			stat := p.keys[key]
			p.mu.Unlock()
			p.OnHot(stat.Generic, stat.Signature, count)
		}
	}
}

// Snapshot returns the current counters, sorted by generic then
// signature. The profiler keeps counting while the snapshot is taken.
func (p *Profiler) Snapshot() []DispatchStat {
	p.mu.Lock()
	stats := make([]DispatchStat, 0, len(p.keys))
	for key, stat := range p.keys {
		if val, ok := p.profiles.Load(key); ok {
			stat.Count = atomic.LoadUint64(&val.(*dispatchProfile).count)
		}
		stats = append(stats, stat)
	}
	p.mu.Unlock()

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Generic != stats[j].Generic {
			return stats[i].Generic < stats[j].Generic
		}
		return sigKey(stats[i].Signature) < sigKey(stats[j].Signature)
	})
	return stats
}

// Reset clears all counters.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles = sync.Map{}
	p.keys = make(map[string]DispatchStat)
}

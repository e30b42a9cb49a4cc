package metrics

import (
	"math"
	"slices"
	"sync"
	"time"
)

// Histogram keeps the most recent duration samples in a fixed ring and
// summarizes them on demand.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64 // milliseconds
	next    int
	full    bool
}

// NewHistogram returns a histogram holding up to size samples. Older samples
// are overwritten once the ring is full.
func NewHistogram(size int) *Histogram {
	if size <= 0 {
		size = 1024
	}
	return &Histogram{samples: make([]float64, size)}
}

// Record adds a duration sample.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples[h.next] = float64(d.Microseconds()) / 1000
	h.next++
	if h.next == len(h.samples) {
		h.next = 0
		h.full = true
	}
}

// Count returns the number of samples held.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count()
}

func (h *Histogram) count() int {
	if h.full {
		return len(h.samples)
	}
	return h.next
}

// Stats summarizes the held samples.
func (h *Histogram) Stats() LatencyStats {
	h.mu.RLock()
	sorted := slices.Clone(h.samples[:h.count()])
	h.mu.RUnlock()

	if len(sorted) == 0 {
		return LatencyStats{}
	}
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return LatencyStats{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// percentile interpolates linearly between the two nearest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	index := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// LatencyStats summarizes a histogram. Durations are in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

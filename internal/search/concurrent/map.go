// Package concurrent provides the bucketed accumulator behind the parallel
// scoring path. Values are spread over a fixed number of independently
// locked buckets keyed by id modulo bucket count, so writers touching
// different buckets never contend.
package concurrent

import "sync"

type bucket struct {
	mu     sync.Mutex
	values map[int]float64
}

// Map accumulates float64 values per non-negative integer key.
type Map struct {
	buckets []bucket
}

// NewMap creates a Map with the given number of buckets.
func NewMap(bucketCount int) *Map {
	m := &Map{buckets: make([]bucket, bucketCount)}
	for i := range m.buckets {
		m.buckets[i].values = make(map[int]float64)
	}
	return m
}

// Add accumulates delta into the value stored for key. Safe for concurrent
// use; adds to the same bucket serialize on that bucket's lock only.
func (m *Map) Add(key int, delta float64) {
	b := &m.buckets[key%len(m.buckets)]
	b.mu.Lock()
	b.values[key] += delta
	b.mu.Unlock()
}

// Len returns the total number of keys across all buckets.
func (m *Map) Len() int {
	n := 0
	for i := range m.buckets {
		b := &m.buckets[i]
		b.mu.Lock()
		n += len(b.values)
		b.mu.Unlock()
	}
	return n
}

// Drain merges every bucket into a single ordinary map.
func (m *Map) Drain() map[int]float64 {
	out := make(map[int]float64)
	for i := range m.buckets {
		b := &m.buckets[i]
		b.mu.Lock()
		for key, value := range b.values {
			out[key] = value
		}
		b.mu.Unlock()
	}
	return out
}

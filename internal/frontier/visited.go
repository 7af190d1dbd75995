package frontier

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// VisitedSet records URLs already processed in a run.
// A Bloom filter answers most negative lookups; the exact map settles
// the filter's false positives.
type VisitedSet struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewVisitedSet creates a visited set sized for roughly estimatedItems URLs.
func NewVisitedSet(estimatedItems int) *VisitedSet {
	if estimatedItems < 1000 {
		estimatedItems = 1000
	}

	return &VisitedSet{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add marks url visited. It reports false if url was already present.
func (v *VisitedSet) Add(url string) bool {
	if v.Contains(url) {
		return false
	}
	v.filter.AddString(url)
	v.exact[url] = struct{}{}
	return true
}

// Contains reports whether url was visited.
func (v *VisitedSet) Contains(url string) bool {
	if !v.filter.TestString(url) {
		return false
	}
	_, ok := v.exact[url]
	return ok
}

// Len returns the number of visited URLs.
func (v *VisitedSet) Len() int {
	return len(v.exact)
}

package firdesign

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default bound on memoized coefficient sets.
// Each cached entry costs TapCount float64s, so even the full cache for
// long filters stays in the low tens of megabytes.
const DefaultCacheSize = 4096

// Designer computes lowpass coefficients and memoizes them by Spec.
//
// Repeated calls with an identical Spec return the same shared coefficient
// slice without recomputation; callers must treat returned slices as
// read-only. The cache is LRU-bounded and internally synchronized, so a
// Designer may be shared read-mostly across filter instances.
type Designer struct {
	cache   *lru.Cache[Spec, []float64]
	designs atomic.Int64
}

// NewDesigner creates a Designer with the given cache capacity.
// A non-positive size selects DefaultCacheSize.
func NewDesigner(size int) (*Designer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[Spec, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create coefficient cache: %w", err)
	}

	return &Designer{cache: cache}, nil
}

// Design returns coefficients for the spec, from cache when available.
func (d *Designer) Design(spec Spec) ([]float64, error) {
	if coeffs, ok := d.cache.Get(spec); ok {
		return coeffs, nil
	}

	coeffs, err := Design(spec)
	if err != nil {
		return nil, err
	}

	d.designs.Add(1)
	d.cache.Add(spec, coeffs)
	return coeffs, nil
}

// DesignCount returns how many times the underlying design routine has run.
// Cache hits do not increase the count.
func (d *Designer) DesignCount() int64 {
	return d.designs.Load()
}

// Len returns the number of currently cached coefficient sets.
func (d *Designer) Len() int {
	return d.cache.Len()
}

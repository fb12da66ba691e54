package firdesign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// Cache test parameters
	tinyCacheSize   = 2
	evictionCutoffs = 4
	cutoffStepHz    = 100.0
)

// TestDesigner_CacheHit verifies repeated designs are served from cache.
func TestDesigner_CacheHit(t *testing.T) {
	d, err := NewDesigner(DefaultCacheSize)
	require.NoError(t, err)

	spec := testSpec(testCutoff2k, testTaps101)

	first, err := d.Design(spec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.DesignCount(), "first design must compute")

	second, err := d.Design(spec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.DesignCount(), "second design must hit the cache")

	// Cache hits return the shared slice, not a copy.
	assert.Same(t, &first[0], &second[0], "cached design should share backing storage")
}

// TestDesigner_DistinctSpecs verifies each distinct spec designs once.
func TestDesigner_DistinctSpecs(t *testing.T) {
	d, err := NewDesigner(DefaultCacheSize)
	require.NoError(t, err)

	specs := []Spec{
		testSpec(testCutoff2k, testTaps101),
		testSpec(testCutoff500, testTaps101),
		testSpec(testCutoff2k, testTaps31),
	}

	for _, spec := range specs {
		_, err := d.Design(spec)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(len(specs)), d.DesignCount())

	// Replaying the same specs costs nothing.
	for _, spec := range specs {
		_, err := d.Design(spec)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(len(specs)), d.DesignCount())
	assert.Equal(t, len(specs), d.Len())
}

// TestDesigner_Eviction verifies the LRU bound forces recomputation.
func TestDesigner_Eviction(t *testing.T) {
	d, err := NewDesigner(tinyCacheSize)
	require.NoError(t, err)

	for i := range evictionCutoffs {
		spec := testSpec(testCutoff500+float64(i)*cutoffStepHz, testTaps31)
		_, err := d.Design(spec)
		require.NoError(t, err)
	}

	assert.Equal(t, tinyCacheSize, d.Len(), "cache must stay within its bound")
	assert.Equal(t, int64(evictionCutoffs), d.DesignCount())

	// The oldest entry was evicted, so it computes again.
	_, err = d.Design(testSpec(testCutoff500, testTaps31))
	require.NoError(t, err)
	assert.Equal(t, int64(evictionCutoffs+1), d.DesignCount())
}

// TestDesigner_InvalidSpecNotCached verifies failed designs leave no trace.
func TestDesigner_InvalidSpecNotCached(t *testing.T) {
	d, err := NewDesigner(DefaultCacheSize)
	require.NoError(t, err)

	bad := testSpec(testCutoff2k, testTaps101)
	bad.Cutoff = -1

	_, err = d.Design(bad)
	assert.Error(t, err)
	assert.Equal(t, int64(0), d.DesignCount())
	assert.Equal(t, 0, d.Len())
}

// TestNewDesigner_DefaultSize verifies non-positive sizes select the default.
func TestNewDesigner_DefaultSize(t *testing.T) {
	d, err := NewDesigner(0)
	require.NoError(t, err)
	require.NotNil(t, d)

	_, err = d.Design(testSpec(testCutoff2k, testTaps31))
	assert.NoError(t, err)
}

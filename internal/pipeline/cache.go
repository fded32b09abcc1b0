package pipeline

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/schema"
)

// Cached memoizes successful predictions. Inference is deterministic, so a
// hit returns exactly what the wrapped pipeline would have computed. Failed
// inferences are not cached.
type Cached struct {
	next   Inferer
	cache  *lru.Cache[string, models.PredictionResult]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCached wraps next with an LRU cache holding up to size results.
func NewCached(next Inferer, size int) (*Cached, error) {
	c, err := lru.New[string, models.PredictionResult](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

// Infer returns a cached result when the exact same vector was seen before.
// The vector is validated first, so only well-formed vectors reach the cache.
func (c *Cached) Infer(v models.FeatureVector) (*models.PredictionResult, error) {
	if err := schema.Validate(v); err != nil {
		return nil, err
	}
	key := cacheKey(v)
	if res, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return &res, nil
	}
	c.misses.Add(1)
	res, err := c.next.Infer(v)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, *res)
	return res, nil
}

// Info returns the wrapped pipeline's info with cache statistics.
func (c *Cached) Info() Info {
	info := c.next.Info()
	info.Cache = &models.CacheStats{
		Size:   c.cache.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	return info
}

// cacheKey encodes the exact value bits of a validated vector, so -0/+0 differ.
// Names are fixed by the schema and are not part of the key.
func cacheKey(v models.FeatureVector) string {
	b := make([]byte, 0, len(v)*8)
	for _, f := range v {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f.Value))
	}
	return string(b)
}
